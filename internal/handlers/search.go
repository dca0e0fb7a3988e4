package handlers

import (
	"net/http"

	"photo-points-backend/internal/middleware"
	"photo-points-backend/internal/search"
	"photo-points-backend/internal/services"
)

// SearchHandler handles nearby photo searches
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles search_photos
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p := middleware.PayloadFrom(ctx)

	var q search.GeoQuery
	var err error
	if q.Center.Lat, err = p.Float(fieldUserLat); err != nil {
		badParameter(w, fieldUserLat)
		return
	}
	if q.Center.Lon, err = p.Float(fieldUserLon); err != nil {
		badParameter(w, fieldUserLon)
		return
	}
	if q.RadiusMinutes, err = p.Float(fieldRadius); err != nil {
		badParameter(w, fieldRadius)
		return
	}
	if q.Terms, err = p.Strings(fieldFilterTerms); err != nil {
		badParameter(w, fieldFilterTerms)
		return
	}
	if q.Size, err = p.Int(fieldSearchSize); err != nil {
		badParameter(w, fieldSearchSize)
		return
	}
	if q.Start, err = p.Int(fieldSearchStart); err != nil {
		badParameter(w, fieldSearchStart)
		return
	}
	q.Lightweight = p.Bool(fieldLightweight)

	hits, err := h.searchService.Search(ctx, q)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, map[string]any{"photos": hits})
}
