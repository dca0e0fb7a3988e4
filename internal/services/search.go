package services

import (
	"context"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/search"
)

// SearchService finds photos near a point
type SearchService struct {
	index       SearchIndex
	views       ViewDispatcher
	maxPageSize int
}

// NewSearchService creates a new search service
func NewSearchService(index SearchIndex, views ViewDispatcher, maxPageSize int) *SearchService {
	return &SearchService{index: index, views: views, maxPageSize: maxPageSize}
}

// Search returns one page of photos around the query point and records a view for each
func (s *SearchService) Search(ctx context.Context, q search.GeoQuery) ([]search.Hit, error) {
	if q.Size <= 0 || q.Start < 0 || (s.maxPageSize > 0 && q.Size > s.maxPageSize) {
		return nil, apperr.Validation(MsgInvalidSearchWindow)
	}
	if q.RadiusMinutes < 0 {
		return nil, apperr.Validation("Bad required parameter: user_radius")
	}

	hits, err := s.index.SearchPhotos(ctx, q.Build())
	if err != nil {
		return nil, apperr.Upstream("failed to search photos", err)
	}
	if hits == nil {
		hits = []search.Hit{}
	}

	ids := make([]string, len(hits))
	for i := range hits {
		if q.Lightweight {
			hits[i].Fields = nil
		}
		ids[i] = hits[i].ID
	}
	if len(ids) > 0 && s.views != nil {
		s.views.Dispatch(ids)
	}
	return hits, nil
}
