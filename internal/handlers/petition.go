package handlers

import (
	"net/http"
	"strconv"

	"photo-points-backend/internal/middleware"
	"photo-points-backend/internal/services"
)

// PetitionHandler handles petitions for offers at a location
type PetitionHandler struct {
	petitionService *services.PetitionService
}

// NewPetitionHandler creates a new petition handler
func NewPetitionHandler(petitionService *services.PetitionService) *PetitionHandler {
	return &PetitionHandler{petitionService: petitionService}
}

// Submit handles user_submit_petition
func (h *PetitionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	placeID := middleware.PayloadFrom(ctx).String(fieldPlaceID)

	count, err := h.petitionService.Petition(ctx, middleware.GetUser(ctx).Email, placeID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, map[string]any{placeID: strconv.Itoa(count)})
}
