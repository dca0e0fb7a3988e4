package services

import (
	"context"

	"photo-points-backend/internal/apperr"

	"github.com/rs/zerolog/log"
)

// PetitionService records requests for offers at a location
type PetitionService struct {
	users     UserStore
	petitions PetitionStore
}

// NewPetitionService creates a new petition service
func NewPetitionService(users UserStore, petitions PetitionStore) *PetitionService {
	return &PetitionService{users: users, petitions: petitions}
}

// Petition counts the user's petition for a location once and returns the location's total
func (s *PetitionService) Petition(ctx context.Context, email, locationID string) (int, error) {
	added, err := s.users.AddPetition(ctx, email, locationID)
	if err != nil {
		return 0, apperr.Upstream("failed to record petition", err)
	}
	if !added {
		return 0, apperr.Conflict(MsgPetitionedAlready)
	}

	count, err := s.petitions.Increment(ctx, locationID)
	if err != nil {
		if _, undoErr := s.users.RemovePetition(context.WithoutCancel(ctx), email, locationID); undoErr != nil {
			log.Error().Err(undoErr).Str("location_id", locationID).Msg("Failed to undo petition")
		}
		return 0, apperr.Upstream("failed to increment petitions", err)
	}

	log.Info().Str("user_email", email).Str("location_id", locationID).Int("count", count).Msg("Location petitioned")
	return count, nil
}
