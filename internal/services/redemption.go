package services

import (
	"context"
	"errors"
	"time"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/models"
	"photo-points-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// RedemptionService lists offers and spends points on them
type RedemptionService struct {
	offers      OfferStore
	photos      PhotoStore
	redemptions RedemptionStore
	ledger      *LedgerCalculator
	now         func() time.Time
}

// NewRedemptionService creates a new redemption service
func NewRedemptionService(offers OfferStore, photos PhotoStore, redemptions RedemptionStore, ledger *LedgerCalculator) *RedemptionService {
	return &RedemptionService{
		offers:      offers,
		photos:      photos,
		redemptions: redemptions,
		ledger:      ledger,
		now:         time.Now,
	}
}

// CurrentOffers returns every offer, or only offers for brands at locations the user has posted at
func (s *RedemptionService) CurrentOffers(ctx context.Context, email string, userOffersOnly bool) ([]models.Offer, error) {
	if !userOffersOnly {
		offers, err := s.offers.List(ctx)
		if err != nil {
			return nil, apperr.Upstream("failed to get offers", err)
		}
		return offers, nil
	}

	locationIDs, err := s.photos.LocationIDsByOwner(ctx, email)
	if err != nil {
		return nil, apperr.Upstream("failed to get user photo locations", err)
	}
	offers, err := s.offers.ListForLocations(ctx, locationIDs)
	if err != nil {
		return nil, apperr.Upstream("failed to get user offers", err)
	}
	return offers, nil
}

// Redeem spends the offer's point cost from the user's balance for its brand
func (s *RedemptionService) Redeem(ctx context.Context, email string, offerID int64) (*models.Offer, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(MsgOfferNotFound)
		}
		return nil, apperr.Upstream("failed to get offer", err)
	}

	ledger, err := s.ledger.Gross(ctx, email)
	if err != nil {
		return nil, err
	}

	rec := &models.Redemption{
		ID:         uuid.New().String(),
		UserEmail:  email,
		Brand:      offer.Brand,
		Points:     offer.PointsRequired,
		RedeemedAt: s.now().UTC(),
	}
	if err := s.redemptions.Redeem(ctx, rec, ledger.Balance(offer.Brand)); err != nil {
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, apperr.BusinessRule(MsgInsufficientPoints)
		}
		return nil, apperr.Upstream("failed to redeem offer", err)
	}

	log.Info().
		Str("user_email", email).
		Int64("offer_id", offer.ID).
		Str("brand", offer.Brand).
		Int("points", offer.PointsRequired).
		Msg("Offer redeemed")

	return offer, nil
}
