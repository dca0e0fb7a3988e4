package handlers

import (
	"net/http"

	"photo-points-backend/internal/middleware"
	"photo-points-backend/internal/models"
	"photo-points-backend/internal/services"
)

// OfferHandler handles points balances, offer listings and redemptions
type OfferHandler struct {
	ledger            *services.LedgerCalculator
	redemptionService *services.RedemptionService
}

// NewOfferHandler creates a new offer handler
func NewOfferHandler(ledger *services.LedgerCalculator, redemptionService *services.RedemptionService) *OfferHandler {
	return &OfferHandler{ledger: ledger, redemptionService: redemptionService}
}

// offerListing is an offer without its discount code
type offerListing struct {
	ID             int64   `json:"offer_id"`
	Brand          string  `json:"brand"`
	BrandLogoURL   *string `json:"brand_logo_url,omitempty"`
	DiscountAmount float64 `json:"discount_amount"`
	PointsRequired int     `json:"discount_points_req"`
}

// Points handles get_user_points
func (h *OfferHandler) Points(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ledger, err := h.ledger.Calculate(ctx, middleware.GetUser(ctx).Email)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	switch ledger.Status {
	case services.LedgerNoOffers:
		respond(w, http.StatusOK, services.MsgNoOffers, nil)
	case services.LedgerNoQualifyingPhotos:
		respond(w, http.StatusOK, services.MsgNoQualifyingPhotos, nil)
	default:
		respond(w, http.StatusOK, msgOK, map[string]any{"user_points": ledger.Points})
	}
}

// CurrentOffers handles get_current_offers
func (h *OfferHandler) CurrentOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userOnly := middleware.PayloadFrom(ctx).Bool(fieldUserOffersOnly)

	offers, err := h.redemptionService.CurrentOffers(ctx, middleware.GetUser(ctx).Email, userOnly)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, map[string]any{"current_offers": listings(offers)})
}

// Redeem handles redeem_offer
func (h *OfferHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	offerID, err := middleware.PayloadFrom(ctx).Int64(fieldOfferID)
	if err != nil {
		badParameter(w, fieldOfferID)
		return
	}

	offer, err := h.redemptionService.Redeem(ctx, middleware.GetUser(ctx).Email, offerID)
	if err != nil {
		respondAppError(w, r, err)
		return
	}

	respond(w, http.StatusOK, msgOK, map[string]any{"offer_id": offer.ID, "discount_code": offer.Code})
}

func listings(offers []models.Offer) []offerListing {
	out := make([]offerListing, 0, len(offers))
	for _, o := range offers {
		out = append(out, offerListing{
			ID:             o.ID,
			Brand:          o.Brand,
			BrandLogoURL:   o.BrandLogoURL,
			DiscountAmount: o.DiscountAmount,
			PointsRequired: o.PointsRequired,
		})
	}
	return out
}
