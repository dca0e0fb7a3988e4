package services

import (
	"context"
	"strings"

	"photo-points-backend/internal/apperr"
	"photo-points-backend/internal/models"
)

// LedgerStatus is the outcome of a points computation
type LedgerStatus int

const (
	// LedgerPoints means Points holds the per-brand balances
	LedgerPoints LedgerStatus = iota
	// LedgerNoOffers means no brand currently has an offer
	LedgerNoOffers
	// LedgerNoQualifyingPhotos means the user has no photos at offered-brand locations
	LedgerNoQualifyingPhotos
)

// Ledger holds per-brand points keyed by lowercased brand
type Ledger struct {
	Status LedgerStatus
	Points map[string]int
}

// Balance returns the points for brand, zero if there are none
func (l *Ledger) Balance(brand string) int {
	if l == nil || l.Points == nil {
		return 0
	}
	return l.Points[strings.ToLower(brand)]
}

// LedgerCalculator derives point balances from likes on photos at branded locations
type LedgerCalculator struct {
	offers      OfferStore
	locations   LocationStore
	photos      PhotoStore
	redemptions RedemptionStore
}

// NewLedgerCalculator creates a new ledger calculator
func NewLedgerCalculator(offers OfferStore, locations LocationStore, photos PhotoStore, redemptions RedemptionStore) *LedgerCalculator {
	return &LedgerCalculator{
		offers:      offers,
		locations:   locations,
		photos:      photos,
		redemptions: redemptions,
	}
}

// Gross computes the points the user has earned per brand, before redemptions
func (c *LedgerCalculator) Gross(ctx context.Context, email string) (*Ledger, error) {
	brands, err := c.offers.Brands(ctx)
	if err != nil {
		return nil, apperr.Upstream("failed to get offered brands", err)
	}
	brands = lowerUnique(brands)
	if len(brands) == 0 {
		return &Ledger{Status: LedgerNoOffers}, nil
	}

	locations, err := c.locations.ListByBrands(ctx, brands)
	if err != nil {
		return nil, apperr.Upstream("failed to get branded locations", err)
	}
	offered := make(map[string]struct{}, len(brands))
	for _, b := range brands {
		offered[b] = struct{}{}
	}
	locationBrand := make(map[string]string, len(locations))
	ids := make([]string, 0, len(locations))
	for _, loc := range locations {
		if loc.Brand == nil {
			continue
		}
		brand := strings.ToLower(*loc.Brand)
		if _, ok := offered[brand]; !ok {
			continue
		}
		locationBrand[loc.ID] = brand
		ids = append(ids, loc.ID)
	}

	photos, err := c.photos.ListByOwnerAtLocations(ctx, email, ids)
	if err != nil {
		return nil, apperr.Upstream("failed to get user photos", err)
	}

	gross := grossPoints(locationBrand, photos)
	if len(gross) == 0 {
		return &Ledger{Status: LedgerNoQualifyingPhotos}, nil
	}
	return &Ledger{Status: LedgerPoints, Points: gross}, nil
}

// Calculate computes the user's spendable points per brand
func (c *LedgerCalculator) Calculate(ctx context.Context, email string) (*Ledger, error) {
	ledger, err := c.Gross(ctx, email)
	if err != nil || ledger.Status != LedgerPoints {
		return ledger, err
	}

	redemptions, err := c.redemptions.ListByUser(ctx, email)
	if err != nil {
		return nil, apperr.Upstream("failed to get redemptions", err)
	}
	ledger.Points = applyRedemptions(ledger.Points, redemptions)
	return ledger, nil
}

// grossPoints sums likes per brand over photos at branded locations
func grossPoints(locationBrand map[string]string, photos []models.Photo) map[string]int {
	points := make(map[string]int)
	for _, photo := range photos {
		brand, ok := locationBrand[photo.LocationID]
		if !ok {
			continue
		}
		points[brand] += photo.Likes
	}
	return points
}

// applyRedemptions subtracts spent points; brands missing from gross stay missing
func applyRedemptions(gross map[string]int, redemptions []models.Redemption) map[string]int {
	net := make(map[string]int, len(gross))
	for brand, pts := range gross {
		net[brand] = pts
	}
	for _, rec := range redemptions {
		brand := strings.ToLower(rec.Brand)
		if _, ok := net[brand]; ok {
			net[brand] -= rec.Points
		}
	}
	return net
}

func lowerUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
