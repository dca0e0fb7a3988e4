package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"photo-points-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const offerColumns = `offer_id, brand, brand_logo_url, discount_amount, discount_points_req, discount_code`

// OfferRepository handles database operations for offers
type OfferRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewOfferRepository creates a new offer repository
func NewOfferRepository(db *pgxpool.Pool, timeout time.Duration) *OfferRepository {
	return &OfferRepository{db: db, timeout: timeout}
}

// List retrieves all offers ordered by brand
func (r *OfferRepository) List(ctx context.Context) ([]models.Offer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + offerColumns + ` FROM offers ORDER BY brand, offer_id`
	return r.query(ctx, query)
}

// ListForLocations retrieves offers whose brand matches any of the given locations
func (r *OfferRepository) ListForLocations(ctx context.Context, locationIDs []string) ([]models.Offer, error) {
	if len(locationIDs) == 0 {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT ` + offerColumns + `
		FROM offers
		WHERE lower(brand) IN (
			SELECT DISTINCT lower(location_brand)
			FROM location_info
			WHERE google_location_id = ANY($1) AND location_brand IS NOT NULL
		)
		ORDER BY brand, offer_id
	`
	return r.query(ctx, query, locationIDs)
}

// GetByID retrieves an offer by ID
func (r *OfferRepository) GetByID(ctx context.Context, id int64) (*models.Offer, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `SELECT ` + offerColumns + ` FROM offers WHERE offer_id = $1`
	var offer models.Offer
	err := r.db.QueryRow(ctx, query, id).Scan(
		&offer.ID, &offer.Brand, &offer.BrandLogoURL, &offer.DiscountAmount, &offer.PointsRequired, &offer.Code,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("offer not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get offer: %w", err)
	}
	return &offer, nil
}

// Brands returns the distinct brands that have offers
func (r *OfferRepository) Brands(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT DISTINCT brand FROM offers ORDER BY brand`)
	if err != nil {
		return nil, fmt.Errorf("failed to get brands: %w", err)
	}
	brands, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan brands: %w", err)
	}
	return brands, nil
}

func (r *OfferRepository) query(ctx context.Context, query string, args ...any) ([]models.Offer, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get offers: %w", err)
	}
	defer rows.Close()

	var offers []models.Offer
	for rows.Next() {
		var offer models.Offer
		if err := rows.Scan(
			&offer.ID, &offer.Brand, &offer.BrandLogoURL, &offer.DiscountAmount, &offer.PointsRequired, &offer.Code,
		); err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offers: %w", err)
	}
	return offers, nil
}
