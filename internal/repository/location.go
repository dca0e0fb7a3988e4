package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"photo-points-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationRepository handles database operations for place names and brands
type LocationRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewLocationRepository creates a new location repository
func NewLocationRepository(db *pgxpool.Pool, timeout time.Duration) *LocationRepository {
	return &LocationRepository{db: db, timeout: timeout}
}

// NamedIDs returns the ids of locations that already have a name
func (r *LocationRepository) NamedIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT google_location_id FROM location_info WHERE location_name IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("failed to get named locations: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan named locations: %w", err)
	}
	return ids, nil
}

// ListByBrands retrieves locations whose brand matches any of brands, case-insensitively
func (r *LocationRepository) ListByBrands(ctx context.Context, brands []string) ([]models.Location, error) {
	if len(brands) == 0 {
		return nil, nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	lowered := make([]string, len(brands))
	for i, b := range brands {
		lowered[i] = strings.ToLower(b)
	}

	query := `
		SELECT google_location_id, location_name, location_brand
		FROM location_info
		WHERE lower(location_brand) = ANY($1)
	`
	return r.query(ctx, query, lowered)
}

// Unbranded retrieves named locations that have no brand yet
func (r *LocationRepository) Unbranded(ctx context.Context) ([]models.Location, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT google_location_id, location_name, location_brand
		FROM location_info
		WHERE location_name IS NOT NULL AND (location_brand IS NULL OR location_brand = '')
		ORDER BY google_location_id
	`
	return r.query(ctx, query)
}

// UpsertNames stores resolved names, rows that already have a name keep it
func (r *LocationRepository) UpsertNames(ctx context.Context, locations []models.Location) error {
	query := `
		INSERT INTO location_info (google_location_id, location_name)
		VALUES ($1, $2)
		ON CONFLICT (google_location_id)
		DO UPDATE SET location_name = COALESCE(location_info.location_name, EXCLUDED.location_name)
	`
	return r.sendBatch(ctx, locations, func(b *pgx.Batch, loc models.Location) {
		b.Queue(query, loc.ID, loc.Name)
	})
}

// SetBrands stores matched brands, rows that already have a brand keep it
func (r *LocationRepository) SetBrands(ctx context.Context, locations []models.Location) error {
	query := `
		UPDATE location_info
		SET location_brand = $2
		WHERE google_location_id = $1 AND (location_brand IS NULL OR location_brand = '')
	`
	return r.sendBatch(ctx, locations, func(b *pgx.Batch, loc models.Location) {
		b.Queue(query, loc.ID, loc.Brand)
	})
}

func (r *LocationRepository) sendBatch(ctx context.Context, locations []models.Location, queue func(*pgx.Batch, models.Location)) error {
	if len(locations) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	batch := &pgx.Batch{}
	for _, loc := range locations {
		queue(batch, loc)
	}

	results := r.db.SendBatch(ctx, batch)
	for range locations {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("failed to update locations: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("failed to update locations: %w", err)
	}
	return nil
}

func (r *LocationRepository) query(ctx context.Context, query string, args ...any) ([]models.Location, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Brand); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate locations: %w", err)
	}
	return locations, nil
}
