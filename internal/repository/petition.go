package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PetitionRepository handles database operations for location petitions
type PetitionRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewPetitionRepository creates a new petition repository
func NewPetitionRepository(db *pgxpool.Pool, timeout time.Duration) *PetitionRepository {
	return &PetitionRepository{db: db, timeout: timeout}
}

// Increment adds one petition to a location and returns the new count
func (r *PetitionRepository) Increment(ctx context.Context, locationID string) (int, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO petitions (google_location_id, location_petitions_count)
		VALUES ($1, 1)
		ON CONFLICT (google_location_id)
		DO UPDATE SET location_petitions_count = petitions.location_petitions_count + 1
		RETURNING location_petitions_count
	`
	var count int
	if err := r.db.QueryRow(ctx, query, locationID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to increment petition count: %w", err)
	}
	return count, nil
}
