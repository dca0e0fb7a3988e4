package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates a connection pool and verifies the connection
func NewPostgresPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// withTimeout bounds a single store call
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS offers (
		offer_id            BIGSERIAL PRIMARY KEY,
		brand               TEXT NOT NULL,
		brand_logo_url      TEXT,
		discount_amount     NUMERIC(10, 2) NOT NULL,
		discount_points_req INTEGER NOT NULL CHECK (discount_points_req > 0),
		discount_code       TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS redemptions (
		redemption_id   UUID PRIMARY KEY,
		user_email      TEXT NOT NULL,
		brand           TEXT NOT NULL,
		redeemed_points INTEGER NOT NULL CHECK (redeemed_points > 0),
		redemption_dt   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS redemptions_user_brand_idx ON redemptions (user_email, lower(brand))`,
	`CREATE TABLE IF NOT EXISTS location_info (
		google_location_id TEXT PRIMARY KEY,
		location_name      TEXT,
		location_brand     TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS petitions (
		google_location_id       TEXT PRIMARY KEY,
		location_petitions_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS login_history (
		login_history_id UUID PRIMARY KEY,
		user_email       TEXT NOT NULL,
		login_dt         TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS like_history (
		like_history_id UUID PRIMARY KEY,
		liked_photo_id  TEXT NOT NULL,
		like_user       TEXT NOT NULL,
		like_type       TEXT NOT NULL,
		like_dt         TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate creates the relational tables if they do not exist
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
