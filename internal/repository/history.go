package repository

import (
	"context"
	"fmt"
	"time"

	"photo-points-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository appends login and like history rows
type HistoryRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *pgxpool.Pool, timeout time.Duration) *HistoryRepository {
	return &HistoryRepository{db: db, timeout: timeout}
}

// RecordLogin appends a login row
func (r *HistoryRepository) RecordLogin(ctx context.Context, email string, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `INSERT INTO login_history (login_history_id, user_email, login_dt) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, uuid.New(), email, at); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// RecordLike appends a like or unlike row
func (r *HistoryRepository) RecordLike(ctx context.Context, photoID, email string, kind models.LikeKind, at time.Time) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		INSERT INTO like_history (like_history_id, liked_photo_id, like_user, like_type, like_dt)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.Exec(ctx, query, uuid.New(), photoID, email, string(kind), at); err != nil {
		return fmt.Errorf("failed to record %s: %w", kind, err)
	}
	return nil
}
