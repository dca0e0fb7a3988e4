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

// RedemptionRepository handles database operations for redemptions
type RedemptionRepository struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

// NewRedemptionRepository creates a new redemption repository
func NewRedemptionRepository(db *pgxpool.Pool, timeout time.Duration) *RedemptionRepository {
	return &RedemptionRepository{db: db, timeout: timeout}
}

// ListByUser retrieves all redemptions of a user
func (r *RedemptionRepository) ListByUser(ctx context.Context, email string) ([]models.Redemption, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT redemption_id::text, user_email, brand, redeemed_points, redemption_dt
		FROM redemptions
		WHERE user_email = $1
		ORDER BY redemption_dt
	`
	rows, err := r.db.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []models.Redemption
	for rows.Next() {
		var rec models.Redemption
		if err := rows.Scan(&rec.ID, &rec.UserEmail, &rec.Brand, &rec.Points, &rec.RedeemedAt); err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate redemptions: %w", err)
	}
	return redemptions, nil
}

// Redeem appends rec if the user's spent points on the brand plus rec.Points stay within grossPoints.
// Redemptions of the same user and brand are serialized by a transaction-scoped advisory lock,
// so the balance check and the insert cannot interleave with another redemption.
func (r *RedemptionRepository) Redeem(ctx context.Context, rec *models.Redemption, grossPoints int) error {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		lockKey := rec.UserEmail + "|" + strings.ToLower(rec.Brand)
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("failed to lock balance: %w", err)
		}

		var spent int
		query := `
			SELECT COALESCE(SUM(redeemed_points), 0)
			FROM redemptions
			WHERE user_email = $1 AND lower(brand) = lower($2)
		`
		if err := tx.QueryRow(ctx, query, rec.UserEmail, rec.Brand).Scan(&spent); err != nil {
			return fmt.Errorf("failed to sum redemptions: %w", err)
		}

		if grossPoints-spent < rec.Points {
			return fmt.Errorf("balance %d, cost %d: %w", grossPoints-spent, rec.Points, ErrInsufficientBalance)
		}

		insert := `
			INSERT INTO redemptions (redemption_id, user_email, brand, redeemed_points, redemption_dt)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := tx.Exec(ctx, insert, rec.ID, rec.UserEmail, rec.Brand, rec.Points, rec.RedeemedAt); err != nil {
			return fmt.Errorf("failed to insert redemption: %w", err)
		}
		return nil
	})
}
