package repository

import (
	"context"
	"fmt"

	"lotto/database"
	"lotto/models"
	"lotto/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BetLimitRepository implements the BetLimitRepository interface
type BetLimitRepository struct {
	q queryable
}

// NewBetLimitRepository creates a new bet limit repository
func NewBetLimitRepository(db *database.DB) *BetLimitRepository {
	return &BetLimitRepository{q: db.Pool}
}

// newBetLimitRepositoryWithTx creates a new bet limit repository with a transaction
func newBetLimitRepositoryWithTx(tx queryable) *BetLimitRepository {
	return &BetLimitRepository{q: tx}
}

// Create inserts a limit row for a draw
func (r *BetLimitRepository) Create(ctx context.Context, limit *models.BetLimit) error {
	query := `
		INSERT INTO bet_limits (draw_id, bet_type, combination, max_amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (draw_id, bet_type, combination) DO NOTHING
		RETURNING id, current_total, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		limit.DrawID,
		limit.BetType,
		limit.Combination,
		limit.MaxAmount,
	).Scan(&limit.ID, &limit.CurrentTotal, &limit.CreatedAt, &limit.UpdatedAt)

	if err == pgx.ErrNoRows {
		return service.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create bet limit for draw %d type %s: %w", limit.DrawID, limit.BetType, err)
	}

	return nil
}

// ListByDraw returns all limit rows for a draw, type-wide rows first
func (r *BetLimitRepository) ListByDraw(ctx context.Context, drawID int64) ([]*models.BetLimit, error) {
	query := `
		SELECT id, draw_id, bet_type, combination, max_amount, current_total, created_at, updated_at
		FROM bet_limits
		WHERE draw_id = $1
		ORDER BY bet_type, combination
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bet limits for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var limits []*models.BetLimit
	for rows.Next() {
		var limit models.BetLimit
		err := rows.Scan(
			&limit.ID,
			&limit.DrawID,
			&limit.BetType,
			&limit.Combination,
			&limit.MaxAmount,
			&limit.CurrentTotal,
			&limit.CreatedAt,
			&limit.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet limit: %w", err)
		}
		limits = append(limits, &limit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bet limits: %w", err)
	}

	return limits, nil
}

// TryReserve atomically adds amount to a limit's running total, applying
// only if the new total stays within the cap. Returns whether the
// reservation was admitted and the total after the attempt. Concurrent
// reservations serialize on the row; the guard in the WHERE clause makes
// overshooting the cap impossible regardless of interleaving.
func (r *BetLimitRepository) TryReserve(ctx context.Context, drawID int64, betType models.BetType, combination string, amount decimal.Decimal) (bool, decimal.Decimal, error) {
	if !amount.IsPositive() {
		return false, decimal.Zero, fmt.Errorf("reserve amount must be positive, got %s", amount)
	}

	query := `
		UPDATE bet_limits
		SET current_total = current_total + $1, updated_at = NOW()
		WHERE draw_id = $2 AND bet_type = $3 AND combination = $4
		  AND current_total + $1 <= max_amount
		RETURNING current_total
	`

	var newTotal decimal.Decimal
	err := r.q.QueryRow(ctx, query, amount, drawID, betType, combination).Scan(&newTotal)
	if err == pgx.ErrNoRows {
		// Either the limit row is absent or the cap would be exceeded;
		// the caller disambiguates via ListByDraw when it matters.
		return false, decimal.Zero, nil
	}
	if err != nil {
		return false, decimal.Zero, fmt.Errorf("failed to reserve %s against limit draw=%d type=%s: %w", amount, drawID, betType, err)
	}

	return true, newTotal, nil
}

// Release subtracts amount from a limit's running total, flooring at
// zero. Used when a ticket is voided.
func (r *BetLimitRepository) Release(ctx context.Context, drawID int64, betType models.BetType, combination string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("release amount must be positive, got %s", amount)
	}

	query := `
		UPDATE bet_limits
		SET current_total = GREATEST(current_total - $1, 0), updated_at = NOW()
		WHERE draw_id = $2 AND bet_type = $3 AND combination = $4
	`

	if _, err := r.q.Exec(ctx, query, amount, drawID, betType, combination); err != nil {
		return fmt.Errorf("failed to release %s from limit draw=%d type=%s: %w", amount, drawID, betType, err)
	}

	return nil
}

// SetMaxAmount updates a limit's cap, creating the row if absent. The cap
// may be set below the current total; existing exposure stands but no new
// bets will be admitted until the total drops.
func (r *BetLimitRepository) SetMaxAmount(ctx context.Context, drawID int64, betType models.BetType, combination string, maxAmount decimal.Decimal) error {
	query := `
		INSERT INTO bet_limits (draw_id, bet_type, combination, max_amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (draw_id, bet_type, combination)
		DO UPDATE SET max_amount = EXCLUDED.max_amount, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, drawID, betType, combination, maxAmount); err != nil {
		return fmt.Errorf("failed to set limit draw=%d type=%s comb=%q: %w", drawID, betType, combination, err)
	}

	return nil
}

// Exists reports whether a specific limit row is present
func (r *BetLimitRepository) Exists(ctx context.Context, drawID int64, betType models.BetType, combination string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bet_limits
			WHERE draw_id = $1 AND bet_type = $2 AND combination = $3
		)
	`

	var exists bool
	if err := r.q.QueryRow(ctx, query, drawID, betType, combination).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check limit draw=%d type=%s: %w", drawID, betType, err)
	}

	return exists, nil
}
