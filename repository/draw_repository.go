package repository

import (
	"context"
	"fmt"
	"time"

	"lotto/database"
	"lotto/models"
	"lotto/service"

	"github.com/jackc/pgx/v5"
)

// DrawRepository implements the DrawRepository interface
type DrawRepository struct {
	q queryable
}

// NewDrawRepository creates a new draw repository
func NewDrawRepository(db *database.DB) *DrawRepository {
	return &DrawRepository{q: db.Pool}
}

// newDrawRepositoryWithTx creates a new draw repository with a transaction
func newDrawRepositoryWithTx(tx queryable) *DrawRepository {
	return &DrawRepository{q: tx}
}

const drawColumns = `
	id, draw_date, time_slot, status, result, opens_at, closes_at, settled_at, created_at
`

func scanDraw(row pgx.Row) (*models.Draw, error) {
	var draw models.Draw
	err := row.Scan(
		&draw.ID,
		&draw.DrawDate,
		&draw.TimeSlot,
		&draw.Status,
		&draw.Result,
		&draw.OpensAt,
		&draw.ClosesAt,
		&draw.SettledAt,
		&draw.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &draw, nil
}

// Create inserts a scheduled draw. The (draw_date, time_slot) unique
// constraint makes scheduling idempotent; callers treat a conflict as
// already-scheduled.
func (r *DrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	query := `
		INSERT INTO draws (draw_date, time_slot, status, opens_at, closes_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (draw_date, time_slot) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		draw.DrawDate,
		draw.TimeSlot,
		draw.Status,
		draw.OpensAt,
		draw.ClosesAt,
	).Scan(&draw.ID, &draw.CreatedAt)

	if err == pgx.ErrNoRows {
		return service.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create draw %s/%s: %w", draw.DrawDate.Format("2006-01-02"), draw.TimeSlot, err)
	}

	return nil
}

// GetByID retrieves a draw by its ID. Returns nil if not found.
func (r *DrawRepository) GetByID(ctx context.Context, id int64) (*models.Draw, error) {
	query := `SELECT` + drawColumns + `FROM draws WHERE id = $1`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %d: %w", id, err)
	}

	return draw, nil
}

// GetByIDForShare retrieves a draw by its ID, taking a share lock on the
// row for the rest of the transaction. Status transitions on the draw
// block until the caller commits, so a sale checked against an open draw
// cannot interleave with the scheduler closing it. Returns nil if not found.
func (r *DrawRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Draw, error) {
	query := `SELECT` + drawColumns + `FROM draws WHERE id = $1 FOR SHARE`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw %d for share: %w", id, err)
	}

	return draw, nil
}

// GetByDateSlot retrieves the draw for a date and slot. Returns nil if not found.
func (r *DrawRepository) GetByDateSlot(ctx context.Context, date time.Time, slot models.TimeSlot) (*models.Draw, error) {
	query := `SELECT` + drawColumns + `FROM draws WHERE draw_date = $1 AND time_slot = $2`

	draw, err := scanDraw(r.q.QueryRow(ctx, query, date, slot))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draw for %s/%s: %w", date.Format("2006-01-02"), slot, err)
	}

	return draw, nil
}

// ListByDate returns all draws on a date in slot order
func (r *DrawRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.Draw, error) {
	query := `SELECT` + drawColumns + `
		FROM draws
		WHERE draw_date = $1
		ORDER BY opens_at`

	rows, err := r.q.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list draws for %s: %w", date.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var draws []*models.Draw
	for rows.Next() {
		draw, err := scanDraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draw: %w", err)
		}
		draws = append(draws, draw)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draws: %w", err)
	}

	return draws, nil
}

// GetOpenDraw returns the single currently open draw, or nil when none is open
func (r *DrawRepository) GetOpenDraw(ctx context.Context) (*models.Draw, error) {
	query := `SELECT` + drawColumns + `FROM draws WHERE status = 'open' ORDER BY closes_at LIMIT 1`

	draw, err := scanDraw(r.q.QueryRow(ctx, query))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get open draw: %w", err)
	}

	return draw, nil
}

// TransitionStatus moves a draw from one status to the next, applying
// only if the draw is still in the expected state. Returns false when the
// guard failed, meaning another caller already transitioned the draw.
func (r *DrawRepository) TransitionStatus(ctx context.Context, drawID int64, from, to models.DrawStatus) (bool, error) {
	query := `
		UPDATE draws
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, to, drawID, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition draw %d to %s: %w", drawID, to, err)
	}

	return result.RowsAffected() > 0, nil
}

// SettleResult records the winning combination and marks the draw settled,
// applying only if the draw is closed and has no result yet. Returns false
// when the guard failed.
func (r *DrawRepository) SettleResult(ctx context.Context, drawID int64, result string) (bool, error) {
	query := `
		UPDATE draws
		SET status = 'settled', result = $1, settled_at = NOW()
		WHERE id = $2 AND status = 'closed' AND result IS NULL
	`

	tag, err := r.q.Exec(ctx, query, result, drawID)
	if err != nil {
		return false, fmt.Errorf("failed to settle draw %d: %w", drawID, err)
	}

	return tag.RowsAffected() > 0, nil
}

// OpenDue opens every scheduled draw whose opening time has passed,
// returning the IDs it opened. Safe to run from concurrent scheduler ticks.
func (r *DrawRepository) OpenDue(ctx context.Context, now time.Time) ([]int64, error) {
	query := `
		UPDATE draws
		SET status = 'open'
		WHERE status = 'scheduled' AND opens_at <= $1
		RETURNING id
	`

	return r.collectIDs(ctx, query, now, "open due draws")
}

// CloseDue closes every open draw whose cutoff has passed, returning the
// IDs it closed
func (r *DrawRepository) CloseDue(ctx context.Context, now time.Time) ([]int64, error) {
	query := `
		UPDATE draws
		SET status = 'closed'
		WHERE status = 'open' AND closes_at <= $1
		RETURNING id
	`

	return r.collectIDs(ctx, query, now, "close due draws")
}

func (r *DrawRepository) collectIDs(ctx context.Context, query string, now time.Time, op string) ([]int64, error) {
	rows, err := r.q.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan draw id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate draw ids: %w", err)
	}

	return ids, nil
}
