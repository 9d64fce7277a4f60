package repository

import (
	"context"
	"fmt"

	"lotto/database"
	"lotto/models"
)

// AuditRepository implements the AuditRepository interface
type AuditRepository struct {
	q queryable
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{q: db.Pool}
}

// newAuditRepositoryWithTx creates a new audit repository with a transaction
func newAuditRepositoryWithTx(tx queryable) *AuditRepository {
	return &AuditRepository{q: tx}
}

const auditColumns = `
	id, ticket_id, draw_id, claim_id, action, performed_by, notes, created_at`

// Record appends an audit entry
func (r *AuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (ticket_id, draw_id, claim_id, action, performed_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.TicketID,
		entry.DrawID,
		entry.ClaimID,
		entry.Action,
		entry.PerformedBy,
		entry.Notes,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record audit entry %s: %w", entry.Action, err)
	}

	return nil
}

// ListByTicket returns all audit entries for a ticket in the order they
// were written
func (r *AuditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]*models.AuditEntry, error) {
	query := `SELECT` + auditColumns + `
		FROM audit_entries
		WHERE ticket_id = $1
		ORDER BY created_at, id`

	return r.list(ctx, query, ticketID)
}

// ListByDraw returns all audit entries for a draw in the order they were
// written
func (r *AuditRepository) ListByDraw(ctx context.Context, drawID int64) ([]*models.AuditEntry, error) {
	query := `SELECT` + auditColumns + `
		FROM audit_entries
		WHERE draw_id = $1
		ORDER BY created_at, id`

	return r.list(ctx, query, drawID)
}

func (r *AuditRepository) list(ctx context.Context, query string, arg any) ([]*models.AuditEntry, error) {
	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TicketID,
			&entry.DrawID,
			&entry.ClaimID,
			&entry.Action,
			&entry.PerformedBy,
			&entry.Notes,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}

	return entries, nil
}
