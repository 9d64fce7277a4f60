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

// ClaimRepository implements the ClaimRepository interface
type ClaimRepository struct {
	q queryable
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *database.DB) *ClaimRepository {
	return &ClaimRepository{q: db.Pool}
}

// newClaimRepositoryWithTx creates a new claim repository with a transaction
func newClaimRepositoryWithTx(tx queryable) *ClaimRepository {
	return &ClaimRepository{q: tx}
}

const claimColumns = `
	id, ticket_id, claimer_name, claimer_contact, status,
	calculated_prize, approved_prize, requested_at, resolved_at, resolved_by, notes
`

func scanClaim(row pgx.Row) (*models.ClaimRequest, error) {
	var claim models.ClaimRequest
	err := row.Scan(
		&claim.ID,
		&claim.TicketID,
		&claim.ClaimerName,
		&claim.ClaimerContact,
		&claim.Status,
		&claim.CalculatedPrize,
		&claim.ApprovedPrize,
		&claim.RequestedAt,
		&claim.ResolvedAt,
		&claim.ResolvedBy,
		&claim.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// Create inserts a pending claim. The ticket_id unique constraint holds
// the one-claim-per-ticket invariant; a collision surfaces as
// service.ErrAlreadyExists.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.ClaimRequest) error {
	query := `
		INSERT INTO claim_requests (ticket_id, claimer_name, claimer_contact, status, calculated_prize)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticket_id) DO NOTHING
		RETURNING id, requested_at
	`

	err := r.q.QueryRow(ctx, query,
		claim.TicketID,
		claim.ClaimerName,
		claim.ClaimerContact,
		claim.Status,
		claim.CalculatedPrize,
	).Scan(&claim.ID, &claim.RequestedAt)

	if err == pgx.ErrNoRows {
		return service.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create claim for ticket %d: %w", claim.TicketID, err)
	}

	return nil
}

// GetByID retrieves a claim by its ID. Returns nil if not found.
func (r *ClaimRepository) GetByID(ctx context.Context, id int64) (*models.ClaimRequest, error) {
	query := `SELECT` + claimColumns + `FROM claim_requests WHERE id = $1`

	claim, err := scanClaim(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim %d: %w", id, err)
	}

	return claim, nil
}

// GetByTicketID retrieves the claim for a ticket. Returns nil if not found.
func (r *ClaimRepository) GetByTicketID(ctx context.Context, ticketID int64) (*models.ClaimRequest, error) {
	query := `SELECT` + claimColumns + `FROM claim_requests WHERE ticket_id = $1`

	claim, err := scanClaim(r.q.QueryRow(ctx, query, ticketID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get claim for ticket %d: %w", ticketID, err)
	}

	return claim, nil
}

// ListPending returns all unresolved claims, oldest first
func (r *ClaimRepository) ListPending(ctx context.Context) ([]*models.ClaimRequest, error) {
	query := `SELECT` + claimColumns + `
		FROM claim_requests
		WHERE status = 'pending'
		ORDER BY requested_at`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending claims: %w", err)
	}
	defer rows.Close()

	var claims []*models.ClaimRequest
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate claims: %w", err)
	}

	return claims, nil
}

// Resolve moves a claim from pending to a terminal status, applying only
// if the claim is still pending. Returns false when another resolver won
// the race.
func (r *ClaimRepository) Resolve(ctx context.Context, claimID int64, status models.ClaimStatus, approvedPrize *decimal.Decimal, resolvedBy, notes string) (bool, error) {
	query := `
		UPDATE claim_requests
		SET status = $1, approved_prize = $2, resolved_at = NOW(), resolved_by = $3, notes = $4
		WHERE id = $5 AND status = 'pending'
	`

	result, err := r.q.Exec(ctx, query, status, approvedPrize, resolvedBy, notes, claimID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve claim %d: %w", claimID, err)
	}

	return result.RowsAffected() > 0, nil
}
