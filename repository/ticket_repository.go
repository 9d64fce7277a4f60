package repository

import (
	"context"
	"fmt"
	"strings"

	"lotto/database"
	"lotto/models"
	"lotto/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TicketRepository implements the TicketRepository interface
type TicketRepository struct {
	q queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

// newTicketRepositoryWithTx creates a new ticket repository with a transaction
func newTicketRepositoryWithTx(tx queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

// CreateWithBets inserts a ticket and its bet lines. The ticket_number
// unique constraint surfaces as service.ErrAlreadyExists so the caller can
// regenerate and retry.
func (r *TicketRepository) CreateWithBets(ctx context.Context, ticket *models.Ticket) error {
	query := `
		INSERT INTO tickets (ticket_number, account_id, draw_id, status, total_amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ticket_number) DO NOTHING
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		ticket.TicketNumber,
		ticket.AccountID,
		ticket.DrawID,
		ticket.Status,
		ticket.TotalAmount,
	).Scan(&ticket.ID, &ticket.CreatedAt)

	if err == pgx.ErrNoRows {
		return service.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to create ticket %s: %w", ticket.TicketNumber, err)
	}

	betQuery := `
		INSERT INTO bets (ticket_id, sequence, bet_type, combination, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	for _, bet := range ticket.Bets {
		bet.TicketID = ticket.ID
		err := r.q.QueryRow(ctx, betQuery,
			bet.TicketID,
			bet.Sequence,
			bet.BetType,
			bet.Combination,
			bet.Amount,
		).Scan(&bet.ID)
		if err != nil {
			return fmt.Errorf("failed to create bet %s on ticket %s: %w", bet.Sequence, ticket.TicketNumber, err)
		}
	}

	return nil
}

// GetByID retrieves a ticket with its bets. Returns nil if not found.
func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByNumber retrieves a ticket by its printed number with its bets.
// Returns nil if not found.
func (r *TicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	return r.getOne(ctx, `WHERE ticket_number = $1`, ticketNumber)
}

func (r *TicketRepository) getOne(ctx context.Context, where string, arg any) (*models.Ticket, error) {
	query := `
		SELECT id, ticket_number, account_id, draw_id, status, total_amount, created_at
		FROM tickets ` + where

	var ticket models.Ticket
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.AccountID,
		&ticket.DrawID,
		&ticket.Status,
		&ticket.TotalAmount,
		&ticket.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket %v: %w", arg, err)
	}

	// CHAR columns come back space padded
	ticket.TicketNumber = strings.TrimSpace(ticket.TicketNumber)

	bets, err := r.listBets(ctx, `WHERE b.ticket_id = $1`, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Bets = bets

	return &ticket, nil
}

// ListByDraw returns all tickets sold against a draw, without bet lines
func (r *TicketRepository) ListByDraw(ctx context.Context, drawID int64) ([]*models.Ticket, error) {
	query := `
		SELECT id, ticket_number, account_id, draw_id, status, total_amount, created_at
		FROM tickets
		WHERE draw_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets for draw %d: %w", drawID, err)
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		err := rows.Scan(
			&ticket.ID,
			&ticket.TicketNumber,
			&ticket.AccountID,
			&ticket.DrawID,
			&ticket.Status,
			&ticket.TotalAmount,
			&ticket.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		ticket.TicketNumber = strings.TrimSpace(ticket.TicketNumber)
		tickets = append(tickets, &ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tickets: %w", err)
	}

	return tickets, nil
}

// ListBetsByDraw returns every bet line on active tickets of a draw,
// used by settlement to evaluate outcomes in one pass
func (r *TicketRepository) ListBetsByDraw(ctx context.Context, drawID int64) ([]*models.Bet, error) {
	return r.listBets(ctx, `
		JOIN tickets t ON t.id = b.ticket_id
		WHERE t.draw_id = $1 AND t.status = 'active'`, drawID)
}

func (r *TicketRepository) listBets(ctx context.Context, clause string, arg any) ([]*models.Bet, error) {
	query := `
		SELECT b.id, b.ticket_id, b.sequence, b.bet_type, b.combination, b.amount, b.is_winner, b.win_amount
		FROM bets b ` + clause + `
		ORDER BY b.ticket_id, b.sequence`

	rows, err := r.q.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		var bet models.Bet
		err := rows.Scan(
			&bet.ID,
			&bet.TicketID,
			&bet.Sequence,
			&bet.BetType,
			&bet.Combination,
			&bet.Amount,
			&bet.IsWinner,
			&bet.WinAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bet.Sequence = strings.TrimSpace(bet.Sequence)
		bet.Combination = strings.TrimSpace(bet.Combination)
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}

// SetBetOutcome records a bet line's evaluation result
func (r *TicketRepository) SetBetOutcome(ctx context.Context, betID int64, isWinner bool, winAmount decimal.Decimal) error {
	query := `
		UPDATE bets
		SET is_winner = $1, win_amount = $2
		WHERE id = $3
	`

	result, err := r.q.Exec(ctx, query, isWinner, winAmount, betID)
	if err != nil {
		return fmt.Errorf("failed to set outcome for bet %d: %w", betID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("bet %d not found", betID)
	}

	return nil
}

// TransitionStatus moves a ticket from one status to another, applying
// only if the ticket is still in the expected state. Returns false when
// the guard failed.
func (r *TicketRepository) TransitionStatus(ctx context.Context, ticketID int64, from, to models.TicketStatus) (bool, error) {
	query := `
		UPDATE tickets
		SET status = $1
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.Exec(ctx, query, to, ticketID, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition ticket %d to %s: %w", ticketID, to, err)
	}

	return result.RowsAffected() > 0, nil
}
