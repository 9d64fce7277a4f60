package repository

import (
	"context"
	"fmt"
	"time"

	"lotto/database"
	"lotto/models"

	"github.com/shopspring/decimal"
)

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Record appends an immutable ledger entry
func (r *LedgerRepository) Record(ctx context.Context, txn *models.BalanceTransaction) error {
	query := `
		INSERT INTO balance_transactions (account_id, reference, amount, balance_before, balance_after, kind, processed_by, note, ticket_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		txn.AccountID,
		txn.Reference,
		txn.Amount,
		txn.BalanceBefore,
		txn.BalanceAfter,
		txn.Kind,
		txn.ProcessedBy,
		txn.Note,
		txn.TicketNumber,
	).Scan(&txn.ID, &txn.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record transaction for account %d: %w", txn.AccountID, err)
	}

	return nil
}

// ListByAccount returns an account's ledger entries within [from, to),
// newest first. Zero times leave that bound open.
func (r *LedgerRepository) ListByAccount(ctx context.Context, accountID int64, from, to time.Time, limit int) ([]*models.BalanceTransaction, error) {
	query := `
		SELECT id, account_id, reference, amount, balance_before, balance_after, kind, processed_by, note, ticket_number, created_at
		FROM balance_transactions
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at < $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4
	`

	var fromArg, toArg any
	if !from.IsZero() {
		fromArg = from
	}
	if !to.IsZero() {
		toArg = to
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.q.Query(ctx, query, accountID, fromArg, toArg, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for account %d: %w", accountID, err)
	}
	defer rows.Close()

	var txns []*models.BalanceTransaction
	for rows.Next() {
		var txn models.BalanceTransaction
		err := rows.Scan(
			&txn.ID,
			&txn.AccountID,
			&txn.Reference,
			&txn.Amount,
			&txn.BalanceBefore,
			&txn.BalanceAfter,
			&txn.Kind,
			&txn.ProcessedBy,
			&txn.Note,
			&txn.TicketNumber,
			&txn.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, nil
}

// SumByAccount returns the sum of an account's ledger amounts. Used by
// reconciliation to check the ledger against the stored balance.
func (r *LedgerRepository) SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM balance_transactions
		WHERE account_id = $1
	`

	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum transactions for account %d: %w", accountID, err)
	}

	return sum, nil
}
