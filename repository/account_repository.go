package repository

import (
	"context"
	"fmt"

	"lotto/database"
	"lotto/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `
	id, username, full_name, role, parent_account_id,
	current_balance, active, created_at, updated_at
`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var acct models.Account
	err := row.Scan(
		&acct.ID,
		&acct.Username,
		&acct.FullName,
		&acct.Role,
		&acct.ParentAccountID,
		&acct.CurrentBalance,
		&acct.Active,
		&acct.CreatedAt,
		&acct.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acct, nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (username, full_name, role, parent_account_id, current_balance, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		account.Username,
		account.FullName,
		account.Role,
		account.ParentAccountID,
		account.CurrentBalance,
		account.Active,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create account %s: %w", account.Username, err)
	}

	return nil
}

// GetByID retrieves an account by its ID. Returns nil if not found.
func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE id = $1`

	acct, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}

	return acct, nil
}

// GetByUsername retrieves an account by username. Returns nil if not found.
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE username = $1`

	acct, err := scanAccount(r.q.QueryRow(ctx, query, username))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", username, err)
	}

	return acct, nil
}

// ListByRole returns all active accounts holding the given role
func (r *AccountRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error) {
	query := `SELECT` + accountColumns + `FROM accounts WHERE role = $1 AND active ORDER BY username`

	rows, err := r.q.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts by role %s: %w", role, err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// CreditBalance adds to an account's balance atomically and returns the
// balance before and after the credit.
func (r *AccountRepository) CreditBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (before, after decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("credit amount must be positive, got %s", amount)
	}

	query := `
		UPDATE accounts
		SET current_balance = current_balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING current_balance - $1, current_balance
	`

	err = r.q.QueryRow(ctx, query, amount, accountID).Scan(&before, &after)
	if err == pgx.ErrNoRows {
		return decimal.Zero, decimal.Zero, fmt.Errorf("account %d not found", accountID)
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to credit account %d: %w", accountID, err)
	}

	return before, after, nil
}

// DeductBalance subtracts from an account's balance atomically, refusing
// to take the balance below zero. Returns the balance before and after,
// and whether the deduction was applied.
func (r *AccountRepository) DeductBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (before, after decimal.Decimal, applied bool, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("deduct amount must be positive, got %s", amount)
	}

	query := `
		UPDATE accounts
		SET current_balance = current_balance - $1, updated_at = NOW()
		WHERE id = $2 AND current_balance >= $1
		RETURNING current_balance + $1, current_balance
	`

	err = r.q.QueryRow(ctx, query, amount, accountID).Scan(&before, &after)
	if err == pgx.ErrNoRows {
		// Insufficient funds or unknown account; the caller disambiguates.
		return decimal.Zero, decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, false, fmt.Errorf("failed to deduct from account %d: %w", accountID, err)
	}

	return before, after, true, nil
}

// DeductBalanceOverdraft subtracts from an account's balance without the
// non-negative guard. Used for administrative corrections only.
func (r *AccountRepository) DeductBalanceOverdraft(ctx context.Context, accountID int64, amount decimal.Decimal) (before, after decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("deduct amount must be positive, got %s", amount)
	}

	query := `
		UPDATE accounts
		SET current_balance = current_balance - $1, updated_at = NOW()
		WHERE id = $2
		RETURNING current_balance + $1, current_balance
	`

	err = r.q.QueryRow(ctx, query, amount, accountID).Scan(&before, &after)
	if err == pgx.ErrNoRows {
		return decimal.Zero, decimal.Zero, fmt.Errorf("account %d not found", accountID)
	}
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to deduct from account %d: %w", accountID, err)
	}

	return before, after, nil
}

// SetActive toggles whether an account may transact
func (r *AccountRepository) SetActive(ctx context.Context, accountID int64, active bool) error {
	query := `UPDATE accounts SET active = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.q.Exec(ctx, query, active, accountID)
	if err != nil {
		return fmt.Errorf("failed to set active for account %d: %w", accountID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d not found", accountID)
	}

	return nil
}
