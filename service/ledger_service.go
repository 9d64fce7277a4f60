package service

import (
	"context"
	"fmt"
	"time"

	"lotto/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// Load credits an account and records the ledger entry
func (s *ledgerService) Load(ctx context.Context, accountID int64, amount decimal.Decimal, processedBy, note string) (*models.BalanceTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("load amount must be positive, got %s", amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	before, after, err := uow.AccountRepository().CreditBalance(ctx, accountID, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to credit balance: %w", err)
	}

	txn := &models.BalanceTransaction{
		AccountID:     accountID,
		Reference:     uuid.NewString(),
		Amount:        amount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Kind:          models.TransactionKindLoad,
		ProcessedBy:   processedBy,
		Note:          note,
	}
	if err := RecordBalanceChange(ctx, uow, txn); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// Deduct debits an account, optionally allowing the balance to go negative
func (s *ledgerService) Deduct(ctx context.Context, accountID int64, amount decimal.Decimal, allowOverdraft bool, processedBy, note string) (*models.BalanceTransaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deduct amount must be positive, got %s", amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	var before, after decimal.Decimal
	if allowOverdraft {
		before, after, err = uow.AccountRepository().DeductBalanceOverdraft(ctx, accountID, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to deduct balance: %w", err)
		}
	} else {
		var applied bool
		before, after, applied, err = uow.AccountRepository().DeductBalance(ctx, accountID, amount)
		if err != nil {
			return nil, fmt.Errorf("failed to deduct balance: %w", err)
		}
		if !applied {
			return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, account.CurrentBalance, amount)
		}
	}

	txn := &models.BalanceTransaction{
		AccountID:     accountID,
		Reference:     uuid.NewString(),
		Amount:        amount.Neg(),
		BalanceBefore: before,
		BalanceAfter:  after,
		Kind:          models.TransactionKindDeduct,
		ProcessedBy:   processedBy,
		Note:          note,
	}
	if err := RecordBalanceChange(ctx, uow, txn); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return txn, nil
}

// GetBalance returns an account's stored balance
func (s *ledgerService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return decimal.Zero, ErrAccountNotFound
	}

	return account.CurrentBalance, nil
}

// ListTransactions returns an account's ledger entries within [from, to)
func (s *ledgerService) ListTransactions(ctx context.Context, accountID int64, from, to time.Time, limit int) ([]*models.BalanceTransaction, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return uow.LedgerRepository().ListByAccount(ctx, accountID, from, to, limit)
}

// Reconcile compares an account's ledger sum against its stored balance.
// The two are read in one transaction so the snapshot is consistent.
func (s *ledgerService) Reconcile(ctx context.Context, accountID int64) (ledgerSum, stored decimal.Decimal, err error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return decimal.Zero, decimal.Zero, ErrAccountNotFound
	}

	sum, err := uow.LedgerRepository().SumByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return sum, account.CurrentBalance, nil
}
