package service

import (
	"context"
	"fmt"

	"lotto/models"

	"github.com/shopspring/decimal"
)

type accountService struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory) AccountService {
	return &accountService{
		uowFactory: uowFactory,
	}
}

// CreateAccount registers a new account in the hierarchy
func (s *accountService) CreateAccount(ctx context.Context, username, fullName string, role models.Role, parentAccountID *int64) (*models.Account, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("unknown role %q", role)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if parentAccountID != nil {
		parent, err := uow.AccountRepository().GetByID(ctx, *parentAccountID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent account %d", ErrAccountNotFound, *parentAccountID)
		}
	}

	account := &models.Account{
		Username:        username,
		FullName:        fullName,
		Role:            role,
		ParentAccountID: parentAccountID,
		CurrentBalance:  decimal.Zero,
		Active:          true,
	}
	if err := uow.AccountRepository().Create(ctx, account); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return account, nil
}

// GetAccount retrieves an account by ID
func (s *accountService) GetAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

// GetAccountByUsername retrieves an account by username
func (s *accountService) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	return account, nil
}

// SetActive toggles whether an account may transact
func (s *accountService) SetActive(ctx context.Context, accountID int64, active bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AccountRepository().SetActive(ctx, accountID, active); err != nil {
		return err
	}

	return uow.Commit()
}
