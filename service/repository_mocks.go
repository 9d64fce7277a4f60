package service

import (
	"context"
	"time"

	"lotto/events"
	"lotto/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

func (m *MockAccountRepository) CreditBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockAccountRepository) DeductBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, bool, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Bool(2), args.Error(3)
}

func (m *MockAccountRepository) DeductBalanceOverdraft(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockAccountRepository) SetActive(ctx context.Context, accountID int64, active bool) error {
	args := m.Called(ctx, accountID, active)
	return args.Error(0)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, txn *models.BalanceTransaction) error {
	args := m.Called(ctx, txn)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByAccount(ctx context.Context, accountID int64, from, to time.Time, limit int) ([]*models.BalanceTransaction, error) {
	args := m.Called(ctx, accountID, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceTransaction), args.Error(1)
}

func (m *MockLedgerRepository) SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockDrawRepository is a mock implementation of DrawRepository
type MockDrawRepository struct {
	mock.Mock
}

func (m *MockDrawRepository) Create(ctx context.Context, draw *models.Draw) error {
	args := m.Called(ctx, draw)
	return args.Error(0)
}

func (m *MockDrawRepository) GetByID(ctx context.Context, id int64) (*models.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetByIDForShare(ctx context.Context, id int64) (*models.Draw, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetByDateSlot(ctx context.Context, date time.Time, slot models.TimeSlot) (*models.Draw, error) {
	args := m.Called(ctx, date, slot)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draw), args.Error(1)
}

func (m *MockDrawRepository) ListByDate(ctx context.Context, date time.Time) ([]*models.Draw, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Draw), args.Error(1)
}

func (m *MockDrawRepository) GetOpenDraw(ctx context.Context) (*models.Draw, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Draw), args.Error(1)
}

func (m *MockDrawRepository) TransitionStatus(ctx context.Context, drawID int64, from, to models.DrawStatus) (bool, error) {
	args := m.Called(ctx, drawID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockDrawRepository) SettleResult(ctx context.Context, drawID int64, result string) (bool, error) {
	args := m.Called(ctx, drawID, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockDrawRepository) OpenDue(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockDrawRepository) CloseDue(ctx context.Context, now time.Time) ([]int64, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockBetLimitRepository is a mock implementation of BetLimitRepository
type MockBetLimitRepository struct {
	mock.Mock
}

func (m *MockBetLimitRepository) Create(ctx context.Context, limit *models.BetLimit) error {
	args := m.Called(ctx, limit)
	return args.Error(0)
}

func (m *MockBetLimitRepository) ListByDraw(ctx context.Context, drawID int64) ([]*models.BetLimit, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BetLimit), args.Error(1)
}

func (m *MockBetLimitRepository) TryReserve(ctx context.Context, drawID int64, betType models.BetType, combination string, amount decimal.Decimal) (bool, decimal.Decimal, error) {
	args := m.Called(ctx, drawID, betType, combination, amount)
	return args.Bool(0), args.Get(1).(decimal.Decimal), args.Error(2)
}

func (m *MockBetLimitRepository) Release(ctx context.Context, drawID int64, betType models.BetType, combination string, amount decimal.Decimal) error {
	args := m.Called(ctx, drawID, betType, combination, amount)
	return args.Error(0)
}

func (m *MockBetLimitRepository) SetMaxAmount(ctx context.Context, drawID int64, betType models.BetType, combination string, maxAmount decimal.Decimal) error {
	args := m.Called(ctx, drawID, betType, combination, maxAmount)
	return args.Error(0)
}

func (m *MockBetLimitRepository) Exists(ctx context.Context, drawID int64, betType models.BetType, combination string) (bool, error) {
	args := m.Called(ctx, drawID, betType, combination)
	return args.Bool(0), args.Error(1)
}

// MockTicketRepository is a mock implementation of TicketRepository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateWithBets(ctx context.Context, ticket *models.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) GetByNumber(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListByDraw(ctx context.Context, drawID int64) ([]*models.Ticket, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ticket), args.Error(1)
}

func (m *MockTicketRepository) ListBetsByDraw(ctx context.Context, drawID int64) ([]*models.Bet, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *MockTicketRepository) SetBetOutcome(ctx context.Context, betID int64, isWinner bool, winAmount decimal.Decimal) error {
	args := m.Called(ctx, betID, isWinner, winAmount)
	return args.Error(0)
}

func (m *MockTicketRepository) TransitionStatus(ctx context.Context, ticketID int64, from, to models.TicketStatus) (bool, error) {
	args := m.Called(ctx, ticketID, from, to)
	return args.Bool(0), args.Error(1)
}

// MockClaimRepository is a mock implementation of ClaimRepository
type MockClaimRepository struct {
	mock.Mock
}

func (m *MockClaimRepository) Create(ctx context.Context, claim *models.ClaimRequest) error {
	args := m.Called(ctx, claim)
	return args.Error(0)
}

func (m *MockClaimRepository) GetByID(ctx context.Context, id int64) (*models.ClaimRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClaimRequest), args.Error(1)
}

func (m *MockClaimRepository) GetByTicketID(ctx context.Context, ticketID int64) (*models.ClaimRequest, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClaimRequest), args.Error(1)
}

func (m *MockClaimRepository) ListPending(ctx context.Context) ([]*models.ClaimRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClaimRequest), args.Error(1)
}

func (m *MockClaimRepository) Resolve(ctx context.Context, claimID int64, status models.ClaimStatus, approvedPrize *decimal.Decimal, resolvedBy, notes string) (bool, error) {
	args := m.Called(ctx, claimID, status, approvedPrize, resolvedBy, notes)
	return args.Bool(0), args.Error(1)
}

// MockAuditRepository is a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Record(ctx context.Context, entry *models.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByTicket(ctx context.Context, ticketID int64) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, ticketID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}

func (m *MockAuditRepository) ListByDraw(ctx context.Context, drawID int64) ([]*models.AuditEntry, error) {
	args := m.Called(ctx, drawID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	AccountRepo  *MockAccountRepository
	LedgerRepo   *MockLedgerRepository
	DrawRepo     *MockDrawRepository
	BetLimitRepo *MockBetLimitRepository
	TicketRepo   *MockTicketRepository
	ClaimRepo    *MockClaimRepository
	AuditRepo    *MockAuditRepository
	Publisher    *MockEventPublisher
}

// NewMockUnitOfWork creates a mock unit of work with fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		AccountRepo:  new(MockAccountRepository),
		LedgerRepo:   new(MockLedgerRepository),
		DrawRepo:     new(MockDrawRepository),
		BetLimitRepo: new(MockBetLimitRepository),
		TicketRepo:   new(MockTicketRepository),
		ClaimRepo:    new(MockClaimRepository),
		AuditRepo:    new(MockAuditRepository),
		Publisher:    new(MockEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository   { return m.AccountRepo }
func (m *MockUnitOfWork) LedgerRepository() LedgerRepository     { return m.LedgerRepo }
func (m *MockUnitOfWork) DrawRepository() DrawRepository         { return m.DrawRepo }
func (m *MockUnitOfWork) BetLimitRepository() BetLimitRepository { return m.BetLimitRepo }
func (m *MockUnitOfWork) TicketRepository() TicketRepository     { return m.TicketRepo }
func (m *MockUnitOfWork) ClaimRepository() ClaimRepository       { return m.ClaimRepo }
func (m *MockUnitOfWork) AuditRepository() AuditRepository       { return m.AuditRepo }
func (m *MockUnitOfWork) EventBus() EventPublisher               { return m.Publisher }

// MockUnitOfWorkFactory is a mock factory returning a fixed unit of work
type MockUnitOfWorkFactory struct {
	UOW *MockUnitOfWork
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	return f.UOW
}
