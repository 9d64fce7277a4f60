package service

import (
	"context"
	"time"

	"lotto/events"
	"lotto/models"

	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// Create creates a new account
	Create(ctx context.Context, account *models.Account) error

	// GetByID retrieves an account by its ID, nil if not found
	GetByID(ctx context.Context, id int64) (*models.Account, error)

	// GetByUsername retrieves an account by username, nil if not found
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// ListByRole returns all active accounts holding the given role
	ListByRole(ctx context.Context, role models.Role) ([]*models.Account, error)

	// CreditBalance adds to an account's balance atomically, returning
	// the balance before and after
	CreditBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (before, after decimal.Decimal, err error)

	// DeductBalance subtracts from an account's balance atomically,
	// refusing to go negative. applied is false when the guard failed.
	DeductBalance(ctx context.Context, accountID int64, amount decimal.Decimal) (before, after decimal.Decimal, applied bool, err error)

	// DeductBalanceOverdraft subtracts without the non-negative guard
	DeductBalanceOverdraft(ctx context.Context, accountID int64, amount decimal.Decimal) (before, after decimal.Decimal, err error)

	// SetActive toggles whether an account may transact
	SetActive(ctx context.Context, accountID int64, active bool) error
}

// LedgerRepository defines the interface for the balance transaction ledger
type LedgerRepository interface {
	// Record appends an immutable ledger entry
	Record(ctx context.Context, txn *models.BalanceTransaction) error

	// ListByAccount returns ledger entries within [from, to), newest first
	ListByAccount(ctx context.Context, accountID int64, from, to time.Time, limit int) ([]*models.BalanceTransaction, error)

	// SumByAccount returns the sum of an account's ledger amounts
	SumByAccount(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

// DrawRepository defines the interface for draw data access
type DrawRepository interface {
	// Create inserts a scheduled draw; ErrAlreadyExists on a date/slot collision
	Create(ctx context.Context, draw *models.Draw) error

	// GetByID retrieves a draw by its ID, nil if not found
	GetByID(ctx context.Context, id int64) (*models.Draw, error)

	// GetByIDForShare retrieves a draw by its ID under a share lock held
	// for the rest of the transaction, nil if not found
	GetByIDForShare(ctx context.Context, id int64) (*models.Draw, error)

	// GetByDateSlot retrieves the draw for a date and slot, nil if not found
	GetByDateSlot(ctx context.Context, date time.Time, slot models.TimeSlot) (*models.Draw, error)

	// ListByDate returns all draws on a date in slot order
	ListByDate(ctx context.Context, date time.Time) ([]*models.Draw, error)

	// GetOpenDraw returns the currently open draw, nil when none
	GetOpenDraw(ctx context.Context) (*models.Draw, error)

	// TransitionStatus conditionally advances a draw's status
	TransitionStatus(ctx context.Context, drawID int64, from, to models.DrawStatus) (bool, error)

	// SettleResult records the result and marks the draw settled, only
	// if the draw is closed with no result yet
	SettleResult(ctx context.Context, drawID int64, result string) (bool, error)

	// OpenDue opens scheduled draws whose opening time has passed
	OpenDue(ctx context.Context, now time.Time) ([]int64, error)

	// CloseDue closes open draws whose cutoff has passed
	CloseDue(ctx context.Context, now time.Time) ([]int64, error)
}

// BetLimitRepository defines the interface for exposure limit data access
type BetLimitRepository interface {
	// Create inserts a limit row; ErrAlreadyExists on collision
	Create(ctx context.Context, limit *models.BetLimit) error

	// ListByDraw returns all limit rows for a draw
	ListByDraw(ctx context.Context, drawID int64) ([]*models.BetLimit, error)

	// TryReserve atomically admits amount against a limit. admitted is
	// false when the cap would be exceeded or the row is absent.
	TryReserve(ctx context.Context, drawID int64, betType models.BetType, combination string, amount decimal.Decimal) (admitted bool, newTotal decimal.Decimal, err error)

	// Release subtracts amount from a limit's total, flooring at zero
	Release(ctx context.Context, drawID int64, betType models.BetType, combination string, amount decimal.Decimal) error

	// SetMaxAmount upserts a limit's cap
	SetMaxAmount(ctx context.Context, drawID int64, betType models.BetType, combination string, maxAmount decimal.Decimal) error

	// Exists reports whether a specific limit row is present
	Exists(ctx context.Context, drawID int64, betType models.BetType, combination string) (bool, error)
}

// TicketRepository defines the interface for ticket data access
type TicketRepository interface {
	// CreateWithBets inserts a ticket and its bet lines;
	// ErrAlreadyExists on a ticket number collision
	CreateWithBets(ctx context.Context, ticket *models.Ticket) error

	// GetByID retrieves a ticket with its bets, nil if not found
	GetByID(ctx context.Context, id int64) (*models.Ticket, error)

	// GetByNumber retrieves a ticket by its printed number, nil if not found
	GetByNumber(ctx context.Context, ticketNumber string) (*models.Ticket, error)

	// ListByDraw returns all tickets sold against a draw
	ListByDraw(ctx context.Context, drawID int64) ([]*models.Ticket, error)

	// ListBetsByDraw returns every bet line on active tickets of a draw
	ListBetsByDraw(ctx context.Context, drawID int64) ([]*models.Bet, error)

	// SetBetOutcome records a bet line's evaluation result
	SetBetOutcome(ctx context.Context, betID int64, isWinner bool, winAmount decimal.Decimal) error

	// TransitionStatus conditionally advances a ticket's status
	TransitionStatus(ctx context.Context, ticketID int64, from, to models.TicketStatus) (bool, error)
}

// ClaimRepository defines the interface for claim data access
type ClaimRepository interface {
	// Create inserts a pending claim; ErrAlreadyExists when the ticket
	// already has one
	Create(ctx context.Context, claim *models.ClaimRequest) error

	// GetByID retrieves a claim by its ID, nil if not found
	GetByID(ctx context.Context, id int64) (*models.ClaimRequest, error)

	// GetByTicketID retrieves the claim for a ticket, nil if not found
	GetByTicketID(ctx context.Context, ticketID int64) (*models.ClaimRequest, error)

	// ListPending returns all unresolved claims, oldest first
	ListPending(ctx context.Context) ([]*models.ClaimRequest, error)

	// Resolve conditionally moves a pending claim to a terminal status
	Resolve(ctx context.Context, claimID int64, status models.ClaimStatus, approvedPrize *decimal.Decimal, resolvedBy, notes string) (bool, error)
}

// AuditRepository defines the interface for the append-only audit trail
type AuditRepository interface {
	// Record appends an audit entry
	Record(ctx context.Context, entry *models.AuditEntry) error

	// ListByTicket returns all audit entries for a ticket in write order
	ListByTicket(ctx context.Context, ticketID int64) ([]*models.AuditEntry, error)

	// ListByDraw returns all audit entries for a draw in write order
	ListByDraw(ctx context.Context, drawID int64) ([]*models.AuditEntry, error)
}

// AccountService defines the interface for account management
type AccountService interface {
	// CreateAccount registers a new account in the hierarchy
	CreateAccount(ctx context.Context, username, fullName string, role models.Role, parentAccountID *int64) (*models.Account, error)

	// GetAccount retrieves an account by ID
	GetAccount(ctx context.Context, accountID int64) (*models.Account, error)

	// GetAccountByUsername retrieves an account by username
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)

	// SetActive toggles whether an account may transact
	SetActive(ctx context.Context, accountID int64, active bool) error
}

// LedgerService defines the interface for balance operations
type LedgerService interface {
	// Load credits an account and records the ledger entry
	Load(ctx context.Context, accountID int64, amount decimal.Decimal, processedBy, note string) (*models.BalanceTransaction, error)

	// Deduct debits an account, optionally allowing overdraft
	Deduct(ctx context.Context, accountID int64, amount decimal.Decimal, allowOverdraft bool, processedBy, note string) (*models.BalanceTransaction, error)

	// GetBalance returns an account's stored balance
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)

	// ListTransactions returns an account's ledger entries within [from, to)
	ListTransactions(ctx context.Context, accountID int64, from, to time.Time, limit int) ([]*models.BalanceTransaction, error)

	// Reconcile compares an account's ledger sum against its stored balance
	Reconcile(ctx context.Context, accountID int64) (ledgerSum, stored decimal.Decimal, err error)
}

// BettingService defines the interface for ticket sales
type BettingService interface {
	// PlaceBet sells a ticket with one or more bet lines against the
	// draw, admitting each line against its exposure limits and
	// debiting the selling agent's balance
	PlaceBet(ctx context.Context, agentID, drawID int64, lines []BetLine) (*models.SaleResult, error)

	// VoidTicket cancels an active ticket before its draw closes,
	// releasing reserved exposure and refunding the stake
	VoidTicket(ctx context.Context, ticketNumber string, performedBy string) (*models.Ticket, error)

	// GetTicket retrieves a ticket by its printed number
	GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, error)
}

// BetLine is one requested bet on a ticket sale
type BetLine struct {
	BetType     models.BetType
	Combination string
	Amount      decimal.Decimal
}

// DrawService defines the interface for draw lifecycle operations
type DrawService interface {
	// ScheduleDay creates the three draws for a date with default limits
	ScheduleDay(ctx context.Context, date time.Time) ([]*models.Draw, error)

	// AdvanceSchedule opens and closes draws whose times have passed
	AdvanceSchedule(ctx context.Context, now time.Time) (opened, closed []int64, err error)

	// InputResult records a draw's winning combination, evaluates all
	// bets, and marks winning tickets
	InputResult(ctx context.Context, drawID int64, result string, performedBy string) (*models.SettlementSummary, error)

	// GetDraw retrieves a draw by ID
	GetDraw(ctx context.Context, drawID int64) (*models.Draw, error)

	// ListDraws returns all draws on a date
	ListDraws(ctx context.Context, date time.Time) ([]*models.Draw, error)

	// GetBetLimitStatus returns the limit rows for a draw as a read view
	GetBetLimitStatus(ctx context.Context, drawID int64) ([]*models.BetLimitStatus, error)

	// SetBetLimit upserts a limit cap for a draw
	SetBetLimit(ctx context.Context, drawID int64, betType models.BetType, combination string, maxAmount decimal.Decimal) error
}

// ClaimService defines the interface for the prize claim workflow
type ClaimService interface {
	// RequestClaim opens a pending claim against a winning ticket
	RequestClaim(ctx context.Context, ticketNumber, claimerName, claimerContact string) (*models.ClaimRequest, error)

	// ApproveClaim approves a pending claim and pays out the prize
	ApproveClaim(ctx context.Context, claimID int64, approvedPrize *decimal.Decimal, resolvedBy, notes string) (*models.ClaimRequest, error)

	// RejectClaim rejects a pending claim
	RejectClaim(ctx context.Context, claimID int64, resolvedBy, notes string) (*models.ClaimRequest, error)

	// GetClaim retrieves a claim by ID
	GetClaim(ctx context.Context, claimID int64) (*models.ClaimRequest, error)

	// ListPendingClaims returns all unresolved claims
	ListPendingClaims(ctx context.Context) ([]*models.ClaimRequest, error)

	// GetTicketHistory returns the audit trail for a ticket
	GetTicketHistory(ctx context.Context, ticketNumber string) ([]*models.AuditEntry, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() AccountRepository
	LedgerRepository() LedgerRepository
	DrawRepository() DrawRepository
	BetLimitRepository() BetLimitRepository
	TicketRepository() TicketRepository
	ClaimRepository() ClaimRepository
	AuditRepository() AuditRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
