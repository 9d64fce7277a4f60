package service

import (
	"context"
	"testing"

	"lotto/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// matchDecimal matches a decimal argument by value
func matchDecimal(v string) interface{} {
	want := decimal.RequireFromString(v)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

func activeAgent(id int64, balance string) *models.Account {
	return &models.Account{
		ID:             id,
		Username:       "agent1",
		Role:           models.RoleAgent,
		CurrentBalance: decimal.RequireFromString(balance),
		Active:         true,
	}
}

func openDraw(id int64) *models.Draw {
	return &models.Draw{ID: id, Status: models.DrawStatusOpen}
}

func TestBettingService_PlaceBet_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.AccountRepo.On("GetByID", ctx, int64(1)).Return(activeAgent(1, "1000"), nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(openDraw(5), nil)

	// Type-wide admission; no per-combination cap set for 123
	mockUoW.BetLimitRepo.On("TryReserve", ctx, int64(5), models.BetTypeStraight, "", matchDecimal("10")).
		Return(true, decimal.NewFromInt(10), nil)
	mockUoW.BetLimitRepo.On("Exists", ctx, int64(5), models.BetTypeStraight, "123").Return(false, nil)

	mockUoW.AccountRepo.On("DeductBalance", ctx, int64(1), matchDecimal("10")).
		Return(decimal.NewFromInt(1000), decimal.NewFromInt(990), true, nil)

	mockUoW.TicketRepo.On("CreateWithBets", ctx, mock.MatchedBy(func(tk *models.Ticket) bool {
		return tk.AccountID == 1 &&
			tk.DrawID == 5 &&
			tk.Status == models.TicketStatusActive &&
			tk.TotalAmount.Equal(decimal.NewFromInt(10)) &&
			len(tk.Bets) == 1 &&
			tk.Bets[0].Sequence == "A" &&
			models.ValidTicketNumber(tk.TicketNumber)
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Ticket).ID = 42
	})

	mockUoW.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.BalanceTransaction) bool {
		return txn.Kind == models.TransactionKindSale &&
			txn.Amount.Equal(decimal.NewFromInt(-10)) &&
			txn.BalanceBefore.Equal(decimal.NewFromInt(1000)) &&
			txn.BalanceAfter.Equal(decimal.NewFromInt(990))
	})).Return(nil)

	// 5% commission on the 10 stake
	mockUoW.AccountRepo.On("CreditBalance", ctx, int64(1), matchDecimal("0.50")).
		Return(decimal.NewFromInt(990), decimal.RequireFromString("990.50"), nil)
	mockUoW.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.BalanceTransaction) bool {
		return txn.Kind == models.TransactionKindCommission &&
			txn.Amount.Equal(decimal.RequireFromString("0.50"))
	})).Return(nil)

	mockUoW.AuditRepo.On("Record", ctx, mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.Action == models.AuditActionTicketSold && e.TicketID != nil && *e.TicketID == 42
	})).Return(nil)

	mockUoW.Publisher.On("Publish", mock.Anything).Return()

	result, err := service.PlaceBet(ctx, 1, 5, []BetLine{
		{BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(10)},
	})

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int64(42), result.Ticket.ID)
	assert.True(t, result.Commission.Equal(decimal.RequireFromString("0.50")))
	assert.True(t, result.NewBalance.Equal(decimal.RequireFromString("990.50")))

	mockUoW.AssertExpectations(t)
	mockUoW.AccountRepo.AssertExpectations(t)
	mockUoW.BetLimitRepo.AssertExpectations(t)
	mockUoW.TicketRepo.AssertExpectations(t)
	mockUoW.LedgerRepo.AssertExpectations(t)
	mockUoW.AuditRepo.AssertExpectations(t)
}

func TestBettingService_PlaceBet_LimitExceeded(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.AccountRepo.On("GetByID", ctx, int64(1)).Return(activeAgent(1, "1000"), nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(openDraw(5), nil)

	// Type-wide cap refuses the reservation
	mockUoW.BetLimitRepo.On("TryReserve", ctx, int64(5), models.BetTypeStraight, "", matchDecimal("100")).
		Return(false, decimal.Zero, nil)

	result, err := service.PlaceBet(ctx, 1, 5, []BetLine{
		{BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(100)},
	})

	assert.ErrorIs(t, err, ErrBetLimitExceeded)
	assert.Nil(t, result)

	mockUoW.AccountRepo.AssertNotCalled(t, "DeductBalance", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.TicketRepo.AssertNotCalled(t, "CreateWithBets", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBettingService_PlaceBet_PerCombinationLimitExceeded(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.AccountRepo.On("GetByID", ctx, int64(1)).Return(activeAgent(1, "1000"), nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(openDraw(5), nil)

	// Type-wide cap admits, but a cap set on the hot number refuses
	mockUoW.BetLimitRepo.On("TryReserve", ctx, int64(5), models.BetTypeStraight, "", matchDecimal("50")).
		Return(true, decimal.NewFromInt(50), nil)
	mockUoW.BetLimitRepo.On("Exists", ctx, int64(5), models.BetTypeStraight, "888").Return(true, nil)
	mockUoW.BetLimitRepo.On("TryReserve", ctx, int64(5), models.BetTypeStraight, "888", matchDecimal("50")).
		Return(false, decimal.Zero, nil)

	result, err := service.PlaceBet(ctx, 1, 5, []BetLine{
		{BetType: models.BetTypeStraight, Combination: "888", Amount: decimal.NewFromInt(50)},
	})

	assert.ErrorIs(t, err, ErrBetLimitExceeded)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBettingService_PlaceBet_DrawNotOpen(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.AccountRepo.On("GetByID", ctx, int64(1)).Return(activeAgent(1, "1000"), nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(&models.Draw{ID: 5, Status: models.DrawStatusClosed}, nil)

	result, err := service.PlaceBet(ctx, 1, 5, []BetLine{
		{BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(10)},
	})

	assert.ErrorIs(t, err, ErrDrawNotOpen)
	assert.Nil(t, result)
	mockUoW.BetLimitRepo.AssertNotCalled(t, "TryReserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBettingService_PlaceBet_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.AccountRepo.On("GetByID", ctx, int64(1)).Return(activeAgent(1, "5"), nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(openDraw(5), nil)

	mockUoW.BetLimitRepo.On("TryReserve", ctx, int64(5), models.BetTypeStraight, "", matchDecimal("10")).
		Return(true, decimal.NewFromInt(10), nil)
	mockUoW.BetLimitRepo.On("Exists", ctx, int64(5), models.BetTypeStraight, "123").Return(false, nil)

	// Balance guard refuses the deduction
	mockUoW.AccountRepo.On("DeductBalance", ctx, int64(1), matchDecimal("10")).
		Return(decimal.Zero, decimal.Zero, false, nil)

	result, err := service.PlaceBet(ctx, 1, 5, []BetLine{
		{BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(10)},
	})

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Nil(t, result)
	mockUoW.TicketRepo.AssertNotCalled(t, "CreateWithBets", mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBettingService_PlaceBet_InvalidLines(t *testing.T) {
	ctx := context.Background()
	service := NewBettingService(&MockUnitOfWorkFactory{})

	tests := []struct {
		name  string
		lines []BetLine
	}{
		{"no lines", nil},
		{"bad bet type", []BetLine{{BetType: "parlay", Combination: "123", Amount: decimal.NewFromInt(10)}}},
		{"short combination", []BetLine{{BetType: models.BetTypeStraight, Combination: "12", Amount: decimal.NewFromInt(10)}}},
		{"non-numeric combination", []BetLine{{BetType: models.BetTypeStraight, Combination: "12a", Amount: decimal.NewFromInt(10)}}},
		{"rambolito triple", []BetLine{{BetType: models.BetTypeRambolito, Combination: "777", Amount: decimal.NewFromInt(10)}}},
		{"amount below minimum", []BetLine{{BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.RequireFromString("0.50")}}},
		{"amount above maximum", []BetLine{{BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(10001)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := service.PlaceBet(ctx, 1, 5, tt.lines)
			assert.ErrorIs(t, err, ErrInvalidBet)
			assert.Nil(t, result)
		})
	}
}

func TestBettingService_VoidTicket_Success(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	ticketNumber := "12345678901234567"
	ticket := &models.Ticket{
		ID:           42,
		TicketNumber: ticketNumber,
		AccountID:    1,
		DrawID:       5,
		Status:       models.TicketStatusActive,
		TotalAmount:  decimal.NewFromInt(10),
		Bets: []*models.Bet{
			{ID: 100, BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(10)},
		},
	}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.TicketRepo.On("GetByNumber", ctx, ticketNumber).Return(ticket, nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(openDraw(5), nil)
	mockUoW.TicketRepo.On("TransitionStatus", ctx, int64(42), models.TicketStatusActive, models.TicketStatusVoided).
		Return(true, nil)

	mockUoW.BetLimitRepo.On("Release", ctx, int64(5), models.BetTypeStraight, "", matchDecimal("10")).Return(nil)
	mockUoW.BetLimitRepo.On("Exists", ctx, int64(5), models.BetTypeStraight, "123").Return(false, nil)

	mockUoW.AccountRepo.On("CreditBalance", ctx, int64(1), matchDecimal("10")).
		Return(decimal.NewFromInt(990), decimal.NewFromInt(1000), nil)
	mockUoW.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.BalanceTransaction) bool {
		return txn.Kind == models.TransactionKindRefund &&
			txn.Amount.Equal(decimal.NewFromInt(10))
	})).Return(nil)

	// Sale commission comes back out with the void
	mockUoW.AccountRepo.On("DeductBalanceOverdraft", ctx, int64(1), matchDecimal("0.50")).
		Return(decimal.NewFromInt(1000), decimal.RequireFromString("999.50"), nil)
	mockUoW.LedgerRepo.On("Record", ctx, mock.MatchedBy(func(txn *models.BalanceTransaction) bool {
		return txn.Kind == models.TransactionKindCommission &&
			txn.Amount.Equal(decimal.RequireFromString("-0.50"))
	})).Return(nil)

	mockUoW.AuditRepo.On("Record", ctx, mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.Action == models.AuditActionTicketVoided
	})).Return(nil)
	mockUoW.Publisher.On("Publish", mock.Anything).Return()

	voided, err := service.VoidTicket(ctx, ticketNumber, "agent1")

	assert.NoError(t, err)
	assert.Equal(t, models.TicketStatusVoided, voided.Status)

	mockUoW.AssertExpectations(t)
	mockUoW.BetLimitRepo.AssertExpectations(t)
	mockUoW.AccountRepo.AssertExpectations(t)
	mockUoW.LedgerRepo.AssertExpectations(t)
}

// A sale followed by a void of the same ticket must leave the agent's
// ledger where it started: stake out, commission in, stake back,
// commission back out.
func TestBettingService_SellThenVoid_MoneyNeutral(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	net := decimal.Zero
	mockUoW.LedgerRepo.On("Record", ctx, mock.AnythingOfType("*models.BalanceTransaction")).
		Return(nil).Run(func(args mock.Arguments) {
			net = net.Add(args.Get(1).(*models.BalanceTransaction).Amount)
		})

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.AccountRepo.On("GetByID", ctx, int64(1)).Return(activeAgent(1, "1000"), nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(openDraw(5), nil)
	mockUoW.BetLimitRepo.On("TryReserve", ctx, int64(5), models.BetTypeStraight, "", matchDecimal("100")).
		Return(true, decimal.NewFromInt(100), nil)
	mockUoW.BetLimitRepo.On("Exists", ctx, int64(5), models.BetTypeStraight, "123").Return(false, nil)
	mockUoW.AccountRepo.On("DeductBalance", ctx, int64(1), matchDecimal("100")).
		Return(decimal.NewFromInt(1000), decimal.NewFromInt(900), true, nil)

	var soldNumber string
	mockUoW.TicketRepo.On("CreateWithBets", ctx, mock.AnythingOfType("*models.Ticket")).
		Return(nil).Run(func(args mock.Arguments) {
			tk := args.Get(1).(*models.Ticket)
			tk.ID = 42
			soldNumber = tk.TicketNumber
		})
	mockUoW.AccountRepo.On("CreditBalance", ctx, int64(1), matchDecimal("5")).
		Return(decimal.NewFromInt(900), decimal.NewFromInt(905), nil)
	mockUoW.AuditRepo.On("Record", ctx, mock.AnythingOfType("*models.AuditEntry")).Return(nil)
	mockUoW.Publisher.On("Publish", mock.Anything).Return()

	sale, err := service.PlaceBet(ctx, 1, 5, []BetLine{
		{BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(100)},
	})
	assert.NoError(t, err)

	mockUoW.TicketRepo.On("GetByNumber", ctx, soldNumber).Return(sale.Ticket, nil)
	mockUoW.TicketRepo.On("TransitionStatus", ctx, int64(42), models.TicketStatusActive, models.TicketStatusVoided).
		Return(true, nil)
	mockUoW.BetLimitRepo.On("Release", ctx, int64(5), models.BetTypeStraight, "", matchDecimal("100")).Return(nil)
	mockUoW.AccountRepo.On("CreditBalance", ctx, int64(1), matchDecimal("100")).
		Return(decimal.NewFromInt(905), decimal.NewFromInt(1005), nil)
	mockUoW.AccountRepo.On("DeductBalanceOverdraft", ctx, int64(1), matchDecimal("5")).
		Return(decimal.NewFromInt(1005), decimal.NewFromInt(1000), nil)

	_, err = service.VoidTicket(ctx, soldNumber, "agent1")
	assert.NoError(t, err)

	assert.True(t, net.IsZero(), "sell+void moved the ledger by %s", net)
}

func TestBettingService_VoidTicket_DrawClosed(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewBettingService(factory)

	ticketNumber := "12345678901234567"
	ticket := &models.Ticket{ID: 42, TicketNumber: ticketNumber, AccountID: 1, DrawID: 5, Status: models.TicketStatusActive}

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.TicketRepo.On("GetByNumber", ctx, ticketNumber).Return(ticket, nil)
	mockUoW.DrawRepo.On("GetByIDForShare", ctx, int64(5)).Return(&models.Draw{ID: 5, Status: models.DrawStatusClosed}, nil)

	voided, err := service.VoidTicket(ctx, ticketNumber, "agent1")

	assert.ErrorIs(t, err, ErrDrawNotOpen)
	assert.Nil(t, voided)
	mockUoW.TicketRepo.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AccountRepo.AssertNotCalled(t, "CreditBalance", mock.Anything, mock.Anything, mock.Anything)
}

func TestBettingService_GetTicket_InvalidNumber(t *testing.T) {
	ctx := context.Background()
	service := NewBettingService(&MockUnitOfWorkFactory{})

	ticket, err := service.GetTicket(ctx, "not-a-number")

	assert.ErrorIs(t, err, ErrInvalidTicketNumber)
	assert.Nil(t, ticket)
}
