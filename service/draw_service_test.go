package service

import (
	"context"
	"testing"
	"time"

	"lotto/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDrawService_ScheduleDay_CreatesThreeSlots(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	var nextID int64
	mockUoW.DrawRepo.On("Create", ctx, mock.AnythingOfType("*models.Draw")).
		Return(nil).
		Run(func(args mock.Arguments) {
			nextID++
			args.Get(1).(*models.Draw).ID = nextID
		}).
		Times(3)

	// A type-wide limit row per bet type per draw
	mockUoW.BetLimitRepo.On("Create", ctx, mock.MatchedBy(func(l *models.BetLimit) bool {
		return l.Combination == "" && l.MaxAmount.Equal(decimal.NewFromInt(50000))
	})).Return(nil).Times(6)

	mockUoW.AuditRepo.On("Record", ctx, mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.Action == models.AuditActionDrawCreated && e.PerformedBy == "scheduler"
	})).Return(nil).Times(3)

	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	draws, err := service.ScheduleDay(ctx, date)

	require.NoError(t, err)
	require.Len(t, draws, 3)
	assert.Equal(t, models.TimeSlotTwoPM, draws[0].TimeSlot)
	assert.Equal(t, models.TimeSlotFivePM, draws[1].TimeSlot)
	assert.Equal(t, models.TimeSlotNinePM, draws[2].TimeSlot)
	for _, draw := range draws {
		assert.Equal(t, models.DrawStatusScheduled, draw.Status)
		assert.True(t, draw.OpensAt.Before(draw.ClosesAt))
	}

	mockUoW.AssertExpectations(t)
	mockUoW.DrawRepo.AssertExpectations(t)
	mockUoW.BetLimitRepo.AssertExpectations(t)
	mockUoW.AuditRepo.AssertExpectations(t)
}

func TestDrawService_ScheduleDay_AlreadyScheduled(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	// Every slot already exists; the existing rows are returned untouched
	mockUoW.DrawRepo.On("Create", ctx, mock.AnythingOfType("*models.Draw")).
		Return(ErrAlreadyExists).
		Times(3)

	var fetchID int64
	mockUoW.DrawRepo.On("GetByDateSlot", ctx, mock.AnythingOfType("time.Time"), mock.AnythingOfType("models.TimeSlot")).
		Return(&models.Draw{Status: models.DrawStatusOpen}, nil).
		Run(func(args mock.Arguments) { fetchID++ }).
		Times(3)

	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	draws, err := service.ScheduleDay(ctx, date)

	require.NoError(t, err)
	require.Len(t, draws, 3)
	assert.Equal(t, int64(3), fetchID)

	mockUoW.BetLimitRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	mockUoW.AuditRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestDrawService_AdvanceSchedule(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	now := time.Now()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.DrawRepo.On("OpenDue", ctx, now).Return([]int64{7}, nil)
	mockUoW.DrawRepo.On("CloseDue", ctx, now).Return([]int64{5, 6}, nil)

	opened, closed, err := service.AdvanceSchedule(ctx, now)

	assert.NoError(t, err)
	assert.Equal(t, []int64{7}, opened)
	assert.Equal(t, []int64{5, 6}, closed)
	mockUoW.AssertExpectations(t)
}

func TestDrawService_InputResult_SettlesWinners(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.DrawRepo.On("GetByID", ctx, int64(5)).Return(&models.Draw{ID: 5, Status: models.DrawStatusClosed}, nil)
	mockUoW.DrawRepo.On("SettleResult", ctx, int64(5), "123").Return(true, nil)

	// Three bets in the draw: a straight exact hit, a rambolito permutation
	// hit on the same ticket, and a miss on another ticket.
	bets := []*models.Bet{
		{ID: 100, TicketID: 42, BetType: models.BetTypeStraight, Combination: "123", Amount: decimal.NewFromInt(10)},
		{ID: 101, TicketID: 42, BetType: models.BetTypeRambolito, Combination: "321", Amount: decimal.NewFromInt(10)},
		{ID: 102, TicketID: 43, BetType: models.BetTypeStraight, Combination: "999", Amount: decimal.NewFromInt(10)},
	}
	mockUoW.TicketRepo.On("ListBetsByDraw", ctx, int64(5)).Return(bets, nil)

	mockUoW.TicketRepo.On("SetBetOutcome", ctx, int64(100), true, matchDecimal("4500")).Return(nil)
	mockUoW.TicketRepo.On("SetBetOutcome", ctx, int64(101), true, matchDecimal("750")).Return(nil)

	mockUoW.TicketRepo.On("TransitionStatus", ctx, int64(42), models.TicketStatusActive, models.TicketStatusWon).
		Return(true, nil)
	mockUoW.TicketRepo.On("GetByID", ctx, int64(42)).Return(&models.Ticket{
		ID: 42, TicketNumber: "12345678901234567", AccountID: 1,
	}, nil)

	mockUoW.AuditRepo.On("Record", ctx, mock.MatchedBy(func(e *models.AuditEntry) bool {
		return e.Action == models.AuditActionDrawSettled && e.DrawID != nil && *e.DrawID == 5
	})).Return(nil)
	mockUoW.Publisher.On("Publish", mock.Anything).Return()

	summary, err := service.InputResult(ctx, 5, "123", "admin1")

	require.NoError(t, err)
	assert.Equal(t, "123", summary.Result)
	assert.Equal(t, 3, summary.BetsEvaluated)
	require.Len(t, summary.Winners, 1)
	assert.Equal(t, int64(42), summary.Winners[0].TicketID)
	assert.True(t, summary.Winners[0].PrizeAmount.Equal(decimal.NewFromInt(5250)))
	assert.True(t, summary.TotalPrize.Equal(decimal.NewFromInt(5250)))
	assert.Equal(t, 1, summary.Breakdown[models.BetTypeStraight].Count)
	assert.Equal(t, 1, summary.Breakdown[models.BetTypeRambolito].Count)

	mockUoW.AssertExpectations(t)
	mockUoW.TicketRepo.AssertExpectations(t)
}

func TestDrawService_InputResult_DrawStillOpen(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.DrawRepo.On("GetByID", ctx, int64(5)).Return(&models.Draw{ID: 5, Status: models.DrawStatusOpen}, nil)
	mockUoW.DrawRepo.On("SettleResult", ctx, int64(5), "123").Return(false, nil)

	summary, err := service.InputResult(ctx, 5, "123", "admin1")

	assert.ErrorIs(t, err, ErrDrawNotClosed)
	assert.Nil(t, summary)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestDrawService_InputResult_AlreadySettled(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	result := "456"
	mockUoW.DrawRepo.On("GetByID", ctx, int64(5)).Return(&models.Draw{
		ID: 5, Status: models.DrawStatusSettled, Result: &result,
	}, nil)
	mockUoW.DrawRepo.On("SettleResult", ctx, int64(5), "123").Return(false, nil)

	summary, err := service.InputResult(ctx, 5, "123", "admin1")

	assert.ErrorIs(t, err, ErrResultAlreadySet)
	assert.Nil(t, summary)
	mockUoW.TicketRepo.AssertNotCalled(t, "ListBetsByDraw", mock.Anything, mock.Anything)
}

func TestDrawService_InputResult_InvalidResult(t *testing.T) {
	ctx := context.Background()
	service := NewDrawService(&MockUnitOfWorkFactory{})

	for _, bad := range []string{"", "12", "1234", "12a"} {
		summary, err := service.InputResult(ctx, 5, bad, "admin1")
		assert.Error(t, err)
		assert.Nil(t, summary)
	}
}

func TestDrawService_SetBetLimit_Validation(t *testing.T) {
	ctx := context.Background()
	service := NewDrawService(&MockUnitOfWorkFactory{})

	err := service.SetBetLimit(ctx, 5, "parlay", "", decimal.NewFromInt(100))
	assert.Error(t, err)

	err = service.SetBetLimit(ctx, 5, models.BetTypeStraight, "12", decimal.NewFromInt(100))
	assert.Error(t, err)

	err = service.SetBetLimit(ctx, 5, models.BetTypeStraight, "123", decimal.NewFromInt(-1))
	assert.Error(t, err)
}

func TestDrawService_SetBetLimit_FrozenAfterSettle(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.DrawRepo.On("GetByID", ctx, int64(5)).Return(&models.Draw{ID: 5, Status: models.DrawStatusSettled}, nil)

	err := service.SetBetLimit(ctx, 5, models.BetTypeStraight, "123", decimal.NewFromInt(100))

	assert.ErrorIs(t, err, ErrResultAlreadySet)
	mockUoW.BetLimitRepo.AssertNotCalled(t, "SetMaxAmount", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDrawService_SetBetLimit_Upserts(t *testing.T) {
	ctx := context.Background()

	mockUoW := NewMockUnitOfWork()
	factory := &MockUnitOfWorkFactory{UOW: mockUoW}
	service := NewDrawService(factory)

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUoW.DrawRepo.On("GetByID", ctx, int64(5)).Return(&models.Draw{ID: 5, Status: models.DrawStatusOpen}, nil)
	mockUoW.BetLimitRepo.On("SetMaxAmount", ctx, int64(5), models.BetTypeStraight, "888", matchDecimal("500")).Return(nil)

	err := service.SetBetLimit(ctx, 5, models.BetTypeStraight, "888", decimal.NewFromInt(500))

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockUoW.BetLimitRepo.AssertExpectations(t)
}
