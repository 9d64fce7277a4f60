package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lotto/config"
	"lotto/events"
	"lotto/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type drawService struct {
	uowFactory UnitOfWorkFactory
}

// NewDrawService creates a new draw service
func NewDrawService(uowFactory UnitOfWorkFactory) DrawService {
	return &drawService{
		uowFactory: uowFactory,
	}
}

// ScheduleDay creates the three draws for a date with default type-wide
// bet limits. Already-scheduled slots are left untouched, so the midnight
// job can run more than once for the same date.
func (s *drawService) ScheduleDay(ctx context.Context, date time.Time) ([]*models.Draw, error) {
	cfg := config.Get()
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	date = date.In(loc)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	var draws []*models.Draw
	for _, slot := range models.AllTimeSlots {
		draw := &models.Draw{
			DrawDate: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			TimeSlot: slot,
			Status:   models.DrawStatusScheduled,
			OpensAt:  slot.OpenTime(date, loc),
			ClosesAt: slot.CutoffTime(date, loc),
		}

		err := uow.DrawRepository().Create(ctx, draw)
		if errors.Is(err, ErrAlreadyExists) {
			existing, err := uow.DrawRepository().GetByDateSlot(ctx, draw.DrawDate, slot)
			if err != nil {
				return nil, err
			}
			draws = append(draws, existing)
			continue
		}
		if err != nil {
			return nil, err
		}

		for _, betType := range []models.BetType{models.BetTypeStraight, models.BetTypeRambolito} {
			limit := &models.BetLimit{
				DrawID:    draw.ID,
				BetType:   betType,
				MaxAmount: cfg.DefaultBetTypeLimit,
			}
			if err := uow.BetLimitRepository().Create(ctx, limit); err != nil && !errors.Is(err, ErrAlreadyExists) {
				return nil, err
			}
		}

		if err := uow.AuditRepository().Record(ctx, &models.AuditEntry{
			DrawID:      &draw.ID,
			Action:      models.AuditActionDrawCreated,
			PerformedBy: "scheduler",
			Notes:       fmt.Sprintf("%s %s", draw.DrawDate.Format("2006-01-02"), slot),
		}); err != nil {
			return nil, err
		}

		draws = append(draws, draw)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return draws, nil
}

// AdvanceSchedule opens and closes draws whose times have passed. Every
// transition is a conditional update, so concurrent ticks are harmless.
func (s *drawService) AdvanceSchedule(ctx context.Context, now time.Time) (opened, closed []int64, err error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	opened, err = uow.DrawRepository().OpenDue(ctx, now)
	if err != nil {
		return nil, nil, err
	}

	closed, err = uow.DrawRepository().CloseDue(ctx, now)
	if err != nil {
		return nil, nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if len(opened) > 0 || len(closed) > 0 {
		log.WithFields(log.Fields{
			"opened": opened,
			"closed": closed,
		}).Info("Advanced draw schedule")
	}

	return opened, closed, nil
}

// InputResult records a draw's winning combination, evaluates every bet
// on active tickets, and marks winning tickets. The settle is guarded by
// a conditional update, so exactly one caller wins: a second submission
// for the same draw returns ErrResultAlreadySet.
func (s *drawService) InputResult(ctx context.Context, drawID int64, result string, performedBy string) (*models.SettlementSummary, error) {
	if !models.ValidCombination(result) {
		return nil, fmt.Errorf("result must be exactly 3 digits, got %q", result)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw == nil {
		return nil, ErrDrawNotFound
	}

	settled, err := uow.DrawRepository().SettleResult(ctx, drawID, result)
	if err != nil {
		return nil, err
	}
	if !settled {
		// The guard refused: either the draw never closed, or another
		// submission already settled it.
		switch draw.Status {
		case models.DrawStatusScheduled, models.DrawStatusOpen:
			return nil, fmt.Errorf("%w: draw %d is %s", ErrDrawNotClosed, drawID, draw.Status)
		default:
			return nil, fmt.Errorf("%w: draw %d", ErrResultAlreadySet, drawID)
		}
	}

	bets, err := uow.TicketRepository().ListBetsByDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}

	summary := &models.SettlementSummary{
		DrawID:        drawID,
		Result:        result,
		BetsEvaluated: len(bets),
		Breakdown:     make(map[models.BetType]models.SettlementBreakdown),
	}

	// Aggregate winning amounts per ticket so each winning ticket is
	// transitioned once with its full prize.
	prizeByTicket := make(map[int64]decimal.Decimal)
	var winningTicketIDs []int64

	for _, bet := range bets {
		won, prize := bet.Evaluate(result)
		if !won {
			continue
		}
		if err := uow.TicketRepository().SetBetOutcome(ctx, bet.ID, true, prize); err != nil {
			return nil, err
		}
		if _, seen := prizeByTicket[bet.TicketID]; !seen {
			winningTicketIDs = append(winningTicketIDs, bet.TicketID)
		}
		prizeByTicket[bet.TicketID] = prizeByTicket[bet.TicketID].Add(prize)

		bd := summary.Breakdown[bet.BetType]
		bd.Count++
		bd.Amount = bd.Amount.Add(prize)
		summary.Breakdown[bet.BetType] = bd
		summary.TotalPrize = summary.TotalPrize.Add(prize)
	}

	for _, ticketID := range winningTicketIDs {
		won, err := uow.TicketRepository().TransitionStatus(ctx, ticketID, models.TicketStatusActive, models.TicketStatusWon)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, fmt.Errorf("ticket %d left active state during settlement", ticketID)
		}

		ticket, err := uow.TicketRepository().GetByID(ctx, ticketID)
		if err != nil {
			return nil, err
		}
		summary.Winners = append(summary.Winners, models.WinnerEntry{
			AccountID:    ticket.AccountID,
			TicketID:     ticketID,
			TicketNumber: ticket.TicketNumber,
			PrizeAmount:  prizeByTicket[ticketID],
		})
	}

	if err := uow.AuditRepository().Record(ctx, &models.AuditEntry{
		DrawID:      &drawID,
		Action:      models.AuditActionDrawSettled,
		PerformedBy: performedBy,
		Notes:       fmt.Sprintf("result %s, %d winner(s), total prize %s", result, len(summary.Winners), summary.TotalPrize),
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.WinnersComputedEvent{
		DrawID:  drawID,
		Result:  result,
		Winners: summary.Winners,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"drawID":     drawID,
		"result":     result,
		"winners":    len(summary.Winners),
		"totalPrize": summary.TotalPrize,
	}).Info("Draw settled")

	return summary, nil
}

// GetDraw retrieves a draw by ID
func (s *drawService) GetDraw(ctx context.Context, drawID int64) (*models.Draw, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw == nil {
		return nil, ErrDrawNotFound
	}

	return draw, nil
}

// ListDraws returns all draws on a date
func (s *drawService) ListDraws(ctx context.Context, date time.Time) ([]*models.Draw, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.DrawRepository().ListByDate(ctx, date)
}

// GetBetLimitStatus returns the limit rows for a draw as a read view
func (s *drawService) GetBetLimitStatus(ctx context.Context, drawID int64) ([]*models.BetLimitStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetByID(ctx, drawID)
	if err != nil {
		return nil, err
	}
	if draw == nil {
		return nil, ErrDrawNotFound
	}

	limits, err := uow.BetLimitRepository().ListByDraw(ctx, drawID)
	if err != nil {
		return nil, err
	}

	statuses := make([]*models.BetLimitStatus, 0, len(limits))
	for _, limit := range limits {
		statuses = append(statuses, &models.BetLimitStatus{
			BetType:      limit.BetType,
			Combination:  limit.Combination,
			MaxAmount:    limit.MaxAmount,
			CurrentTotal: limit.CurrentTotal,
		})
	}

	return statuses, nil
}

// SetBetLimit upserts a limit cap for a draw. Lowering a cap under the
// current total stops new admissions without touching existing exposure.
func (s *drawService) SetBetLimit(ctx context.Context, drawID int64, betType models.BetType, combination string, maxAmount decimal.Decimal) error {
	if !betType.IsValid() {
		return fmt.Errorf("unknown bet type %q", betType)
	}
	if combination != "" && !models.ValidCombination(combination) {
		return fmt.Errorf("combination must be empty or exactly 3 digits, got %q", combination)
	}
	if maxAmount.IsNegative() {
		return fmt.Errorf("max amount must not be negative, got %s", maxAmount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	draw, err := uow.DrawRepository().GetByID(ctx, drawID)
	if err != nil {
		return err
	}
	if draw == nil {
		return ErrDrawNotFound
	}
	if draw.IsSettled() {
		return fmt.Errorf("%w: limits are frozen once settled", ErrResultAlreadySet)
	}

	if err := uow.BetLimitRepository().SetMaxAmount(ctx, drawID, betType, combination, maxAmount); err != nil {
		return err
	}

	return uow.Commit()
}
