package service

import (
	"context"
	"errors"
	"fmt"

	"lotto/config"
	"lotto/events"
	"lotto/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type bettingService struct {
	uowFactory UnitOfWorkFactory
}

// NewBettingService creates a new betting service
func NewBettingService(uowFactory UnitOfWorkFactory) BettingService {
	return &bettingService{
		uowFactory: uowFactory,
	}
}

// ticketNumberRetries bounds regeneration on a ticket number collision.
const ticketNumberRetries = 3

// PlaceBet sells a ticket with one or more bet lines against an open draw.
// Each line is admitted against the draw's exposure limits with a
// conditional reservation; if any line is refused the whole sale rolls
// back, including reservations already taken by earlier lines.
func (s *bettingService) PlaceBet(ctx context.Context, agentID, drawID int64, lines []BetLine) (*models.SaleResult, error) {
	if err := validateBetLines(lines); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	agent, err := uow.AccountRepository().GetByID(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("failed to get agent: %w", err)
	}
	if agent == nil || !agent.Active {
		return nil, ErrAccountNotFound
	}
	if !agent.Role.CanSellTickets() {
		return nil, fmt.Errorf("account %s (role %s) may not sell tickets", agent.Username, agent.Role)
	}

	// The share lock holds off the scheduler's close transition until
	// this sale commits or rolls back.
	draw, err := uow.DrawRepository().GetByIDForShare(ctx, drawID)
	if err != nil {
		return nil, fmt.Errorf("failed to get draw: %w", err)
	}
	if draw == nil {
		return nil, ErrDrawNotFound
	}
	if !draw.AcceptsBets() {
		return nil, fmt.Errorf("%w: draw %d is %s", ErrDrawNotOpen, drawID, draw.Status)
	}

	// Admit each line against the type-wide cap, then against the
	// per-combination cap when one has been set for the number.
	for _, line := range lines {
		admitted, _, err := uow.BetLimitRepository().TryReserve(ctx, drawID, line.BetType, "", line.Amount)
		if err != nil {
			return nil, err
		}
		if !admitted {
			return nil, fmt.Errorf("%w: %s %s for %s", ErrBetLimitExceeded, line.BetType, line.Combination, line.Amount)
		}

		hasCombLimit, err := uow.BetLimitRepository().Exists(ctx, drawID, line.BetType, line.Combination)
		if err != nil {
			return nil, err
		}
		if hasCombLimit {
			admitted, _, err := uow.BetLimitRepository().TryReserve(ctx, drawID, line.BetType, line.Combination, line.Amount)
			if err != nil {
				return nil, err
			}
			if !admitted {
				return nil, fmt.Errorf("%w: %s %s for %s", ErrBetLimitExceeded, line.BetType, line.Combination, line.Amount)
			}
		}
	}

	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}

	before, after, applied, err := uow.AccountRepository().DeductBalance(ctx, agentID, total)
	if err != nil {
		return nil, fmt.Errorf("failed to deduct stake: %w", err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: have %s, need %s", ErrInsufficientBalance, agent.CurrentBalance, total)
	}

	ticket := &models.Ticket{
		AccountID:   agentID,
		DrawID:      drawID,
		Status:      models.TicketStatusActive,
		TotalAmount: total,
	}
	for i, line := range lines {
		ticket.Bets = append(ticket.Bets, &models.Bet{
			Sequence:    models.BetSequence(i),
			BetType:     line.BetType,
			Combination: line.Combination,
			Amount:      line.Amount,
		})
	}

	// The millisecond timestamp component makes collisions rare; retry
	// a few times before giving up.
	for attempt := 0; ; attempt++ {
		number, err := models.GenerateTicketNumber()
		if err != nil {
			return nil, err
		}
		ticket.TicketNumber = number

		err = uow.TicketRepository().CreateWithBets(ctx, ticket)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrAlreadyExists) || attempt >= ticketNumberRetries {
			return nil, fmt.Errorf("failed to create ticket: %w", err)
		}
	}

	stakeTxn := &models.BalanceTransaction{
		AccountID:     agentID,
		Reference:     uuid.NewString(),
		Amount:        total.Neg(),
		BalanceBefore: before,
		BalanceAfter:  after,
		Kind:          models.TransactionKindSale,
		ProcessedBy:   agent.Username,
		TicketNumber:  &ticket.TicketNumber,
	}
	if err := RecordBalanceChange(ctx, uow, stakeTxn); err != nil {
		return nil, err
	}

	// Agent commission on the sale, credited in the same transaction
	commission := total.Mul(config.Get().AgentCommissionRate).Round(2)
	if commission.IsPositive() {
		cBefore, cAfter, err := uow.AccountRepository().CreditBalance(ctx, agentID, commission)
		if err != nil {
			return nil, fmt.Errorf("failed to credit commission: %w", err)
		}
		commTxn := &models.BalanceTransaction{
			AccountID:     agentID,
			Reference:     uuid.NewString(),
			Amount:        commission,
			BalanceBefore: cBefore,
			BalanceAfter:  cAfter,
			Kind:          models.TransactionKindCommission,
			ProcessedBy:   agent.Username,
			TicketNumber:  &ticket.TicketNumber,
		}
		if err := RecordBalanceChange(ctx, uow, commTxn); err != nil {
			return nil, err
		}
	}

	if err := uow.AuditRepository().Record(ctx, &models.AuditEntry{
		TicketID:    &ticket.ID,
		DrawID:      &ticket.DrawID,
		Action:      models.AuditActionTicketSold,
		PerformedBy: agent.Username,
		Notes:       fmt.Sprintf("%d bet(s), total %s", len(ticket.Bets), total),
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TicketSoldEvent{
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		AccountID:    agentID,
		DrawID:       drawID,
		TotalAmount:  total,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"ticketNumber": ticket.TicketNumber,
		"agentID":      agentID,
		"drawID":       drawID,
		"total":        total,
	}).Info("Ticket sold")

	newBalance := after
	if commission.IsPositive() {
		newBalance = after.Add(commission)
	}

	return &models.SaleResult{
		Ticket:     ticket,
		NewBalance: newBalance,
		Commission: commission,
	}, nil
}

// VoidTicket cancels an active ticket while its draw is still open,
// releasing reserved exposure and refunding the stake to the agent
func (s *bettingService) VoidTicket(ctx context.Context, ticketNumber string, performedBy string) (*models.Ticket, error) {
	if !models.ValidTicketNumber(ticketNumber) {
		return nil, ErrInvalidTicketNumber
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ticket, err := uow.TicketRepository().GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	draw, err := uow.DrawRepository().GetByIDForShare(ctx, ticket.DrawID)
	if err != nil {
		return nil, err
	}
	if draw == nil || !draw.AcceptsBets() {
		return nil, fmt.Errorf("%w: tickets can only be voided while their draw is open", ErrDrawNotOpen)
	}

	voided, err := uow.TicketRepository().TransitionStatus(ctx, ticket.ID, models.TicketStatusActive, models.TicketStatusVoided)
	if err != nil {
		return nil, err
	}
	if !voided {
		return nil, fmt.Errorf("ticket %s is not active", ticketNumber)
	}
	ticket.Status = models.TicketStatusVoided

	// Return each line's reserved exposure
	for _, bet := range ticket.Bets {
		if err := uow.BetLimitRepository().Release(ctx, ticket.DrawID, bet.BetType, "", bet.Amount); err != nil {
			return nil, err
		}
		hasCombLimit, err := uow.BetLimitRepository().Exists(ctx, ticket.DrawID, bet.BetType, bet.Combination)
		if err != nil {
			return nil, err
		}
		if hasCombLimit {
			if err := uow.BetLimitRepository().Release(ctx, ticket.DrawID, bet.BetType, bet.Combination, bet.Amount); err != nil {
				return nil, err
			}
		}
	}

	before, after, err := uow.AccountRepository().CreditBalance(ctx, ticket.AccountID, ticket.TotalAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to refund stake: %w", err)
	}

	refundTxn := &models.BalanceTransaction{
		AccountID:     ticket.AccountID,
		Reference:     uuid.NewString(),
		Amount:        ticket.TotalAmount,
		BalanceBefore: before,
		BalanceAfter:  after,
		Kind:          models.TransactionKindRefund,
		ProcessedBy:   performedBy,
		TicketNumber:  &ticket.TicketNumber,
	}
	if err := RecordBalanceChange(ctx, uow, refundTxn); err != nil {
		return nil, err
	}

	// Claw back the commission credited on the sale so a sell-void cycle
	// nets to zero. The refund above covers the deduction.
	commission := ticket.TotalAmount.Mul(config.Get().AgentCommissionRate).Round(2)
	if commission.IsPositive() {
		cBefore, cAfter, err := uow.AccountRepository().DeductBalanceOverdraft(ctx, ticket.AccountID, commission)
		if err != nil {
			return nil, fmt.Errorf("failed to reverse commission: %w", err)
		}
		commTxn := &models.BalanceTransaction{
			AccountID:     ticket.AccountID,
			Reference:     uuid.NewString(),
			Amount:        commission.Neg(),
			BalanceBefore: cBefore,
			BalanceAfter:  cAfter,
			Kind:          models.TransactionKindCommission,
			ProcessedBy:   performedBy,
			Note:          "reversed on void",
			TicketNumber:  &ticket.TicketNumber,
		}
		if err := RecordBalanceChange(ctx, uow, commTxn); err != nil {
			return nil, err
		}
	}

	if err := uow.AuditRepository().Record(ctx, &models.AuditEntry{
		TicketID:    &ticket.ID,
		DrawID:      &ticket.DrawID,
		Action:      models.AuditActionTicketVoided,
		PerformedBy: performedBy,
		Notes:       fmt.Sprintf("refunded %s", ticket.TotalAmount),
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.TicketVoidedEvent{
		TicketID:     ticket.ID,
		TicketNumber: ticket.TicketNumber,
		AccountID:    ticket.AccountID,
		DrawID:       ticket.DrawID,
		Refund:       ticket.TotalAmount,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return ticket, nil
}

// GetTicket retrieves a ticket by its printed number
func (s *bettingService) GetTicket(ctx context.Context, ticketNumber string) (*models.Ticket, error) {
	if !models.ValidTicketNumber(ticketNumber) {
		return nil, ErrInvalidTicketNumber
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	ticket, err := uow.TicketRepository().GetByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}

	return ticket, nil
}

// validateBetLines checks every line of a requested sale
func validateBetLines(lines []BetLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: ticket must carry at least one bet", ErrInvalidBet)
	}
	for _, line := range lines {
		if !line.BetType.IsValid() {
			return fmt.Errorf("%w: unknown bet type %q", ErrInvalidBet, line.BetType)
		}
		if !models.ValidCombination(line.Combination) {
			return fmt.Errorf("%w: combination must be exactly 3 digits, got %q", ErrInvalidBet, line.Combination)
		}
		if line.BetType == models.BetTypeRambolito && models.IsTripleCombination(line.Combination) {
			return fmt.Errorf("%w: triple %s has no distinct permutations, bet it straight", ErrInvalidBet, line.Combination)
		}
		if line.Amount.LessThan(models.MinBetAmount) || line.Amount.GreaterThan(models.MaxBetAmount) {
			return fmt.Errorf("%w: amount %s outside [%s, %s]", ErrInvalidBet, line.Amount, models.MinBetAmount, models.MaxBetAmount)
		}
	}
	return nil
}
