package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lotto/events"
	"lotto/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type claimService struct {
	uowFactory UnitOfWorkFactory
}

// NewClaimService creates a new claim service
func NewClaimService(uowFactory UnitOfWorkFactory) ClaimService {
	return &claimService{
		uowFactory: uowFactory,
	}
}

// RequestClaim opens a pending claim against a winning ticket. The
// calculated prize is the sum of the ticket's winning bet lines as
// evaluated at settlement.
func (s *claimService) RequestClaim(ctx context.Context, ticketNumber, claimerName, claimerContact string) (*models.ClaimRequest, error) {
	if !models.ValidTicketNumber(ticketNumber) {
		return nil, ErrInvalidTicketNumber
	}
	if claimerName == "" {
		return nil, fmt.Errorf("claimer name is required")
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

	switch ticket.Status {
	case models.TicketStatusClaimed:
		return nil, ErrTicketAlreadyClaimed
	case models.TicketStatusWon:
		// claimable
	default:
		return nil, fmt.Errorf("%w: ticket %s is %s", ErrNotWinningTicket, ticketNumber, ticket.Status)
	}

	prize := decimal.Zero
	for _, bet := range ticket.Bets {
		if bet.IsWinner {
			prize = prize.Add(bet.WinAmount)
		}
	}

	claim := &models.ClaimRequest{
		TicketID:        ticket.ID,
		ClaimerName:     claimerName,
		ClaimerContact:  claimerContact,
		Status:          models.ClaimStatusPending,
		CalculatedPrize: prize,
	}
	if err := uow.ClaimRepository().Create(ctx, claim); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, fmt.Errorf("%w: ticket %s already has a claim", ErrAlreadyExists, ticketNumber)
		}
		return nil, err
	}

	if err := uow.AuditRepository().Record(ctx, &models.AuditEntry{
		TicketID:    &ticket.ID,
		ClaimID:     &claim.ID,
		Action:      models.AuditActionClaimRequested,
		PerformedBy: claimerName,
		Notes:       fmt.Sprintf("calculated prize %s", prize),
	}); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return claim, nil
}

// ApproveClaim approves a pending claim and pays out the prize to the
// ticket's selling agent. The resolution is a conditional update on the
// pending status, so of two concurrent resolvers exactly one wins and
// the prize is paid exactly once.
func (s *claimService) ApproveClaim(ctx context.Context, claimID int64, approvedPrize *decimal.Decimal, resolvedBy, notes string) (*models.ClaimRequest, error) {
	if approvedPrize != nil && approvedPrize.IsNegative() {
		return nil, fmt.Errorf("approved prize must not be negative, got %s", approvedPrize)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	claim, err := uow.ClaimRepository().GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	resolved, err := uow.ClaimRepository().Resolve(ctx, claimID, models.ClaimStatusApproved, approvedPrize, resolvedBy, notes)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, fmt.Errorf("%w: claim %d", ErrClaimAlreadyResolved, claimID)
	}

	claimed, err := uow.TicketRepository().TransitionStatus(ctx, claim.TicketID, models.TicketStatusWon, models.TicketStatusClaimed)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, fmt.Errorf("%w: ticket %d", ErrTicketAlreadyClaimed, claim.TicketID)
	}

	ticket, err := uow.TicketRepository().GetByID(ctx, claim.TicketID)
	if err != nil {
		return nil, err
	}

	claim.Status = models.ClaimStatusApproved
	claim.ApprovedPrize = approvedPrize
	claim.ResolvedBy = &resolvedBy
	claim.Notes = notes

	payout := claim.PayoutAmount()
	if payout.IsPositive() {
		before, after, err := uow.AccountRepository().CreditBalance(ctx, ticket.AccountID, payout)
		if err != nil {
			return nil, fmt.Errorf("failed to credit payout: %w", err)
		}
		payoutTxn := &models.BalanceTransaction{
			AccountID:     ticket.AccountID,
			Reference:     uuid.NewString(),
			Amount:        payout,
			BalanceBefore: before,
			BalanceAfter:  after,
			Kind:          models.TransactionKindPayout,
			ProcessedBy:   resolvedBy,
			Note:          fmt.Sprintf("claim %d", claimID),
			TicketNumber:  &ticket.TicketNumber,
		}
		if err := RecordBalanceChange(ctx, uow, payoutTxn); err != nil {
			return nil, err
		}
	}

	if err := uow.AuditRepository().Record(ctx, &models.AuditEntry{
		TicketID:    &claim.TicketID,
		ClaimID:     &claim.ID,
		Action:      models.AuditActionClaimApproved,
		PerformedBy: resolvedBy,
		Notes:       fmt.Sprintf("paid %s", payout),
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ClaimResolvedEvent{
		ClaimID:    claim.ID,
		TicketID:   claim.TicketID,
		Status:     models.ClaimStatusApproved,
		PaidAmount: payout,
		ResolvedBy: resolvedBy,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"claimID":      claimID,
		"ticketNumber": ticket.TicketNumber,
		"payout":       payout,
		"resolvedBy":   resolvedBy,
	}).Info("Claim approved")

	now := time.Now()
	claim.ResolvedAt = &now

	return claim, nil
}

// RejectClaim rejects a pending claim. The ticket stays won, so a fresh
// claim cannot be opened (one claim per ticket) but the decision and its
// reason are on record.
func (s *claimService) RejectClaim(ctx context.Context, claimID int64, resolvedBy, notes string) (*models.ClaimRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	claim, err := uow.ClaimRepository().GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	resolved, err := uow.ClaimRepository().Resolve(ctx, claimID, models.ClaimStatusRejected, nil, resolvedBy, notes)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, fmt.Errorf("%w: claim %d", ErrClaimAlreadyResolved, claimID)
	}

	claim.Status = models.ClaimStatusRejected
	claim.ResolvedBy = &resolvedBy
	claim.Notes = notes

	if err := uow.AuditRepository().Record(ctx, &models.AuditEntry{
		TicketID:    &claim.TicketID,
		ClaimID:     &claim.ID,
		Action:      models.AuditActionClaimRejected,
		PerformedBy: resolvedBy,
		Notes:       notes,
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.ClaimResolvedEvent{
		ClaimID:    claim.ID,
		TicketID:   claim.TicketID,
		Status:     models.ClaimStatusRejected,
		PaidAmount: decimal.Zero,
		ResolvedBy: resolvedBy,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	now := time.Now()
	claim.ResolvedAt = &now

	return claim, nil
}

// GetClaim retrieves a claim by ID
func (s *claimService) GetClaim(ctx context.Context, claimID int64) (*models.ClaimRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	claim, err := uow.ClaimRepository().GetByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	return claim, nil
}

// ListPendingClaims returns all unresolved claims
func (s *claimService) ListPendingClaims(ctx context.Context) ([]*models.ClaimRequest, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.ClaimRepository().ListPending(ctx)
}

// GetTicketHistory returns the audit trail for a ticket
func (s *claimService) GetTicketHistory(ctx context.Context, ticketNumber string) ([]*models.AuditEntry, error) {
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

	return uow.AuditRepository().ListByTicket(ctx, ticket.ID)
}
