package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimStatus represents the state of a prize claim
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
)

// ClaimRequest tracks a ticket holder's prize claim from request to a
// single terminal decision
type ClaimRequest struct {
	ID              int64            `db:"id" json:"id"`
	TicketID        int64            `db:"ticket_id" json:"ticketId"`
	ClaimerName     string           `db:"claimer_name" json:"claimerName"`
	ClaimerContact  string           `db:"claimer_contact" json:"claimerContact,omitempty"`
	Status          ClaimStatus      `db:"status" json:"status"`
	CalculatedPrize decimal.Decimal  `db:"calculated_prize" json:"calculatedPrize"`
	ApprovedPrize   *decimal.Decimal `db:"approved_prize" json:"approvedPrize,omitempty"`
	RequestedAt     time.Time        `db:"requested_at" json:"requestedAt"`
	ResolvedAt      *time.Time       `db:"resolved_at" json:"resolvedAt,omitempty"`
	ResolvedBy      *string          `db:"resolved_by" json:"resolvedBy,omitempty"`
	Notes           string           `db:"notes" json:"notes,omitempty"`
}

// IsResolved reports whether the claim has reached a terminal state
func (c *ClaimRequest) IsResolved() bool {
	return c.Status != ClaimStatusPending
}

// PayoutAmount returns the amount the ledger pays out for an approved
// claim: the approved override when present, the calculated prize otherwise
func (c *ClaimRequest) PayoutAmount() decimal.Decimal {
	if c.ApprovedPrize != nil {
		return *c.ApprovedPrize
	}
	return c.CalculatedPrize
}
