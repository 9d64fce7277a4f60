package models

import "time"

// AuditAction identifies the state transition an audit entry records
type AuditAction string

const (
	AuditActionTicketSold     AuditAction = "TICKET_SOLD"
	AuditActionTicketVoided   AuditAction = "TICKET_VOIDED"
	AuditActionDrawCreated    AuditAction = "DRAW_CREATED"
	AuditActionDrawSettled    AuditAction = "DRAW_SETTLED"
	AuditActionClaimRequested AuditAction = "CLAIM_REQUESTED"
	AuditActionClaimApproved  AuditAction = "CLAIM_APPROVED"
	AuditActionClaimRejected  AuditAction = "CLAIM_REJECTED"
)

// AuditEntry is one append-only record of a workflow decision. Entries
// are written in the same transaction as the transition they describe and
// are never updated or deleted. Ticket, draw and claim references are set
// as applicable to the action.
type AuditEntry struct {
	ID          int64       `db:"id" json:"id"`
	TicketID    *int64      `db:"ticket_id" json:"ticketId,omitempty"`
	DrawID      *int64      `db:"draw_id" json:"drawId,omitempty"`
	ClaimID     *int64      `db:"claim_id" json:"claimId,omitempty"`
	Action      AuditAction `db:"action" json:"action"`
	PerformedBy string      `db:"performed_by" json:"performedBy"`
	Notes       string      `db:"notes" json:"notes,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}
