package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind represents the type of ledger entry
type TransactionKind string

const (
	TransactionKindLoad       TransactionKind = "load"
	TransactionKindDeduct     TransactionKind = "deduct"
	TransactionKindSale       TransactionKind = "sale"
	TransactionKindRefund     TransactionKind = "refund"
	TransactionKindPayout     TransactionKind = "payout"
	TransactionKindCommission TransactionKind = "commission"
)

// BalanceTransaction is one immutable entry in an account's ledger.
// The running balance of an account is the sum of its transaction amounts;
// BalanceBefore/BalanceAfter are captured in the same unit of work as the
// balance mutation they describe.
type BalanceTransaction struct {
	ID            int64           `db:"id" json:"id"`
	AccountID     int64           `db:"account_id" json:"accountId"`
	Reference     string          `db:"reference" json:"reference"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	BalanceBefore decimal.Decimal `db:"balance_before" json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balanceAfter"`
	Kind          TransactionKind `db:"kind" json:"kind"`
	ProcessedBy   string          `db:"processed_by" json:"processedBy"`
	Note          string          `db:"note" json:"note,omitempty"`
	TicketNumber  *string         `db:"ticket_number" json:"ticketNumber,omitempty"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}
