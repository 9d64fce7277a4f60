package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BetLimit caps the aggregate exposure for a bet type within one draw.
// A row with an empty combination applies to the whole bet type; rows with
// a combination cap that specific number in addition to the type-wide cap.
type BetLimit struct {
	ID           int64           `db:"id"`
	DrawID       int64           `db:"draw_id"`
	BetType      BetType         `db:"bet_type"`
	Combination  string          `db:"combination"`
	MaxAmount    decimal.Decimal `db:"max_amount"`
	CurrentTotal decimal.Decimal `db:"current_total"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

// Remaining returns the exposure still available under the limit
func (l *BetLimit) Remaining() decimal.Decimal {
	return l.MaxAmount.Sub(l.CurrentTotal)
}

// BetLimitStatus is the read-side view of one limit row
type BetLimitStatus struct {
	BetType      BetType         `json:"betType"`
	Combination  string          `json:"combination,omitempty"`
	MaxAmount    decimal.Decimal `json:"maxAmount"`
	CurrentTotal decimal.Decimal `json:"currentTotal"`
}
