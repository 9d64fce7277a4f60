package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TicketNumberLength is the exact digit count of every ticket number.
const TicketNumberLength = 17

// TicketStatus represents the state of a sold ticket
type TicketStatus string

const (
	TicketStatusActive  TicketStatus = "active"
	TicketStatusWon     TicketStatus = "won"
	TicketStatusClaimed TicketStatus = "claimed"
	TicketStatusVoided  TicketStatus = "voided"
)

// BetType is the matching rule category for a bet
type BetType string

const (
	BetTypeStraight  BetType = "straight"
	BetTypeRambolito BetType = "rambolito"
)

// Prize multipliers applied to the bet amount on a win.
var (
	MultiplierStraight          = decimal.NewFromInt(450)
	MultiplierRambolitoDouble   = decimal.NewFromInt(150)
	MultiplierRambolitoDistinct = decimal.NewFromInt(75)
)

// Bet amount bounds per bet line.
var (
	MinBetAmount = decimal.NewFromInt(1)
	MaxBetAmount = decimal.NewFromInt(10000)
)

// Ticket is the durable record of a sale: one agent, one draw, one or more bets
type Ticket struct {
	ID           int64           `db:"id" json:"id"`
	TicketNumber string          `db:"ticket_number" json:"ticketNumber"`
	AccountID    int64           `db:"account_id" json:"accountId"`
	DrawID       int64           `db:"draw_id" json:"drawId"`
	Status       TicketStatus    `db:"status" json:"status"`
	TotalAmount  decimal.Decimal `db:"total_amount" json:"totalAmount"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`

	Bets []*Bet `db:"-" json:"bets,omitempty"`
}

// Bet is a single bet line on a ticket
type Bet struct {
	ID          int64           `db:"id" json:"id"`
	TicketID    int64           `db:"ticket_id" json:"ticketId"`
	Sequence    string          `db:"sequence" json:"sequence"`
	BetType     BetType         `db:"bet_type" json:"betType"`
	Combination string          `db:"combination" json:"combination"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	IsWinner    bool            `db:"is_winner" json:"isWinner"`
	WinAmount   decimal.Decimal `db:"win_amount" json:"winAmount"`
}

// IsValid reports whether the bet type is a known matching rule
func (t BetType) IsValid() bool {
	return t == BetTypeStraight || t == BetTypeRambolito
}

// ValidTicketNumber reports whether s is exactly 17 numeric digits
func ValidTicketNumber(s string) bool {
	if len(s) != TicketNumberLength {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ValidCombination reports whether s is exactly 3 numeric digits
func ValidCombination(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// GenerateTicketNumber produces a 17-digit numeric ticket number from the
// current millisecond timestamp and four cryptographically random digits.
// Global uniqueness is enforced by the ticket store.
func GenerateTicketNumber() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate ticket number suffix: %w", err)
	}
	num := fmt.Sprintf("%013d%04d", time.Now().UnixMilli(), n.Int64())
	return num[len(num)-TicketNumberLength:], nil
}

// BetSequence returns the letter label for the i-th bet line on a ticket
func BetSequence(i int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	return string(letters[i%len(letters)])
}

// sortedDigits returns the combination's digits in ascending order
func sortedDigits(s string) string {
	d := strings.Split(s, "")
	sort.Strings(d)
	return strings.Join(d, "")
}

// uniqueDigitCount returns how many distinct digits the combination has
func uniqueDigitCount(s string) int {
	seen := map[rune]bool{}
	for _, c := range s {
		seen[c] = true
	}
	return len(seen)
}

// IsTripleCombination reports whether all three digits are identical.
// Triples are not accepted as rambolito bets: every permutation is the
// number itself, which is just a straight bet.
func IsTripleCombination(s string) bool {
	return uniqueDigitCount(s) == 1
}

// Matches reports whether a combination of the given type wins against result.
// Straight requires exact digit order; rambolito requires digit multiset
// equality.
func (t BetType) Matches(combination, result string) bool {
	switch t {
	case BetTypeStraight:
		return combination == result
	case BetTypeRambolito:
		return sortedDigits(combination) == sortedDigits(result)
	}
	return false
}

// PayoutMultiplier returns the prize multiplier for a winning combination
// of the given type. Rambolito pays less for all-distinct digits (six
// winning permutations) than for a repeated digit (three permutations).
func (t BetType) PayoutMultiplier(combination string) decimal.Decimal {
	switch t {
	case BetTypeStraight:
		return MultiplierStraight
	case BetTypeRambolito:
		switch uniqueDigitCount(combination) {
		case 2:
			return MultiplierRambolitoDouble
		case 3:
			return MultiplierRambolitoDistinct
		}
	}
	return decimal.Zero
}

// Evaluate determines the outcome of the bet against a draw result.
// The returned win amount is the bet amount times the type's multiplier.
func (b *Bet) Evaluate(result string) (bool, decimal.Decimal) {
	if !b.BetType.Matches(b.Combination, result) {
		return false, decimal.Zero
	}
	return true, b.Amount.Mul(b.BetType.PayoutMultiplier(b.Combination))
}
