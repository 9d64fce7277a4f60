package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetType_Matches_Straight(t *testing.T) {
	assert.True(t, BetTypeStraight.Matches("123", "123"))
	assert.False(t, BetTypeStraight.Matches("123", "321"))
	assert.False(t, BetTypeStraight.Matches("123", "124"))
}

func TestBetType_Matches_Rambolito(t *testing.T) {
	// Any permutation of the result wins
	assert.True(t, BetTypeRambolito.Matches("123", "123"))
	assert.True(t, BetTypeRambolito.Matches("321", "123"))
	assert.True(t, BetTypeRambolito.Matches("213", "123"))

	// Repeated digits must appear the same number of times
	assert.True(t, BetTypeRambolito.Matches("112", "211"))
	assert.False(t, BetTypeRambolito.Matches("112", "122"))
	assert.False(t, BetTypeRambolito.Matches("123", "124"))
}

func TestBetType_PayoutMultiplier(t *testing.T) {
	assert.True(t, decimal.NewFromInt(450).Equal(BetTypeStraight.PayoutMultiplier("123")))
	assert.True(t, decimal.NewFromInt(450).Equal(BetTypeStraight.PayoutMultiplier("777")))

	// Two distinct digits: three winning permutations
	assert.True(t, decimal.NewFromInt(150).Equal(BetTypeRambolito.PayoutMultiplier("112")))
	// Three distinct digits: six winning permutations
	assert.True(t, decimal.NewFromInt(75).Equal(BetTypeRambolito.PayoutMultiplier("123")))
}

func TestBet_Evaluate(t *testing.T) {
	bet := &Bet{
		BetType:     BetTypeStraight,
		Combination: "456",
		Amount:      decimal.NewFromInt(10),
	}

	won, prize := bet.Evaluate("456")
	assert.True(t, won)
	assert.True(t, decimal.NewFromInt(4500).Equal(prize))

	won, prize = bet.Evaluate("654")
	assert.False(t, won)
	assert.True(t, prize.IsZero())
}

func TestBet_Evaluate_RambolitoDouble(t *testing.T) {
	double := &Bet{
		BetType:     BetTypeRambolito,
		Combination: "557",
		Amount:      decimal.NewFromInt(20),
	}

	won, prize := double.Evaluate("755")
	assert.True(t, won)
	assert.True(t, decimal.NewFromInt(3000).Equal(prize))
}

func TestIsTripleCombination(t *testing.T) {
	assert.True(t, IsTripleCombination("777"))
	assert.True(t, IsTripleCombination("000"))
	assert.False(t, IsTripleCombination("778"))
	assert.False(t, IsTripleCombination("123"))
}

func TestValidCombination(t *testing.T) {
	assert.True(t, ValidCombination("000"))
	assert.True(t, ValidCombination("987"))
	assert.False(t, ValidCombination("12"))
	assert.False(t, ValidCombination("1234"))
	assert.False(t, ValidCombination("12a"))
	assert.False(t, ValidCombination(""))
}

func TestValidTicketNumber(t *testing.T) {
	assert.True(t, ValidTicketNumber("12345678901234567"))
	assert.False(t, ValidTicketNumber("1234567890123456"))
	assert.False(t, ValidTicketNumber("123456789012345678"))
	assert.False(t, ValidTicketNumber("1234567890123456x"))
}

func TestGenerateTicketNumber(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		num, err := GenerateTicketNumber()
		require.NoError(t, err)
		assert.True(t, ValidTicketNumber(num), "generated %q", num)
		seen[num] = true
	}
	// Random suffixes make collisions across 100 draws vanishingly unlikely
	assert.Greater(t, len(seen), 90)
}

func TestBetSequence(t *testing.T) {
	assert.Equal(t, "A", BetSequence(0))
	assert.Equal(t, "B", BetSequence(1))
	assert.Equal(t, "Z", BetSequence(25))
	assert.Equal(t, "A", BetSequence(26))
}
