package testutil

import (
	"time"

	"lotto/models"

	"github.com/shopspring/decimal"
)

// CreateTestAccount creates a test account with default values
func CreateTestAccount(username string, role models.Role) *models.Account {
	now := time.Now()
	return &models.Account{
		Username:       username,
		FullName:       "Test " + username,
		Role:           role,
		CurrentBalance: decimal.Zero,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CreateTestAgent creates a test agent account with a starting balance
func CreateTestAgent(username string, balance int64) *models.Account {
	account := CreateTestAccount(username, models.RoleAgent)
	account.CurrentBalance = decimal.NewFromInt(balance)
	return account
}

// CreateTestDraw creates a scheduled test draw for the given date and slot
func CreateTestDraw(date time.Time, slot models.TimeSlot) *models.Draw {
	loc := time.UTC
	return &models.Draw{
		DrawDate: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		TimeSlot: slot,
		Status:   models.DrawStatusScheduled,
		OpensAt:  slot.OpenTime(date, loc),
		ClosesAt: slot.CutoffTime(date, loc),
	}
}

// CreateTestBetLimit creates a test bet limit row with a default cap
func CreateTestBetLimit(drawID int64, betType models.BetType, combination string) *models.BetLimit {
	return &models.BetLimit{
		DrawID:      drawID,
		BetType:     betType,
		Combination: combination,
		MaxAmount:   decimal.NewFromInt(50000),
	}
}

// CreateTestTicket creates an active test ticket with a single straight bet
func CreateTestTicket(ticketNumber string, accountID, drawID int64) *models.Ticket {
	amount := decimal.NewFromInt(10)
	return &models.Ticket{
		TicketNumber: ticketNumber,
		AccountID:    accountID,
		DrawID:       drawID,
		Status:       models.TicketStatusActive,
		TotalAmount:  amount,
		Bets: []*models.Bet{
			{
				Sequence:    "A",
				BetType:     models.BetTypeStraight,
				Combination: "123",
				Amount:      amount,
			},
		},
	}
}

// CreateTestClaim creates a pending test claim for a ticket
func CreateTestClaim(ticketID int64, prize decimal.Decimal) *models.ClaimRequest {
	return &models.ClaimRequest{
		TicketID:        ticketID,
		ClaimerName:     "Juan Dela Cruz",
		ClaimerContact:  "0917-000-0000",
		Status:          models.ClaimStatusPending,
		CalculatedPrize: prize,
	}
}
