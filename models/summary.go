package models

import "github.com/shopspring/decimal"

// WinnerEntry identifies one winning ticket in a settlement
type WinnerEntry struct {
	AccountID    int64           `json:"accountId"`
	TicketID     int64           `json:"ticketId"`
	TicketNumber string          `json:"ticketNumber"`
	PrizeAmount  decimal.Decimal `json:"prizeAmount"`
}

// SettlementBreakdown aggregates winners of one bet type
type SettlementBreakdown struct {
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// SettlementSummary is the outcome of settling a draw
type SettlementSummary struct {
	DrawID        int64                           `json:"drawId"`
	Result        string                          `json:"result"`
	BetsEvaluated int                             `json:"betsEvaluated"`
	Winners       []WinnerEntry                   `json:"winners"`
	TotalPrize    decimal.Decimal                 `json:"totalPrize"`
	Breakdown     map[BetType]SettlementBreakdown `json:"breakdown"`
}

// SaleResult is the outcome of a ticket sale returned to the caller
type SaleResult struct {
	Ticket     *Ticket
	NewBalance decimal.Decimal
	Commission decimal.Decimal
}
