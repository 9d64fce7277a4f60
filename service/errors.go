package service

import "errors"

// Sentinel errors returned by the services. Callers match with errors.Is
// to translate business outcomes into their own surface.
var (
	// ErrAccountNotFound means the referenced account does not exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrInsufficientBalance means a debit would take the balance negative
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDrawNotOpen means the draw is not accepting bets
	ErrDrawNotOpen = errors.New("draw is not open for betting")

	// ErrDrawNotClosed means results may not be input yet
	ErrDrawNotClosed = errors.New("draw is not closed")

	// ErrResultAlreadySet means the draw already has a result
	ErrResultAlreadySet = errors.New("draw result already set")

	// ErrBetLimitExceeded means admitting the bet would push exposure past a cap
	ErrBetLimitExceeded = errors.New("bet limit exceeded")

	// ErrInvalidBet means a bet line failed validation
	ErrInvalidBet = errors.New("invalid bet")

	// ErrInvalidTicketNumber means the ticket number has the wrong shape
	ErrInvalidTicketNumber = errors.New("invalid ticket number")

	// ErrTicketNotFound means no ticket carries the given number
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrNotWinningTicket means the ticket is not in a claimable state
	ErrNotWinningTicket = errors.New("ticket is not a winning ticket")

	// ErrTicketAlreadyClaimed means the ticket's prize was already paid
	ErrTicketAlreadyClaimed = errors.New("ticket already claimed")

	// ErrClaimAlreadyResolved means the claim reached a terminal state
	ErrClaimAlreadyResolved = errors.New("claim already resolved")

	// ErrClaimNotFound means the referenced claim does not exist
	ErrClaimNotFound = errors.New("claim not found")

	// ErrDrawNotFound means the referenced draw does not exist
	ErrDrawNotFound = errors.New("draw not found")

	// ErrAlreadyExists signals an insert that collided with an existing
	// row under a uniqueness constraint
	ErrAlreadyExists = errors.New("row already exists")
)
