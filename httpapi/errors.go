package httpapi

import (
	"errors"
	"net/http"

	"lotto/service"
)

// statusFor maps service sentinel errors onto HTTP status codes.
// Anything unmatched is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrAccountNotFound),
		errors.Is(err, service.ErrDrawNotFound),
		errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrClaimNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidBet),
		errors.Is(err, service.ErrInvalidTicketNumber):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInsufficientBalance),
		errors.Is(err, service.ErrBetLimitExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrDrawNotOpen),
		errors.Is(err, service.ErrDrawNotClosed),
		errors.Is(err, service.ErrResultAlreadySet),
		errors.Is(err, service.ErrNotWinningTicket),
		errors.Is(err, service.ErrTicketAlreadyClaimed),
		errors.Is(err, service.ErrClaimAlreadyResolved),
		errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
