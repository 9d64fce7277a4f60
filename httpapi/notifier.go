package httpapi

import (
	"context"

	"lotto/events"
	"lotto/models"

	log "github.com/sirupsen/logrus"
)

// WinnerNotifier receives the winner list once a draw settles. Delivery
// is best effort and happens after the settlement has committed.
type WinnerNotifier interface {
	NotifyWinners(ctx context.Context, drawID int64, result string, winners []models.WinnerEntry)
}

// LogNotifier writes winner notifications to the application log
type LogNotifier struct{}

func (LogNotifier) NotifyWinners(ctx context.Context, drawID int64, result string, winners []models.WinnerEntry) {
	for _, w := range winners {
		log.WithFields(log.Fields{
			"drawID":       drawID,
			"result":       result,
			"ticketNumber": w.TicketNumber,
			"accountID":    w.AccountID,
			"prize":        w.PrizeAmount,
		}).Info("Winning ticket")
	}
}

// RegisterWinnerNotifier subscribes a notifier to settlement events
func RegisterWinnerNotifier(bus *events.Bus, notifier WinnerNotifier) {
	bus.Subscribe(events.EventTypeWinnersComputed, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.WinnersComputedEvent)
		if !ok {
			return
		}
		notifier.NotifyWinners(ctx, e.DrawID, e.Result, e.Winners)
	})
}
