package events

import (
	"context"
	"sync"

	"lotto/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange   EventType = "balance_change"
	EventTypeTicketSold      EventType = "ticket_sold"
	EventTypeTicketVoided    EventType = "ticket_voided"
	EventTypeWinnersComputed EventType = "winners_computed"
	EventTypeClaimResolved   EventType = "claim_resolved"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	AccountID  int64
	OldBalance decimal.Decimal
	NewBalance decimal.Decimal
	Kind       models.TransactionKind
	Amount     decimal.Decimal
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// TicketSoldEvent represents a completed ticket sale
type TicketSoldEvent struct {
	TicketID     int64
	TicketNumber string
	AccountID    int64
	DrawID       int64
	TotalAmount  decimal.Decimal
}

func (e TicketSoldEvent) Type() EventType {
	return EventTypeTicketSold
}

// TicketVoidedEvent represents a voided ticket with released exposure
type TicketVoidedEvent struct {
	TicketID     int64
	TicketNumber string
	AccountID    int64
	DrawID       int64
	Refund       decimal.Decimal
}

func (e TicketVoidedEvent) Type() EventType {
	return EventTypeTicketVoided
}

// WinnersComputedEvent carries the settlement outcome to the notification
// sink. Delivery failures never affect the already-committed settlement.
type WinnersComputedEvent struct {
	DrawID  int64
	Result  string
	Winners []models.WinnerEntry
}

func (e WinnersComputedEvent) Type() EventType {
	return EventTypeWinnersComputed
}

// ClaimResolvedEvent represents a terminal claim decision
type ClaimResolvedEvent struct {
	ClaimID    int64
	TicketID   int64
	Status     models.ClaimStatus
	PaidAmount decimal.Decimal
	ResolvedBy string
}

func (e ClaimResolvedEvent) Type() EventType {
	return EventTypeClaimResolved
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after a successful commit.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus over the real bus
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events; called after a successful DB commit
func (b *TransactionalBus) Flush(ctx context.Context) {
	// Events are processed independently of the transaction lifecycle,
	// so emission uses a background context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events; called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
