package models

import (
	"time"
)

// DrawStatus represents the lifecycle state of a draw
type DrawStatus string

const (
	DrawStatusScheduled DrawStatus = "scheduled"
	DrawStatusOpen      DrawStatus = "open"
	DrawStatusClosed    DrawStatus = "closed"
	DrawStatusSettled   DrawStatus = "settled"
)

// TimeSlot identifies one of the three daily draw slots
type TimeSlot string

const (
	TimeSlotTwoPM  TimeSlot = "twoPM"
	TimeSlotFivePM TimeSlot = "fivePM"
	TimeSlotNinePM TimeSlot = "ninePM"
)

// CutoffLead is how long before the draw time betting closes.
const CutoffLead = 5 * time.Minute

// AllTimeSlots lists the slots in draw order.
var AllTimeSlots = []TimeSlot{TimeSlotTwoPM, TimeSlotFivePM, TimeSlotNinePM}

// Draw represents a single scheduled lottery draw
type Draw struct {
	ID        int64      `db:"id" json:"id"`
	DrawDate  time.Time  `db:"draw_date" json:"drawDate"`
	TimeSlot  TimeSlot   `db:"time_slot" json:"timeSlot"`
	Status    DrawStatus `db:"status" json:"status"`
	Result    *string    `db:"result" json:"result,omitempty"`
	OpensAt   time.Time  `db:"opens_at" json:"opensAt"`
	ClosesAt  time.Time  `db:"closes_at" json:"closesAt"`
	SettledAt *time.Time `db:"settled_at" json:"settledAt,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
}

// IsValid reports whether the slot is one of the three daily slots
func (s TimeSlot) IsValid() bool {
	switch s {
	case TimeSlotTwoPM, TimeSlotFivePM, TimeSlotNinePM:
		return true
	}
	return false
}

// DrawHour returns the local hour of day at which the slot's draw occurs
func (s TimeSlot) DrawHour() int {
	switch s {
	case TimeSlotTwoPM:
		return 14
	case TimeSlotFivePM:
		return 17
	default:
		return 21
	}
}

// DrawTime returns the draw moment for the slot on the given date
func (s TimeSlot) DrawTime(date time.Time, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), s.DrawHour(), 0, 0, 0, loc)
}

// OpenTime returns when betting opens for the slot on the given date.
// The first slot opens at midnight; later slots open at the previous
// slot's draw time so exactly one slot accepts bets at any moment.
func (s TimeSlot) OpenTime(date time.Time, loc *time.Location) time.Time {
	switch s {
	case TimeSlotTwoPM:
		return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	case TimeSlotFivePM:
		return TimeSlotTwoPM.DrawTime(date, loc)
	default:
		return TimeSlotFivePM.DrawTime(date, loc)
	}
}

// CutoffTime returns when betting closes for the slot on the given date
func (s TimeSlot) CutoffTime(date time.Time, loc *time.Location) time.Time {
	return s.DrawTime(date, loc).Add(-CutoffLead)
}

// IsSettled reports whether the draw has reached its terminal state
func (d *Draw) IsSettled() bool {
	return d.Status == DrawStatusSettled
}

// AcceptsBets reports whether bets may be admitted against the draw
func (d *Draw) AcceptsBets() bool {
	return d.Status == DrawStatusOpen
}

// CanTransitionTo reports whether moving to the target status is a legal
// forward step. Transitions never skip a state and never reverse.
func (d *Draw) CanTransitionTo(target DrawStatus) bool {
	switch d.Status {
	case DrawStatusScheduled:
		return target == DrawStatusOpen
	case DrawStatusOpen:
		return target == DrawStatusClosed
	case DrawStatusClosed:
		return target == DrawStatusSettled
	}
	return false
}
