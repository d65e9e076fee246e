// Package occupancy classifies a single (resource, date, shift) slot against
// the reservations and blackout windows known for it. The decision order is
// fixed and documented: blackout, then one-off, then recurring, then free.
package occupancy

import (
	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/recurrence"
)

// State is the occupancy classification of a slot.
type State string

const (
	// StateFree means the slot can be booked.
	StateFree State = "free"
	// StateOneOff means a conflict-relevant one-off reservation holds the slot.
	StateOneOff State = "one_off"
	// StateRecurring means an active recurring series holds the slot and no
	// exception suppresses this occurrence.
	StateRecurring State = "recurring"
	// StateBlackedOut means an admin blackout window overlaps the slot.
	StateBlackedOut State = "blacked_out"
)

// Occupancy is the outcome of classifying one slot. Exactly one of the
// detail pointers is set for a non-free state.
type Occupancy struct {
	State     State
	OneOff    *booking.OneOffReservation
	Recurring *booking.RecurringReservation
	Blackout  *booking.Blackout
}

// Rows carries the raw repository rows relevant to one slot classification.
// The evaluator itself is a pure function over these rows.
type Rows struct {
	OneOffs   []booking.OneOffReservation
	Recurring []booking.RecurringReservation
	Blackouts []booking.Blackout
}

// Classify determines the occupancy of (date, shift) with the full decision
// order. Blackouts win over everything because the resource is physically
// unusable regardless of who holds a standing reservation; a one-off beats a
// recurring occurrence when both could apply.
func Classify(date calendar.DateKey, shift booking.Shift, rows Rows) Occupancy {
	for i := range rows.Blackouts {
		blackout := rows.Blackouts[i]
		if blackout.Date == date && blackout.BlocksShift(shift) {
			return Occupancy{State: StateBlackedOut, Blackout: &blackout}
		}
	}
	return classifyBookings(date, shift, rows)
}

// ClassifyBookings applies only the reservation rules (one-off, then
// recurring-with-exceptions), skipping blackout windows. The next-available-
// dates query uses this mode: the observed product behaviour does not hide
// blacked-out dates from the candidate list, and the asymmetry is kept
// deliberately.
func ClassifyBookings(date calendar.DateKey, shift booking.Shift, rows Rows) Occupancy {
	return classifyBookings(date, shift, rows)
}

func classifyBookings(date calendar.DateKey, shift booking.Shift, rows Rows) Occupancy {
	shiftKey := shift.Key()

	for i := range rows.OneOffs {
		oneOff := rows.OneOffs[i]
		if !oneOff.Status.IsConflictRelevant() {
			continue
		}
		if oneOff.Date == date && oneOff.Shift.Key() == shiftKey {
			return Occupancy{State: StateOneOff, OneOff: &oneOff}
		}
	}

	for i := range rows.Recurring {
		series := rows.Recurring[i]
		if series.Shift.Key() != shiftKey {
			continue
		}
		if recurrence.Occupies(series, date) {
			return Occupancy{State: StateRecurring, Recurring: &series}
		}
	}

	return Occupancy{State: StateFree}
}
