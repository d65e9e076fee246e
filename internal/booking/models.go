// Package booking defines the domain vocabulary shared by the availability
// engine and its repositories: resources, shifts, reservation statuses and
// the reservation and blackout records themselves.
package booking

import (
	"sort"
	"time"

	"github.com/example/club-reservations/internal/calendar"
)

// ResourceKind distinguishes the bookable unit types.
type ResourceKind string

const (
	// ResourceCourt is a sports court rented by the hour.
	ResourceCourt ResourceKind = "court"
	// ResourceBarbecuePit is a barbecue pit rented by day or night period.
	ResourceBarbecuePit ResourceKind = "barbecue_pit"
)

// Status is a reservation lifecycle state. Only conflict-relevant statuses
// ever block a slot.
type Status string

const (
	// StatusConfirmed marks an upcoming reservation.
	StatusConfirmed Status = "confirmed"
	// StatusFinished marks a reservation whose date passed but whose
	// settlement is still pending; it keeps blocking its slot.
	StatusFinished Status = "finished"
	// StatusCancelled marks a reservation the member withdrew.
	StatusCancelled Status = "cancelled"
	// StatusTransferred marks a reservation moved to another slot.
	StatusTransferred Status = "transferred"
)

// IsConflictRelevant reports whether a reservation in this status occupies
// its slot. Cancelled and transferred reservations never block.
func (s Status) IsConflictRelevant() bool {
	return s == StatusConfirmed || s == StatusFinished
}

// Resource is a bookable unit: a court or a barbecue pit. The engine reads
// resources but never mutates them; admin CRUD owns the lifecycle.
type Resource struct {
	ID        string
	Name      string
	Number    int
	Kind      ResourceKind
	Sports    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OneOffReservation is a "comum" booking tied to one specific calendar date.
type OneOffReservation struct {
	ID         string
	ResourceID string
	Date       calendar.DateKey
	Shift      Shift
	Status     Status
	MemberID   string
	MemberName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RecurringReservation is a "permanente" booking: a standing weekly slot on
// a fixed weekday and shift, active from StartsOn (or from creation when
// StartsOn is nil) until cancelled. Exceptions suppress single occurrences
// without ending the series.
type RecurringReservation struct {
	ID         string
	ResourceID string
	Weekday    time.Weekday
	Shift      Shift
	StartsOn   *calendar.DateKey
	Status     Status
	MemberID   string
	MemberName string
	Exceptions ExceptionSet
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ExceptionSet holds the suppressed occurrence dates of a recurring series,
// keyed by canonical date key for O(1) membership tests.
type ExceptionSet map[string]struct{}

// NewExceptionSet builds a set from explicit dates.
func NewExceptionSet(dates ...calendar.DateKey) ExceptionSet {
	set := make(ExceptionSet, len(dates))
	for _, date := range dates {
		set.Add(date)
	}
	return set
}

// Add records a suppressed occurrence date.
func (s ExceptionSet) Add(date calendar.DateKey) {
	s[date.String()] = struct{}{}
}

// Remove drops a suppressed occurrence date.
func (s ExceptionSet) Remove(date calendar.DateKey) {
	delete(s, date.String())
}

// Contains reports whether the date is suppressed.
func (s ExceptionSet) Contains(date calendar.DateKey) bool {
	if s == nil {
		return false
	}
	_, ok := s[date.String()]
	return ok
}

// Dates returns the suppressed dates in ascending order.
func (s ExceptionSet) Dates() []calendar.DateKey {
	if len(s) == 0 {
		return nil
	}
	dates := make([]calendar.DateKey, 0, len(s))
	for key := range s {
		date, err := calendar.ParseDateKey(key)
		if err != nil {
			continue
		}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// Blackout is an admin-declared unavailability window for a resource on one
// date. Unlike reservations it is not keyed by shift: it blocks any shift
// whose time range intersects the window.
type Blackout struct {
	ID         string
	ResourceID string
	Date       calendar.DateKey
	Window     MinuteRange
	Reason     string
	CreatedAt  time.Time
}

// BlocksShift reports whether the blackout window overlaps the shift's time
// range within the blackout's date.
func (b Blackout) BlocksShift(shift Shift) bool {
	return b.Window.Intersects(shift.TimeRange())
}
