package application

import (
	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/occupancy"
)

// NextAvailableDatesParams identifies the slot series a member wants to book.
// Weekday and Shift arrive in wire form and are validated before any
// repository access.
type NextAvailableDatesParams struct {
	ResourceID string
	Weekday    string
	Shift      string
}

// NextAvailableDatesResult lists the free future dates for the requested
// weekday/shift and the most recent past one-off conflict, when any, that
// explains the window.
type NextAvailableDatesResult struct {
	LastConflictDate *calendar.DateKey
	AvailableDates   []calendar.DateKey
}

// OccupancyGridParams describes a grid query: a set of resources crossed
// with a shift list, anchored either on an explicit date or on a weekday
// (the standing-reservation view).
type OccupancyGridParams struct {
	ResourceIDs []string
	Date        string
	Weekday     string
	Shifts      []string
}

// RecurringCellInfo decorates an occupied-by-recurring grid cell so the UI
// can explain the standing booking and its history.
type RecurringCellInfo struct {
	ReservationID  string
	MemberName     string
	EffectiveStart *calendar.DateKey
	NextOccurrence *calendar.DateKey
	Exceptions     []calendar.DateKey
}

// OneOffCellInfo decorates an occupied-by-one-off grid cell.
type OneOffCellInfo struct {
	ReservationID string
	MemberName    string
}

// BlackoutCellInfo decorates a blacked-out grid cell.
type BlackoutCellInfo struct {
	BlackoutID string
	Window     booking.MinuteRange
	Reason     string
}

// GridCell is the occupancy classification of one resource/shift pair.
type GridCell struct {
	Date      calendar.DateKey
	State     occupancy.State
	OneOff    *OneOffCellInfo
	Recurring *RecurringCellInfo
	Blackout  *BlackoutCellInfo
}

// OccupancyGrid is a sparse matrix: resource ID to shift key to cell. Shifts
// outside a resource's domain (an hourly slot against a barbecue pit) are
// simply absent from that resource's row.
type OccupancyGrid map[string]map[string]GridCell

// CreateOneOffParams captures a member's request for a one-off booking.
type CreateOneOffParams struct {
	ResourceID string
	Date       string
	Shift      string
	MemberID   string
	MemberName string
}

// CreateRecurringParams captures a member's request for a standing weekly
// booking. StartsOn is optional; when empty the series is active from its
// creation date.
type CreateRecurringParams struct {
	ResourceID string
	Weekday    string
	Shift      string
	StartsOn   string
	MemberID   string
	MemberName string
}

// ExceptionParams identifies a single occurrence of a recurring series.
type ExceptionParams struct {
	RecurringID string
	Date        string
}

// CreateBlackoutParams captures an administrator's unavailability window.
type CreateBlackoutParams struct {
	ResourceID  string
	Date        string
	StartMinute int
	EndMinute   int
	Reason      string
}

// ResourceInput captures caller provided resource fields.
type ResourceInput struct {
	Name   string
	Number int
	Kind   string
	Sports []string
}
