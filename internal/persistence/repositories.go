// Package persistence declares the storage contracts of the booking portal.
// The availability engine only reads; the write operations exist for the
// booking and administration paths that feed it.
package persistence

import (
	"context"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
)

// ResourceRepository exposes the bookable-unit catalog.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource booking.Resource) error
	GetResource(ctx context.Context, id string) (booking.Resource, error)
	ListResources(ctx context.Context) ([]booking.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

// ReservationRepository stores one-off and recurring reservations together
// with recurring-series exceptions. The read queries are the seams the
// availability engine pulls from; they carry no business logic.
type ReservationRepository interface {
	// OneOffOn returns conflict-relevant one-off reservations for the
	// resource on any of the given dates and the given shift.
	OneOffOn(ctx context.Context, resourceID string, dates []calendar.DateKey, shift booking.Shift) ([]booking.OneOffReservation, error)
	// LastOneOffOnOrBefore returns the most recent conflict-relevant one-off
	// for the resource on the given weekday and shift dated at or before
	// reference. ErrNotFound means no such reservation exists.
	LastOneOffOnOrBefore(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift, reference calendar.DateKey) (booking.OneOffReservation, error)
	// RecurringFor returns active recurring reservations for the resource on
	// the weekday and shift, each with its exception set eagerly attached.
	RecurringFor(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift) ([]booking.RecurringReservation, error)

	CreateOneOff(ctx context.Context, reservation booking.OneOffReservation) error
	UpdateOneOffStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error
	GetOneOff(ctx context.Context, id string) (booking.OneOffReservation, error)

	CreateRecurring(ctx context.Context, reservation booking.RecurringReservation) error
	UpdateRecurringStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error
	GetRecurring(ctx context.Context, id string) (booking.RecurringReservation, error)

	AddException(ctx context.Context, recurringID string, date calendar.DateKey, createdAt time.Time) error
	RemoveException(ctx context.Context, recurringID string, date calendar.DateKey) error
}

// BlackoutRepository stores admin-declared unavailability windows.
type BlackoutRepository interface {
	// BlackoutsOn returns blackout windows for the resource on any of the
	// given dates.
	BlackoutsOn(ctx context.Context, resourceID string, dates []calendar.DateKey) ([]booking.Blackout, error)

	CreateBlackout(ctx context.Context, blackout booking.Blackout) error
	DeleteBlackout(ctx context.Context, id string) error
}
