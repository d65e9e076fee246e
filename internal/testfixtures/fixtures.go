package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
)

var (
	resourceCounter  uint64
	oneOffCounter    uint64
	recurringCounter uint64
	blackoutCounter  uint64
)

// referenceTime anchors fixtures on a Friday so weekday arithmetic in tests
// stays easy to read: 2024-03-01 is a Friday, 2024-03-04 the next Monday.
var referenceTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the calendar date of ReferenceTime.
func ReferenceDate() calendar.DateKey {
	return calendar.NewDateKey(2024, time.March, 1)
}

// --------------------------- Resource fixtures ---------------------------

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*booking.Resource)

// NewResourceFixture returns a deterministic court resource with optional
// overrides.
func NewResourceFixture(opts ...ResourceOption) booking.Resource {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	resource := booking.Resource{
		ID:        fmt.Sprintf("resource-%03d", idx),
		Name:      fmt.Sprintf("Quadra %d", idx),
		Number:    int(idx),
		Kind:      booking.ResourceCourt,
		Sports:    []string{"tennis"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&resource)
	}
	return resource
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(r *booking.Resource) {
		r.ID = id
	}
}

// WithResourceKind overrides the resource kind. Barbecue pits get a matching
// name and no sports list.
func WithResourceKind(kind booking.ResourceKind) ResourceOption {
	return func(r *booking.Resource) {
		r.Kind = kind
		if kind == booking.ResourceBarbecuePit {
			r.Name = fmt.Sprintf("Churrasqueira %d", r.Number)
			r.Sports = nil
		}
	}
}

// WithResourceName overrides the generated name.
func WithResourceName(name string) ResourceOption {
	return func(r *booking.Resource) {
		r.Name = name
	}
}

// ---------------------------- One-off fixtures ---------------------------

// OneOffOption configures the generated one-off reservation fixture.
type OneOffOption func(*booking.OneOffReservation)

// NewOneOffFixture returns a deterministic confirmed one-off reservation on
// the reference date with optional overrides.
func NewOneOffFixture(opts ...OneOffOption) booking.OneOffReservation {
	idx := atomic.AddUint64(&oneOffCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	reservation := booking.OneOffReservation{
		ID:         fmt.Sprintf("oneoff-%03d", idx),
		ResourceID: "resource-001",
		Date:       ReferenceDate(),
		Shift:      booking.HourlyShift(19),
		Status:     booking.StatusConfirmed,
		MemberID:   fmt.Sprintf("member-%03d", idx),
		MemberName: fmt.Sprintf("Sócio %03d", idx),
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&reservation)
	}
	return reservation
}

// WithOneOffID overrides the generated reservation ID.
func WithOneOffID(id string) OneOffOption {
	return func(r *booking.OneOffReservation) {
		r.ID = id
	}
}

// WithOneOffResource overrides the resource the reservation points at.
func WithOneOffResource(resourceID string) OneOffOption {
	return func(r *booking.OneOffReservation) {
		r.ResourceID = resourceID
	}
}

// WithOneOffDate overrides the reservation date.
func WithOneOffDate(date calendar.DateKey) OneOffOption {
	return func(r *booking.OneOffReservation) {
		r.Date = date
	}
}

// WithOneOffShift overrides the reservation shift.
func WithOneOffShift(shift booking.Shift) OneOffOption {
	return func(r *booking.OneOffReservation) {
		r.Shift = shift
	}
}

// WithOneOffStatus overrides the reservation status.
func WithOneOffStatus(status booking.Status) OneOffOption {
	return func(r *booking.OneOffReservation) {
		r.Status = status
	}
}

// WithOneOffMember overrides both member fields.
func WithOneOffMember(id, name string) OneOffOption {
	return func(r *booking.OneOffReservation) {
		r.MemberID = id
		r.MemberName = name
	}
}

// --------------------------- Recurring fixtures --------------------------

// RecurringOption configures the generated recurring reservation fixture.
type RecurringOption func(*booking.RecurringReservation)

// NewRecurringFixture returns a deterministic confirmed Monday series with
// optional overrides.
func NewRecurringFixture(opts ...RecurringOption) booking.RecurringReservation {
	idx := atomic.AddUint64(&recurringCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	reservation := booking.RecurringReservation{
		ID:         fmt.Sprintf("recurring-%03d", idx),
		ResourceID: "resource-001",
		Weekday:    time.Monday,
		Shift:      booking.HourlyShift(19),
		Status:     booking.StatusConfirmed,
		MemberID:   fmt.Sprintf("member-%03d", idx),
		MemberName: fmt.Sprintf("Sócio %03d", idx),
		Exceptions: booking.ExceptionSet{},
		CreatedAt:  created,
		UpdatedAt:  created,
	}
	for _, opt := range opts {
		opt(&reservation)
	}
	return reservation
}

// WithRecurringID overrides the generated reservation ID.
func WithRecurringID(id string) RecurringOption {
	return func(r *booking.RecurringReservation) {
		r.ID = id
	}
}

// WithRecurringResource overrides the resource the series points at.
func WithRecurringResource(resourceID string) RecurringOption {
	return func(r *booking.RecurringReservation) {
		r.ResourceID = resourceID
	}
}

// WithRecurringWeekday overrides the series weekday.
func WithRecurringWeekday(weekday time.Weekday) RecurringOption {
	return func(r *booking.RecurringReservation) {
		r.Weekday = weekday
	}
}

// WithRecurringShift overrides the series shift.
func WithRecurringShift(shift booking.Shift) RecurringOption {
	return func(r *booking.RecurringReservation) {
		r.Shift = shift
	}
}

// WithRecurringStartsOn sets the effective start date.
func WithRecurringStartsOn(date calendar.DateKey) RecurringOption {
	return func(r *booking.RecurringReservation) {
		r.StartsOn = &date
	}
}

// WithRecurringStatus overrides the series status.
func WithRecurringStatus(status booking.Status) RecurringOption {
	return func(r *booking.RecurringReservation) {
		r.Status = status
	}
}

// WithRecurringExceptions replaces the exception set.
func WithRecurringExceptions(dates ...calendar.DateKey) RecurringOption {
	return func(r *booking.RecurringReservation) {
		r.Exceptions = booking.NewExceptionSet(dates...)
	}
}

// --------------------------- Blackout fixtures ---------------------------

// BlackoutOption configures the generated blackout fixture.
type BlackoutOption func(*booking.Blackout)

// NewBlackoutFixture returns a deterministic whole-day blackout on the
// reference date with optional overrides.
func NewBlackoutFixture(opts ...BlackoutOption) booking.Blackout {
	idx := atomic.AddUint64(&blackoutCounter, 1)
	blackout := booking.Blackout{
		ID:         fmt.Sprintf("blackout-%03d", idx),
		ResourceID: "resource-001",
		Date:       ReferenceDate(),
		Window:     booking.MinuteRange{Start: 0, End: 24 * 60},
		Reason:     "manutenção",
		CreatedAt:  referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&blackout)
	}
	return blackout
}

// WithBlackoutResource overrides the resource the blackout points at.
func WithBlackoutResource(resourceID string) BlackoutOption {
	return func(b *booking.Blackout) {
		b.ResourceID = resourceID
	}
}

// WithBlackoutDate overrides the blackout date.
func WithBlackoutDate(date calendar.DateKey) BlackoutOption {
	return func(b *booking.Blackout) {
		b.Date = date
	}
}

// WithBlackoutWindow overrides the blocked minute window.
func WithBlackoutWindow(start, end int) BlackoutOption {
	return func(b *booking.Blackout) {
		b.Window = booking.MinuteRange{Start: start, End: end}
	}
}
