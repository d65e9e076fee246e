package application

import (
	"context"
	"fmt"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/persistence"
)

type resourceCatalogStub struct {
	resources map[string]booking.Resource
	err       error
}

func (s *resourceCatalogStub) GetResource(ctx context.Context, id string) (booking.Resource, error) {
	if s.err != nil {
		return booking.Resource{}, s.err
	}
	resource, ok := s.resources[id]
	if !ok {
		return booking.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

type reservationSourceStub struct {
	oneOffs   []booking.OneOffReservation
	recurring []booking.RecurringReservation
	last      *booking.OneOffReservation
	err       error
	lastErr   error
}

func (s *reservationSourceStub) OneOffOn(ctx context.Context, resourceID string, dates []calendar.DateKey, shift booking.Shift) ([]booking.OneOffReservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	wanted := make(map[string]struct{}, len(dates))
	for _, date := range dates {
		wanted[date.String()] = struct{}{}
	}
	var out []booking.OneOffReservation
	for _, oneOff := range s.oneOffs {
		if oneOff.ResourceID != resourceID || !oneOff.Status.IsConflictRelevant() {
			continue
		}
		if oneOff.Shift.Key() != shift.Key() {
			continue
		}
		if _, ok := wanted[oneOff.Date.String()]; ok {
			out = append(out, oneOff)
		}
	}
	return out, nil
}

func (s *reservationSourceStub) LastOneOffOnOrBefore(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift, reference calendar.DateKey) (booking.OneOffReservation, error) {
	if s.lastErr != nil {
		return booking.OneOffReservation{}, s.lastErr
	}
	if s.last == nil {
		return booking.OneOffReservation{}, persistence.ErrNotFound
	}
	return *s.last, nil
}

func (s *reservationSourceStub) RecurringFor(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift) ([]booking.RecurringReservation, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []booking.RecurringReservation
	for _, series := range s.recurring {
		if series.ResourceID != resourceID || !series.Status.IsConflictRelevant() {
			continue
		}
		if series.Weekday != weekday || series.Shift.Key() != shift.Key() {
			continue
		}
		out = append(out, series)
	}
	return out, nil
}

type reservationStoreStub struct {
	reservationSourceStub

	createdOneOff    *booking.OneOffReservation
	createdRecurring *booking.RecurringReservation
	statusUpdates    map[string]booking.Status
	addedExceptions  []calendar.DateKey
	removedException *calendar.DateKey

	oneOffByID    map[string]booking.OneOffReservation
	recurringByID map[string]booking.RecurringReservation

	createErr    error
	exceptionErr error
}

func (s *reservationStoreStub) CreateOneOff(ctx context.Context, reservation booking.OneOffReservation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.createdOneOff = &reservation
	return nil
}

func (s *reservationStoreStub) UpdateOneOffStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	if s.statusUpdates == nil {
		s.statusUpdates = make(map[string]booking.Status)
	}
	s.statusUpdates[id] = status
	return nil
}

func (s *reservationStoreStub) GetOneOff(ctx context.Context, id string) (booking.OneOffReservation, error) {
	reservation, ok := s.oneOffByID[id]
	if !ok {
		return booking.OneOffReservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

func (s *reservationStoreStub) CreateRecurring(ctx context.Context, reservation booking.RecurringReservation) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.createdRecurring = &reservation
	return nil
}

func (s *reservationStoreStub) UpdateRecurringStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	if s.statusUpdates == nil {
		s.statusUpdates = make(map[string]booking.Status)
	}
	s.statusUpdates[id] = status
	return nil
}

func (s *reservationStoreStub) GetRecurring(ctx context.Context, id string) (booking.RecurringReservation, error) {
	reservation, ok := s.recurringByID[id]
	if !ok {
		return booking.RecurringReservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

func (s *reservationStoreStub) AddException(ctx context.Context, recurringID string, date calendar.DateKey, createdAt time.Time) error {
	if s.exceptionErr != nil {
		return s.exceptionErr
	}
	s.addedExceptions = append(s.addedExceptions, date)
	return nil
}

func (s *reservationStoreStub) RemoveException(ctx context.Context, recurringID string, date calendar.DateKey) error {
	if s.exceptionErr != nil {
		return s.exceptionErr
	}
	s.removedException = &date
	return nil
}

type blackoutSourceStub struct {
	blackouts []booking.Blackout
	err       error
}

func (s *blackoutSourceStub) BlackoutsOn(ctx context.Context, resourceID string, dates []calendar.DateKey) ([]booking.Blackout, error) {
	if s.err != nil {
		return nil, s.err
	}
	wanted := make(map[string]struct{}, len(dates))
	for _, date := range dates {
		wanted[date.String()] = struct{}{}
	}
	var out []booking.Blackout
	for _, blackout := range s.blackouts {
		if blackout.ResourceID != resourceID {
			continue
		}
		if _, ok := wanted[blackout.Date.String()]; ok {
			out = append(out, blackout)
		}
	}
	return out, nil
}

type blackoutStoreStub struct {
	blackoutSourceStub

	created   *booking.Blackout
	deletedID string
	createErr error
	deleteErr error
}

func (s *blackoutStoreStub) CreateBlackout(ctx context.Context, blackout booking.Blackout) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = &blackout
	return nil
}

func (s *blackoutStoreStub) DeleteBlackout(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedID = id
	return nil
}

type resourceStoreStub struct {
	resourceCatalogStub

	resourcesList []booking.Resource
	created       *booking.Resource
	deletedID     string
	createErr     error
	deleteErr     error
}

func (s *resourceStoreStub) CreateResource(ctx context.Context, resource booking.Resource) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = &resource
	return nil
}

func (s *resourceStoreStub) ListResources(ctx context.Context) ([]booking.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resourcesList, nil
}

func (s *resourceStoreStub) DeleteResource(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedID = id
	return nil
}

// Shared deterministic helpers for the service tests. The clock is pinned to
// Friday 2024-03-01 so that weekday arithmetic in expectations stays obvious.
var testReferenceTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time {
	return testReferenceTime
}

func testCalendar() *calendar.Calendar {
	return calendar.New(time.UTC, testClock)
}

func courtResource(id string) booking.Resource {
	return booking.Resource{
		ID:        id,
		Name:      "Quadra 1",
		Number:    1,
		Kind:      booking.ResourceCourt,
		Sports:    []string{"tennis"},
		CreatedAt: testReferenceTime,
		UpdatedAt: testReferenceTime,
	}
}

func pitResource(id string) booking.Resource {
	return booking.Resource{
		ID:        id,
		Name:      "Churrasqueira 1",
		Number:    1,
		Kind:      booking.ResourceBarbecuePit,
		CreatedAt: testReferenceTime,
		UpdatedAt: testReferenceTime,
	}
}

func sequentialIDs(prefix string) func() string {
	counter := 0
	return func() string {
		counter++
		return fmt.Sprintf("%s-%d", prefix, counter)
	}
}
