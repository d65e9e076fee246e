package testfixtures

import (
	"context"
	"sync"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/persistence"
)

// MemoryStore implements the persistence repository contracts in memory with
// the same observable semantics as the SQLite implementation: conflict
// relevant status filtering on reads, duplicate detection for active slots
// and exception dates, and referenced-record checks on writes.
type MemoryStore struct {
	mu        sync.Mutex
	resources map[string]booking.Resource
	oneOffs   map[string]booking.OneOffReservation
	recurring map[string]booking.RecurringReservation
	blackouts map[string]booking.Blackout
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		resources: make(map[string]booking.Resource),
		oneOffs:   make(map[string]booking.OneOffReservation),
		recurring: make(map[string]booking.RecurringReservation),
		blackouts: make(map[string]booking.Blackout),
	}
}

func (m *MemoryStore) CreateResource(ctx context.Context, resource booking.Resource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.resources[resource.ID]; exists {
		return persistence.ErrDuplicate
	}
	m.resources[resource.ID] = resource
	return nil
}

func (m *MemoryStore) GetResource(ctx context.Context, id string) (booking.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	resource, ok := m.resources[id]
	if !ok {
		return booking.Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

func (m *MemoryStore) ListResources(ctx context.Context) ([]booking.Resource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]booking.Resource, 0, len(m.resources))
	for _, resource := range m.resources {
		out = append(out, resource)
	}
	return out, nil
}

// DeleteResource drops the resource and everything referencing it, matching
// the SQLite repository's transactional cleanup.
func (m *MemoryStore) DeleteResource(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.resources[id]; !ok {
		return persistence.ErrNotFound
	}
	for reservationID, reservation := range m.oneOffs {
		if reservation.ResourceID == id {
			delete(m.oneOffs, reservationID)
		}
	}
	for seriesID, series := range m.recurring {
		if series.ResourceID == id {
			delete(m.recurring, seriesID)
		}
	}
	for blackoutID, blackout := range m.blackouts {
		if blackout.ResourceID == id {
			delete(m.blackouts, blackoutID)
		}
	}
	delete(m.resources, id)
	return nil
}

func (m *MemoryStore) OneOffOn(ctx context.Context, resourceID string, dates []calendar.DateKey, shift booking.Shift) ([]booking.OneOffReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[calendar.DateKey]struct{}, len(dates))
	for _, date := range dates {
		wanted[date] = struct{}{}
	}
	shiftKey := shift.Key()
	var out []booking.OneOffReservation
	for _, reservation := range m.oneOffs {
		if reservation.ResourceID != resourceID || !reservation.Status.IsConflictRelevant() {
			continue
		}
		if reservation.Shift.Key() != shiftKey {
			continue
		}
		if _, ok := wanted[reservation.Date]; !ok {
			continue
		}
		out = append(out, reservation)
	}
	return out, nil
}

func (m *MemoryStore) LastOneOffOnOrBefore(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift, reference calendar.DateKey) (booking.OneOffReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shiftKey := shift.Key()
	var best booking.OneOffReservation
	found := false
	for _, reservation := range m.oneOffs {
		if reservation.ResourceID != resourceID || !reservation.Status.IsConflictRelevant() {
			continue
		}
		if reservation.Shift.Key() != shiftKey || reservation.Date.Weekday() != weekday {
			continue
		}
		if reservation.Date.After(reference) {
			continue
		}
		if !found || best.Date.Before(reservation.Date) {
			best = reservation
			found = true
		}
	}
	if !found {
		return booking.OneOffReservation{}, persistence.ErrNotFound
	}
	return best, nil
}

func (m *MemoryStore) RecurringFor(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift) ([]booking.RecurringReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	shiftKey := shift.Key()
	var out []booking.RecurringReservation
	for _, series := range m.recurring {
		if series.ResourceID != resourceID || !series.Status.IsConflictRelevant() {
			continue
		}
		if series.Weekday != weekday || series.Shift.Key() != shiftKey {
			continue
		}
		out = append(out, copySeries(series))
	}
	return out, nil
}

func (m *MemoryStore) CreateOneOff(ctx context.Context, reservation booking.OneOffReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, exists := m.oneOffs[reservation.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, ok := m.resources[reservation.ResourceID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if reservation.Status.IsConflictRelevant() {
		for _, existing := range m.oneOffs {
			if existing.ResourceID == reservation.ResourceID &&
				existing.Date == reservation.Date &&
				existing.Shift.Key() == reservation.Shift.Key() &&
				existing.Status.IsConflictRelevant() {
				return persistence.ErrDuplicate
			}
		}
	}
	m.oneOffs[reservation.ID] = reservation
	return nil
}

func (m *MemoryStore) UpdateOneOffStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.oneOffs[id]
	if !ok {
		return persistence.ErrNotFound
	}
	reservation.Status = status
	reservation.UpdatedAt = updatedAt
	m.oneOffs[id] = reservation
	return nil
}

func (m *MemoryStore) GetOneOff(ctx context.Context, id string) (booking.OneOffReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reservation, ok := m.oneOffs[id]
	if !ok {
		return booking.OneOffReservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

func (m *MemoryStore) CreateRecurring(ctx context.Context, reservation booking.RecurringReservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if _, exists := m.recurring[reservation.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, ok := m.resources[reservation.ResourceID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	m.recurring[reservation.ID] = copySeries(reservation)
	return nil
}

func (m *MemoryStore) UpdateRecurringStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	series, ok := m.recurring[id]
	if !ok {
		return persistence.ErrNotFound
	}
	series.Status = status
	series.UpdatedAt = updatedAt
	m.recurring[id] = series
	return nil
}

func (m *MemoryStore) GetRecurring(ctx context.Context, id string) (booking.RecurringReservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	series, ok := m.recurring[id]
	if !ok {
		return booking.RecurringReservation{}, persistence.ErrNotFound
	}
	return copySeries(series), nil
}

func (m *MemoryStore) AddException(ctx context.Context, recurringID string, date calendar.DateKey, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	series, ok := m.recurring[recurringID]
	if !ok {
		return persistence.ErrForeignKeyViolation
	}
	if series.Exceptions.Contains(date) {
		return persistence.ErrDuplicate
	}
	if series.Exceptions == nil {
		series.Exceptions = booking.NewExceptionSet()
		m.recurring[recurringID] = series
	}
	series.Exceptions.Add(date)
	return nil
}

func (m *MemoryStore) RemoveException(ctx context.Context, recurringID string, date calendar.DateKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	series, ok := m.recurring[recurringID]
	if !ok {
		return persistence.ErrNotFound
	}
	if !series.Exceptions.Contains(date) {
		return persistence.ErrNotFound
	}
	series.Exceptions.Remove(date)
	return nil
}

func (m *MemoryStore) BlackoutsOn(ctx context.Context, resourceID string, dates []calendar.DateKey) ([]booking.Blackout, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	wanted := make(map[calendar.DateKey]struct{}, len(dates))
	for _, date := range dates {
		wanted[date] = struct{}{}
	}
	var out []booking.Blackout
	for _, blackout := range m.blackouts {
		if blackout.ResourceID != resourceID {
			continue
		}
		if _, ok := wanted[blackout.Date]; !ok {
			continue
		}
		out = append(out, blackout)
	}
	return out, nil
}

func (m *MemoryStore) CreateBlackout(ctx context.Context, blackout booking.Blackout) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.blackouts[blackout.ID]; exists {
		return persistence.ErrDuplicate
	}
	if _, ok := m.resources[blackout.ResourceID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	m.blackouts[blackout.ID] = blackout
	return nil
}

func (m *MemoryStore) DeleteBlackout(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.blackouts[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(m.blackouts, id)
	return nil
}

func copySeries(series booking.RecurringReservation) booking.RecurringReservation {
	copied := series
	copied.Exceptions = booking.NewExceptionSet(series.Exceptions.Dates()...)
	return copied
}
