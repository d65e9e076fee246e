package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/occupancy"
	"github.com/example/club-reservations/internal/persistence"
	"github.com/example/club-reservations/internal/recurrence"
)

// ReservationStore is the persistence surface the booking write path needs.
// The sqlite repository satisfies it structurally.
type ReservationStore interface {
	ReservationSource

	CreateOneOff(ctx context.Context, reservation booking.OneOffReservation) error
	UpdateOneOffStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error
	GetOneOff(ctx context.Context, id string) (booking.OneOffReservation, error)

	CreateRecurring(ctx context.Context, reservation booking.RecurringReservation) error
	UpdateRecurringStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error
	GetRecurring(ctx context.Context, id string) (booking.RecurringReservation, error)

	AddException(ctx context.Context, recurringID string, date calendar.DateKey, createdAt time.Time) error
	RemoveException(ctx context.Context, recurringID string, date calendar.DateKey) error
}

// ReservationService owns the booking write path: one-off and recurring
// reservations and per-occurrence exceptions. Every create re-checks the
// slot before inserting; the database's uniqueness guard is the final
// arbiter when two requests race.
type ReservationService struct {
	store       ReservationStore
	resources   ResourceCatalog
	blackouts   BlackoutSource
	cal         *calendar.Calendar
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewReservationService wires dependencies for the booking write path.
func NewReservationService(store ReservationStore, resources ResourceCatalog, blackouts BlackoutSource, cal *calendar.Calendar, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if cal == nil {
		cal = calendar.New(nil, nil)
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		store:       store,
		resources:   resources,
		blackouts:   blackouts,
		cal:         cal,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateOneOff books a single date/shift for a member. The slot is
// classified first so the caller gets a precise refusal; the unique index on
// active slots closes the window between the check and the insert.
func (s *ReservationService) CreateOneOff(ctx context.Context, params CreateOneOffParams) (booking.OneOffReservation, error) {
	if s == nil {
		return booking.OneOffReservation{}, fmt.Errorf("ReservationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "reservation", "create_one_off", "resource_id", params.ResourceID)

	vErr := &ValidationError{}
	if params.ResourceID == "" {
		vErr.add("resource_id", "resource id is required")
	}
	if params.MemberID == "" {
		vErr.add("member_id", "member id is required")
	}
	date, err := calendar.ParseDateKey(params.Date)
	if err != nil {
		vErr.add("date", "date is invalid")
	}
	if vErr.HasErrors() {
		return booking.OneOffReservation{}, vErr
	}

	resource, err := s.resources.GetResource(ctx, params.ResourceID)
	if err != nil {
		return booking.OneOffReservation{}, mapRepoError(err)
	}
	shift, err := booking.ParseShift(resource.Kind, params.Shift)
	if err != nil {
		vErr.add("shift", "shift is invalid for this resource")
		return booking.OneOffReservation{}, vErr
	}
	if date.Before(s.cal.Today()) {
		vErr.add("date", "date is in the past")
		return booking.OneOffReservation{}, vErr
	}

	occ, err := s.classifySlot(ctx, resource.ID, date, shift)
	if err != nil {
		return booking.OneOffReservation{}, err
	}
	if occ.State != occupancy.StateFree {
		logger.Info("slot refused", "date", date.String(), "shift", shift.Key(), "state", string(occ.State))
		return booking.OneOffReservation{}, ErrSlotUnavailable
	}

	createdAt := s.now()
	reservation := booking.OneOffReservation{
		ID:         s.idGenerator(),
		ResourceID: resource.ID,
		Date:       date,
		Shift:      shift,
		Status:     booking.StatusConfirmed,
		MemberID:   params.MemberID,
		MemberName: params.MemberName,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := s.store.CreateOneOff(ctx, reservation); err != nil {
		return booking.OneOffReservation{}, mapRepoError(err)
	}

	logger.Info("one-off reservation created", "reservation_id", reservation.ID, "date", date.String(), "shift", shift.Key())
	return reservation, nil
}

// CancelOneOff marks a one-off reservation cancelled. Cancelling frees the
// slot immediately; already cancelled or transferred reservations are left
// untouched.
func (s *ReservationService) CancelOneOff(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "reservation", "cancel_one_off", "reservation_id", id)

	if id == "" {
		vErr := &ValidationError{}
		vErr.add("reservation_id", "reservation id is required")
		return vErr
	}

	reservation, err := s.store.GetOneOff(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if !reservation.Status.IsConflictRelevant() {
		return nil
	}

	if err := s.store.UpdateOneOffStatus(ctx, id, booking.StatusCancelled, s.now()); err != nil {
		return mapRepoError(err)
	}
	logger.Info("one-off reservation cancelled")
	return nil
}

// CreateRecurring opens a standing weekly booking. The slot is refused when
// another active series already holds the same resource, weekday and shift.
// Existing one-offs keep their dates; the series simply never wins those
// occurrences in classification.
func (s *ReservationService) CreateRecurring(ctx context.Context, params CreateRecurringParams) (booking.RecurringReservation, error) {
	if s == nil {
		return booking.RecurringReservation{}, fmt.Errorf("ReservationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "reservation", "create_recurring", "resource_id", params.ResourceID)

	vErr := &ValidationError{}
	if params.ResourceID == "" {
		vErr.add("resource_id", "resource id is required")
	}
	if params.MemberID == "" {
		vErr.add("member_id", "member id is required")
	}
	weekday, err := calendar.ParseWeekday(params.Weekday)
	if err != nil {
		vErr.add("weekday", "weekday is invalid")
	}
	var startsOn *calendar.DateKey
	if params.StartsOn != "" {
		date, err := calendar.ParseDateKey(params.StartsOn)
		if err != nil {
			vErr.add("starts_on", "start date is invalid")
		} else {
			startsOn = &date
		}
	}
	if vErr.HasErrors() {
		return booking.RecurringReservation{}, vErr
	}

	resource, err := s.resources.GetResource(ctx, params.ResourceID)
	if err != nil {
		return booking.RecurringReservation{}, mapRepoError(err)
	}
	shift, err := booking.ParseShift(resource.Kind, params.Shift)
	if err != nil {
		vErr.add("shift", "shift is invalid for this resource")
		return booking.RecurringReservation{}, vErr
	}
	if startsOn != nil && startsOn.Weekday() != weekday {
		vErr.add("starts_on", "start date does not fall on the chosen weekday")
		return booking.RecurringReservation{}, vErr
	}

	existing, err := s.store.RecurringFor(ctx, resource.ID, weekday, shift)
	if err != nil {
		return booking.RecurringReservation{}, mapRepoError(err)
	}
	if len(existing) > 0 {
		logger.Info("slot refused", "weekday", weekday.String(), "shift", shift.Key(), "state", "recurring")
		return booking.RecurringReservation{}, ErrSlotUnavailable
	}

	createdAt := s.now()
	reservation := booking.RecurringReservation{
		ID:         s.idGenerator(),
		ResourceID: resource.ID,
		Weekday:    weekday,
		Shift:      shift,
		StartsOn:   startsOn,
		Status:     booking.StatusConfirmed,
		MemberID:   params.MemberID,
		MemberName: params.MemberName,
		Exceptions: booking.ExceptionSet{},
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := s.store.CreateRecurring(ctx, reservation); err != nil {
		return booking.RecurringReservation{}, mapRepoError(err)
	}

	logger.Info("recurring reservation created", "reservation_id", reservation.ID, "weekday", weekday.String(), "shift", shift.Key())
	return reservation, nil
}

// CancelRecurring ends a standing series. Future occurrences stop blocking
// the slot at once; past occurrences keep their own one-off records, so
// nothing else changes.
func (s *ReservationService) CancelRecurring(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "reservation", "cancel_recurring", "reservation_id", id)

	if id == "" {
		vErr := &ValidationError{}
		vErr.add("reservation_id", "reservation id is required")
		return vErr
	}

	reservation, err := s.store.GetRecurring(ctx, id)
	if err != nil {
		return mapRepoError(err)
	}
	if !reservation.Status.IsConflictRelevant() {
		return nil
	}

	if err := s.store.UpdateRecurringStatus(ctx, id, booking.StatusCancelled, s.now()); err != nil {
		return mapRepoError(err)
	}
	logger.Info("recurring reservation cancelled")
	return nil
}

// AddException suppresses one occurrence of a recurring series. A date that
// can never match the series is still accepted and stored (it simply never
// suppresses anything) but is logged as a data quality warning.
func (s *ReservationService) AddException(ctx context.Context, params ExceptionParams) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "reservation", "add_exception", "recurring_id", params.RecurringID)

	vErr := &ValidationError{}
	if params.RecurringID == "" {
		vErr.add("recurring_id", "recurring reservation id is required")
	}
	date, err := calendar.ParseDateKey(params.Date)
	if err != nil {
		vErr.add("date", "date is invalid")
	}
	if vErr.HasErrors() {
		return vErr
	}

	reservation, err := s.store.GetRecurring(ctx, params.RecurringID)
	if err != nil {
		return mapRepoError(err)
	}
	if !recurrence.IsMeaningfulException(reservation, date) {
		logger.Warn("exception date can never match its series",
			"exception_date", date.String(),
			"series_weekday", reservation.Weekday.String(),
		)
	}

	err = s.store.AddException(ctx, params.RecurringID, date, s.now())
	if err != nil && !errors.Is(err, persistence.ErrDuplicate) {
		return mapRepoError(err)
	}
	logger.Info("exception recorded", "date", date.String())
	return nil
}

// RemoveException restores a previously suppressed occurrence.
func (s *ReservationService) RemoveException(ctx context.Context, params ExceptionParams) error {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "reservation", "remove_exception", "recurring_id", params.RecurringID)

	vErr := &ValidationError{}
	if params.RecurringID == "" {
		vErr.add("recurring_id", "recurring reservation id is required")
	}
	date, err := calendar.ParseDateKey(params.Date)
	if err != nil {
		vErr.add("date", "date is invalid")
	}
	if vErr.HasErrors() {
		return vErr
	}

	if err := s.store.RemoveException(ctx, params.RecurringID, date); err != nil {
		return mapRepoError(err)
	}
	logger.Info("exception removed", "date", date.String())
	return nil
}

func (s *ReservationService) classifySlot(ctx context.Context, resourceID string, date calendar.DateKey, shift booking.Shift) (occupancy.Occupancy, error) {
	dates := []calendar.DateKey{date}
	oneOffs, err := s.store.OneOffOn(ctx, resourceID, dates, shift)
	if err != nil {
		return occupancy.Occupancy{}, mapRepoError(err)
	}
	series, err := s.store.RecurringFor(ctx, resourceID, date.Weekday(), shift)
	if err != nil {
		return occupancy.Occupancy{}, mapRepoError(err)
	}
	blackouts, err := s.blackouts.BlackoutsOn(ctx, resourceID, dates)
	if err != nil {
		return occupancy.Occupancy{}, mapRepoError(err)
	}
	rows := occupancy.Rows{OneOffs: oneOffs, Recurring: series, Blackouts: blackouts}
	return occupancy.Classify(date, shift, rows), nil
}
