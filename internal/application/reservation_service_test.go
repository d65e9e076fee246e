package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/persistence"
)

func newReservationFixture(store *reservationStoreStub, blackouts *blackoutSourceStub) (*ReservationService, *reservationStoreStub) {
	if store == nil {
		store = &reservationStoreStub{}
	}
	if blackouts == nil {
		blackouts = &blackoutSourceStub{}
	}
	resources := &resourceCatalogStub{resources: map[string]booking.Resource{
		"court-1": courtResource("court-1"),
		"pit-1":   pitResource("pit-1"),
	}}
	service := NewReservationService(store, resources, blackouts, testCalendar(), sequentialIDs("res"), testClock, nil)
	return service, store
}

func TestCreateOneOffBooksFreeSlot(t *testing.T) {
	t.Parallel()

	service, store := newReservationFixture(nil, nil)

	reservation, err := service.CreateOneOff(context.Background(), CreateOneOffParams{
		ResourceID: "court-1",
		Date:       "2024-03-04",
		Shift:      "19:00",
		MemberID:   "member-1",
		MemberName: "Ana",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.createdOneOff == nil {
		t.Fatal("expected reservation to be persisted")
	}
	if reservation.ID != "res-1" {
		t.Fatalf("expected generated id, got %q", reservation.ID)
	}
	if reservation.Status != booking.StatusConfirmed {
		t.Fatalf("expected confirmed status, got %q", reservation.Status)
	}
	if reservation.Shift != booking.HourlyShift(19) {
		t.Fatalf("expected 19:00 shift, got %+v", reservation.Shift)
	}
	if !reservation.CreatedAt.Equal(testReferenceTime) || !reservation.UpdatedAt.Equal(testReferenceTime) {
		t.Fatalf("expected clock timestamps, got %v / %v", reservation.CreatedAt, reservation.UpdatedAt)
	}
}

func TestCreateOneOffRefusesOccupiedSlot(t *testing.T) {
	t.Parallel()

	monday := calendar.NewDateKey(2024, time.March, 4)

	cases := []struct {
		name      string
		store     *reservationStoreStub
		blackouts *blackoutSourceStub
	}{
		{
			name: "existing one-off",
			store: &reservationStoreStub{reservationSourceStub: reservationSourceStub{
				oneOffs: []booking.OneOffReservation{{
					ID: "other", ResourceID: "court-1", Date: monday,
					Shift: booking.HourlyShift(19), Status: booking.StatusConfirmed,
				}},
			}},
		},
		{
			name: "recurring occurrence",
			store: &reservationStoreStub{reservationSourceStub: reservationSourceStub{
				recurring: []booking.RecurringReservation{{
					ID: "series", ResourceID: "court-1", Weekday: time.Monday,
					Shift: booking.HourlyShift(19), Status: booking.StatusConfirmed,
				}},
			}},
		},
		{
			name: "blackout window",
			blackouts: &blackoutSourceStub{blackouts: []booking.Blackout{{
				ID: "blackout", ResourceID: "court-1", Date: monday,
				Window: booking.MinuteRange{Start: 0, End: 24 * 60},
			}}},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			service, store := newReservationFixture(tc.store, tc.blackouts)

			_, err := service.CreateOneOff(context.Background(), CreateOneOffParams{
				ResourceID: "court-1",
				Date:       "2024-03-04",
				Shift:      "19:00",
				MemberID:   "member-1",
			})
			if !errors.Is(err, ErrSlotUnavailable) {
				t.Fatalf("expected ErrSlotUnavailable, got %v", err)
			}
			if store.createdOneOff != nil {
				t.Fatal("refused booking must not be persisted")
			}
		})
	}
}

func TestCreateOneOffRespectsExceptionHole(t *testing.T) {
	t.Parallel()

	// The series runs every Monday but 2024-03-11 is excepted, so that date
	// can be booked as a one-off.
	store := &reservationStoreStub{reservationSourceStub: reservationSourceStub{
		recurring: []booking.RecurringReservation{{
			ID: "series", ResourceID: "court-1", Weekday: time.Monday,
			Shift: booking.HourlyShift(19), Status: booking.StatusConfirmed,
			Exceptions: booking.NewExceptionSet(calendar.NewDateKey(2024, time.March, 11)),
		}},
	}}
	service, store := newReservationFixture(store, nil)

	_, err := service.CreateOneOff(context.Background(), CreateOneOffParams{
		ResourceID: "court-1",
		Date:       "2024-03-11",
		Shift:      "19:00",
		MemberID:   "member-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.createdOneOff == nil {
		t.Fatal("expected reservation to be persisted")
	}
}

func TestCreateOneOffLosesRaceOnUniqueIndex(t *testing.T) {
	t.Parallel()

	store := &reservationStoreStub{createErr: persistence.ErrDuplicate}
	service, _ := newReservationFixture(store, nil)

	_, err := service.CreateOneOff(context.Background(), CreateOneOffParams{
		ResourceID: "court-1",
		Date:       "2024-03-04",
		Shift:      "19:00",
		MemberID:   "member-1",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable from lost race, got %v", err)
	}
}

func TestCreateOneOffResourceVanishes(t *testing.T) {
	t.Parallel()

	store := &reservationStoreStub{createErr: persistence.ErrForeignKeyViolation}
	service, _ := newReservationFixture(store, nil)

	_, err := service.CreateOneOff(context.Background(), CreateOneOffParams{
		ResourceID: "court-1",
		Date:       "2024-03-04",
		Shift:      "19:00",
		MemberID:   "member-1",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for deleted resource, got %v", err)
	}
}

func TestCreateOneOffValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		params CreateOneOffParams
		field  string
	}{
		{name: "missing resource", params: CreateOneOffParams{Date: "2024-03-04", Shift: "19:00", MemberID: "m"}, field: "resource_id"},
		{name: "missing member", params: CreateOneOffParams{ResourceID: "court-1", Date: "2024-03-04", Shift: "19:00"}, field: "member_id"},
		{name: "bad date", params: CreateOneOffParams{ResourceID: "court-1", Date: "04/03", Shift: "19:00", MemberID: "m"}, field: "date"},
		{name: "past date", params: CreateOneOffParams{ResourceID: "court-1", Date: "2024-02-26", Shift: "19:00", MemberID: "m"}, field: "date"},
		{name: "coarse shift on court", params: CreateOneOffParams{ResourceID: "court-1", Date: "2024-03-04", Shift: "night", MemberID: "m"}, field: "shift"},
		{name: "hourly shift on pit", params: CreateOneOffParams{ResourceID: "pit-1", Date: "2024-03-04", Shift: "19:00", MemberID: "m"}, field: "shift"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			service, _ := newReservationFixture(nil, nil)
			_, err := service.CreateOneOff(context.Background(), tc.params)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestCancelOneOff(t *testing.T) {
	t.Parallel()

	store := &reservationStoreStub{oneOffByID: map[string]booking.OneOffReservation{
		"res-1": {ID: "res-1", Status: booking.StatusConfirmed},
		"res-2": {ID: "res-2", Status: booking.StatusCancelled},
	}}
	service, store := newReservationFixture(store, nil)

	if err := service.CancelOneOff(context.Background(), "res-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.statusUpdates["res-1"] != booking.StatusCancelled {
		t.Fatalf("expected cancelled status update, got %v", store.statusUpdates)
	}

	// Cancelling an already cancelled reservation is a no-op.
	if err := service.CancelOneOff(context.Background(), "res-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.statusUpdates["res-2"]; ok {
		t.Fatal("cancelled reservation should not be updated again")
	}

	if err := service.CancelOneOff(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRecurring(t *testing.T) {
	t.Parallel()

	service, store := newReservationFixture(nil, nil)

	reservation, err := service.CreateRecurring(context.Background(), CreateRecurringParams{
		ResourceID: "court-1",
		Weekday:    "monday",
		Shift:      "19:00",
		StartsOn:   "2024-03-18",
		MemberID:   "member-1",
		MemberName: "Ana",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.createdRecurring == nil {
		t.Fatal("expected series to be persisted")
	}
	if reservation.Weekday != time.Monday {
		t.Fatalf("expected Monday series, got %v", reservation.Weekday)
	}
	if reservation.StartsOn == nil || *reservation.StartsOn != calendar.NewDateKey(2024, time.March, 18) {
		t.Fatalf("expected effective start, got %v", reservation.StartsOn)
	}
	if reservation.Exceptions == nil || len(reservation.Exceptions) != 0 {
		t.Fatalf("expected empty exception set, got %v", reservation.Exceptions)
	}
}

func TestCreateRecurringRefusesTakenSlot(t *testing.T) {
	t.Parallel()

	store := &reservationStoreStub{reservationSourceStub: reservationSourceStub{
		recurring: []booking.RecurringReservation{{
			ID: "series", ResourceID: "court-1", Weekday: time.Monday,
			Shift: booking.HourlyShift(19), Status: booking.StatusConfirmed,
		}},
	}}
	service, _ := newReservationFixture(store, nil)

	_, err := service.CreateRecurring(context.Background(), CreateRecurringParams{
		ResourceID: "court-1",
		Weekday:    "monday",
		Shift:      "19:00",
		MemberID:   "member-1",
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
}

func TestCreateRecurringValidatesStartWeekday(t *testing.T) {
	t.Parallel()

	service, _ := newReservationFixture(nil, nil)

	// 2024-03-05 is a Tuesday.
	_, err := service.CreateRecurring(context.Background(), CreateRecurringParams{
		ResourceID: "court-1",
		Weekday:    "monday",
		Shift:      "19:00",
		StartsOn:   "2024-03-05",
		MemberID:   "member-1",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := vErr.FieldErrors["starts_on"]; !ok {
		t.Fatalf("expected starts_on error, got %v", vErr.FieldErrors)
	}
}

func TestCancelRecurring(t *testing.T) {
	t.Parallel()

	store := &reservationStoreStub{recurringByID: map[string]booking.RecurringReservation{
		"series-1": {ID: "series-1", Status: booking.StatusConfirmed},
	}}
	service, store := newReservationFixture(store, nil)

	if err := service.CancelRecurring(context.Background(), "series-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.statusUpdates["series-1"] != booking.StatusCancelled {
		t.Fatalf("expected cancelled status update, got %v", store.statusUpdates)
	}
}

func TestAddException(t *testing.T) {
	t.Parallel()

	series := booking.RecurringReservation{
		ID: "series-1", ResourceID: "court-1", Weekday: time.Monday,
		Shift: booking.HourlyShift(19), Status: booking.StatusConfirmed,
	}
	store := &reservationStoreStub{recurringByID: map[string]booking.RecurringReservation{"series-1": series}}
	service, store := newReservationFixture(store, nil)

	err := service.AddException(context.Background(), ExceptionParams{RecurringID: "series-1", Date: "2024-03-11"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.addedExceptions) != 1 || store.addedExceptions[0] != calendar.NewDateKey(2024, time.March, 11) {
		t.Fatalf("expected exception recorded, got %v", store.addedExceptions)
	}
}

func TestAddExceptionToleratesMismatchedDate(t *testing.T) {
	t.Parallel()

	// 2024-03-12 is a Tuesday; the exception can never match a Monday series
	// but is stored anyway and only logged.
	series := booking.RecurringReservation{
		ID: "series-1", ResourceID: "court-1", Weekday: time.Monday,
		Shift: booking.HourlyShift(19), Status: booking.StatusConfirmed,
	}
	store := &reservationStoreStub{recurringByID: map[string]booking.RecurringReservation{"series-1": series}}
	service, store := newReservationFixture(store, nil)

	err := service.AddException(context.Background(), ExceptionParams{RecurringID: "series-1", Date: "2024-03-12"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.addedExceptions) != 1 {
		t.Fatalf("mismatched exception should still be stored, got %v", store.addedExceptions)
	}
}

func TestAddExceptionIsIdempotent(t *testing.T) {
	t.Parallel()

	series := booking.RecurringReservation{
		ID: "series-1", ResourceID: "court-1", Weekday: time.Monday,
		Shift: booking.HourlyShift(19), Status: booking.StatusConfirmed,
	}
	store := &reservationStoreStub{
		recurringByID: map[string]booking.RecurringReservation{"series-1": series},
		exceptionErr:  persistence.ErrDuplicate,
	}
	service, _ := newReservationFixture(store, nil)

	if err := service.AddException(context.Background(), ExceptionParams{RecurringID: "series-1", Date: "2024-03-11"}); err != nil {
		t.Fatalf("duplicate exception should not fail, got %v", err)
	}
}

func TestRemoveException(t *testing.T) {
	t.Parallel()

	service, store := newReservationFixture(nil, nil)

	err := service.RemoveException(context.Background(), ExceptionParams{RecurringID: "series-1", Date: "2024-03-11"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.removedException == nil || *store.removedException != calendar.NewDateKey(2024, time.March, 11) {
		t.Fatalf("expected exception removal, got %v", store.removedException)
	}
}
