package recurrence_test

import (
	"testing"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/recurrence"
	"github.com/example/club-reservations/internal/testfixtures"
)

func TestIsValidOccurrence(t *testing.T) {
	t.Parallel()

	monday := calendar.NewDateKey(2024, time.March, 4)
	laterMonday := calendar.NewDateKey(2024, time.March, 18)

	cases := []struct {
		name   string
		series booking.RecurringReservation
		date   calendar.DateKey
		want   bool
	}{
		{
			name:   "weekday matches without start date",
			series: testfixtures.NewRecurringFixture(),
			date:   monday,
			want:   true,
		},
		{
			name:   "weekday mismatch",
			series: testfixtures.NewRecurringFixture(),
			date:   calendar.NewDateKey(2024, time.March, 5),
			want:   false,
		},
		{
			name:   "before effective start",
			series: testfixtures.NewRecurringFixture(testfixtures.WithRecurringStartsOn(laterMonday)),
			date:   monday,
			want:   false,
		},
		{
			name:   "on effective start",
			series: testfixtures.NewRecurringFixture(testfixtures.WithRecurringStartsOn(laterMonday)),
			date:   laterMonday,
			want:   true,
		},
		{
			name:   "after effective start",
			series: testfixtures.NewRecurringFixture(testfixtures.WithRecurringStartsOn(monday)),
			date:   laterMonday,
			want:   true,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := recurrence.IsValidOccurrence(tc.series, tc.date); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestOccupies(t *testing.T) {
	t.Parallel()

	monday := calendar.NewDateKey(2024, time.March, 4)
	nextMonday := monday.AddDays(7)

	cases := []struct {
		name   string
		series booking.RecurringReservation
		date   calendar.DateKey
		want   bool
	}{
		{
			name:   "active occurrence",
			series: testfixtures.NewRecurringFixture(),
			date:   monday,
			want:   true,
		},
		{
			name:   "excepted occurrence is free",
			series: testfixtures.NewRecurringFixture(testfixtures.WithRecurringExceptions(monday)),
			date:   monday,
			want:   false,
		},
		{
			name:   "exception only affects its own date",
			series: testfixtures.NewRecurringFixture(testfixtures.WithRecurringExceptions(monday)),
			date:   nextMonday,
			want:   true,
		},
		{
			name:   "cancelled series never occupies",
			series: testfixtures.NewRecurringFixture(testfixtures.WithRecurringStatus(booking.StatusCancelled)),
			date:   monday,
			want:   false,
		},
		{
			name:   "finished series still occupies",
			series: testfixtures.NewRecurringFixture(testfixtures.WithRecurringStatus(booking.StatusFinished)),
			date:   monday,
			want:   true,
		},
		{
			name:   "weekday mismatch never occupies",
			series: testfixtures.NewRecurringFixture(),
			date:   calendar.NewDateKey(2024, time.March, 6),
			want:   false,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := recurrence.Occupies(tc.series, tc.date); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNextRealOccurrenceSkipsExceptions(t *testing.T) {
	t.Parallel()

	friday := calendar.NewDateKey(2024, time.March, 1)
	firstMonday := calendar.NewDateKey(2024, time.March, 4)
	secondMonday := firstMonday.AddDays(7)

	series := testfixtures.NewRecurringFixture(testfixtures.WithRecurringExceptions(firstMonday))

	got, ok := recurrence.NextRealOccurrence(series, friday)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if got != secondMonday {
		t.Fatalf("expected %v, got %v", secondMonday, got)
	}
}

func TestNextRealOccurrenceHonoursEffectiveStart(t *testing.T) {
	t.Parallel()

	friday := calendar.NewDateKey(2024, time.March, 1)
	startMonday := calendar.NewDateKey(2024, time.March, 18)

	series := testfixtures.NewRecurringFixture(testfixtures.WithRecurringStartsOn(startMonday))

	got, ok := recurrence.NextRealOccurrence(series, friday)
	if !ok {
		t.Fatal("expected an occurrence")
	}
	if got != startMonday {
		t.Fatalf("expected %v, got %v", startMonday, got)
	}
}

func TestNextRealOccurrenceGivesUpForDeadSeries(t *testing.T) {
	t.Parallel()

	series := testfixtures.NewRecurringFixture(testfixtures.WithRecurringStatus(booking.StatusCancelled))

	if _, ok := recurrence.NextRealOccurrence(series, calendar.NewDateKey(2024, time.March, 1)); ok {
		t.Fatal("cancelled series should have no next occurrence")
	}
}

func TestIsMeaningfulException(t *testing.T) {
	t.Parallel()

	series := testfixtures.NewRecurringFixture()

	if !recurrence.IsMeaningfulException(series, calendar.NewDateKey(2024, time.March, 4)) {
		t.Fatal("a Monday exception on a Monday series should be meaningful")
	}
	if recurrence.IsMeaningfulException(series, calendar.NewDateKey(2024, time.March, 5)) {
		t.Fatal("a Tuesday exception on a Monday series should not be meaningful")
	}
}
