// Package recurrence decides which calendar dates belong to a recurring
// reservation series. It is the sole gate for "did this series even run on
// this date": exception and conflict checks only apply to dates this package
// accepts as occurrences.
package recurrence

import (
	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
)

// nextOccurrenceSearchLimit bounds the scan for a series' next unsuppressed
// occurrence. Two years of weekly exceptions on one series is already a data
// quality problem, not a booking pattern.
const nextOccurrenceSearchLimit = 104

// IsValidOccurrence reports whether date is a real occurrence of the series:
// the weekday matches and the date is on or after the series' effective
// start. A series without an effective start is active from its creation, so
// every matching weekday qualifies. Comparison is by date key, never by
// instant.
func IsValidOccurrence(series booking.RecurringReservation, date calendar.DateKey) bool {
	if date.Weekday() != series.Weekday {
		return false
	}
	if series.StartsOn == nil {
		return true
	}
	return !date.Before(*series.StartsOn)
}

// Occupies reports whether the series actually holds the slot on date: the
// date must be a valid occurrence and must not be suppressed by an
// exception. An exception punches a hole in a single occurrence; the series
// remains active for every other date.
func Occupies(series booking.RecurringReservation, date calendar.DateKey) bool {
	if !series.Status.IsConflictRelevant() {
		return false
	}
	if !IsValidOccurrence(series, date) {
		return false
	}
	return !series.Exceptions.Contains(date)
}

// NextRealOccurrence returns the first date on or after from on which the
// series actually occupies its slot, skipping exception dates. The second
// return value is false when no unsuppressed occurrence exists within the
// search horizon.
func NextRealOccurrence(series booking.RecurringReservation, from calendar.DateKey) (calendar.DateKey, bool) {
	current := calendar.NextOccurrenceOnOrAfter(from, series.Weekday)
	if series.StartsOn != nil && current.Before(*series.StartsOn) {
		current = calendar.NextOccurrenceOnOrAfter(*series.StartsOn, series.Weekday)
	}
	for i := 0; i < nextOccurrenceSearchLimit; i++ {
		if Occupies(series, current) {
			return current, true
		}
		current = current.AddDays(7)
	}
	return calendar.DateKey{}, false
}

// IsMeaningfulException reports whether an exception date can ever match an
// occurrence of the series. A mismatched exception is tolerated by the
// engine (it simply never suppresses anything) but signals a data quality
// issue worth logging.
func IsMeaningfulException(series booking.RecurringReservation, date calendar.DateKey) bool {
	return IsValidOccurrence(series, date)
}
