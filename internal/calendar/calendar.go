// Package calendar provides civil-calendar date arithmetic for the booking
// portal. All availability decisions compare dates through DateKey values,
// never through raw instants, so that timezone conversions cannot shift a
// reservation onto a neighbouring day.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is the civil timezone the club operates in.
const DefaultTimezone = "America/Sao_Paulo"

var saoPaulo = time.FixedZone("-03", -3*60*60)

// ErrInvalidWeekday indicates a weekday code outside the seven known values.
var ErrInvalidWeekday = errors.New("calendar: invalid weekday")

// ErrInvalidDateKey indicates a date string that is not in YYYY-MM-DD form.
var ErrInvalidDateKey = errors.New("calendar: invalid date key")

// DateKey identifies a civil calendar day as a plain (year, month, day)
// triple. The zero value is not a valid date.
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDateKey builds a DateKey, normalizing out-of-range components the same
// way time.Date does (e.g. January 32 becomes February 1).
func NewDateKey(year int, month time.Month, day int) DateKey {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// KeyOf extracts the DateKey of an instant as observed in the instant's own
// location. Callers that need the club's civil day must convert first; the
// Calendar type is the only place in the engine that does so.
func KeyOf(t time.Time) DateKey {
	return DateKey{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDateKey parses the canonical "YYYY-MM-DD" form.
func ParseDateKey(value string) (DateKey, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return DateKey{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, value)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return DateKey{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, value)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return DateKey{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, value)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil || day < 1 || day > 31 {
		return DateKey{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, value)
	}
	key := DateKey{Year: year, Month: time.Month(month), Day: day}
	if NewDateKey(year, time.Month(month), day) != key {
		return DateKey{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, value)
	}
	return key, nil
}

// String renders the canonical "YYYY-MM-DD" form used for equality and
// set-membership checks throughout the engine.
func (k DateKey) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, int(k.Month), k.Day)
}

// IsZero reports whether the key is the zero value.
func (k DateKey) IsZero() bool {
	return k == DateKey{}
}

// Weekday returns the civil weekday of the date.
func (k DateKey) Weekday() time.Weekday {
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// AddDays returns the key n calendar days later (or earlier for negative n).
func (k DateKey) AddDays(n int) DateKey {
	return NewDateKey(k.Year, k.Month, k.Day+n)
}

// Compare orders two keys chronologically: -1, 0 or +1.
func (k DateKey) Compare(other DateKey) int {
	switch {
	case k.Year != other.Year:
		return sign(k.Year - other.Year)
	case k.Month != other.Month:
		return sign(int(k.Month) - int(other.Month))
	default:
		return sign(k.Day - other.Day)
	}
}

// Before reports whether k is strictly earlier than other.
func (k DateKey) Before(other DateKey) bool {
	return k.Compare(other) < 0
}

// After reports whether k is strictly later than other.
func (k DateKey) After(other DateKey) bool {
	return k.Compare(other) > 0
}

// StartOfDay returns the local-midnight instant of the date in loc.
func (k DateKey) StartOfDay(loc *time.Location) time.Time {
	if loc == nil {
		loc = saoPaulo
	}
	return time.Date(k.Year, k.Month, k.Day, 0, 0, 0, 0, loc)
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// ParseWeekday parses a weekday code. Both lowercase English names and the
// numeric codes 0 (Sunday) through 6 (Saturday) are accepted, matching the
// values the frontend submits.
func ParseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "sunday", "0":
		return time.Sunday, nil
	case "monday", "1":
		return time.Monday, nil
	case "tuesday", "2":
		return time.Tuesday, nil
	case "wednesday", "3":
		return time.Wednesday, nil
	case "thursday", "4":
		return time.Thursday, nil
	case "friday", "5":
		return time.Friday, nil
	case "saturday", "6":
		return time.Saturday, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, value)
	}
}

// Calendar resolves "today" in the club's civil timezone and enumerates
// future weekday occurrences. The clock is injected so queries within one
// logical instant are reproducible.
type Calendar struct {
	location *time.Location
	now      func() time.Time
}

// New constructs a Calendar for the provided location and clock. A nil
// location falls back to America/Sao_Paulo; a nil clock falls back to
// time.Now.
func New(loc *time.Location, now func() time.Time) *Calendar {
	if loc == nil {
		loc = saoPaulo
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{location: loc, now: now}
}

// Location exposes the calendar's civil timezone.
func (c *Calendar) Location() *time.Location {
	if c == nil || c.location == nil {
		return saoPaulo
	}
	return c.location
}

// Today returns the current civil date in the calendar's timezone.
func (c *Calendar) Today() DateKey {
	now := time.Now
	if c != nil && c.now != nil {
		now = c.now
	}
	return KeyOf(now().In(c.Location()))
}

// NextOccurrenceOnOrAfter returns the smallest date >= from whose weekday
// equals weekday. When from itself matches it is returned unchanged.
func NextOccurrenceOnOrAfter(from DateKey, weekday time.Weekday) DateKey {
	delta := (int(weekday) - int(from.Weekday()) + 7) % 7
	return from.AddDays(delta)
}

// EnumerateWeeklyOccurrences returns exactly count dates, strictly 7 days
// apart, starting at NextOccurrenceOnOrAfter(from, weekday). Count values
// below one yield an empty slice.
func EnumerateWeeklyOccurrences(from DateKey, weekday time.Weekday, count int) []DateKey {
	if count <= 0 {
		return nil
	}
	occurrences := make([]DateKey, 0, count)
	current := NextOccurrenceOnOrAfter(from, weekday)
	for i := 0; i < count; i++ {
		occurrences = append(occurrences, current)
		current = current.AddDays(7)
	}
	return occurrences
}
