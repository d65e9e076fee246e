package booking

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ShiftKind distinguishes the two slot domains the club rents out.
type ShiftKind int

const (
	// ShiftKindUnspecified indicates the shift has not been set.
	ShiftKindUnspecified ShiftKind = iota
	// ShiftKindCoarse is the barbecue-pit domain: a whole day or night period.
	ShiftKindCoarse
	// ShiftKindHourly is the court domain: a specific one-hour slot.
	ShiftKindHourly
)

// CoarsePeriod identifies a barbecue-pit rental period within a date.
type CoarsePeriod string

const (
	// PeriodDay covers the daytime rental window.
	PeriodDay CoarsePeriod = "day"
	// PeriodNight covers the evening rental window.
	PeriodNight CoarsePeriod = "night"
)

// Local-minute boundaries of the coarse periods and hourly slots. Blackout
// windows intersect shifts through these ranges.
const (
	dayPeriodStartMinute   = 8 * 60
	dayPeriodEndMinute     = 17 * 60
	nightPeriodStartMinute = 17 * 60
	nightPeriodEndMinute   = 23 * 60
)

// ErrInvalidShift indicates a shift value outside the resource's domain.
var ErrInvalidShift = errors.New("booking: invalid shift")

// Shift is the opaque slot identifier within a date. It is a tagged variant:
// coarse day/night for barbecue pits, a specific hour for courts. The engine
// compares shifts only through Key.
type Shift struct {
	Kind   ShiftKind
	Period CoarsePeriod
	Hour   int
}

// CoarseShift builds a barbecue-pit shift.
func CoarseShift(period CoarsePeriod) Shift {
	return Shift{Kind: ShiftKindCoarse, Period: period}
}

// HourlyShift builds a court shift for the slot starting at hour o'clock.
func HourlyShift(hour int) Shift {
	return Shift{Kind: ShiftKindHourly, Hour: hour}
}

// ParseShift parses the wire form of a shift for the given resource kind:
// "day"/"night" for barbecue pits, "HH:00" (or a bare hour) for courts.
func ParseShift(kind ResourceKind, value string) (Shift, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch kind {
	case ResourceBarbecuePit:
		switch CoarsePeriod(value) {
		case PeriodDay:
			return CoarseShift(PeriodDay), nil
		case PeriodNight:
			return CoarseShift(PeriodNight), nil
		}
		return Shift{}, fmt.Errorf("%w: %q", ErrInvalidShift, value)
	case ResourceCourt:
		hourPart := strings.TrimSuffix(value, ":00")
		hour, err := strconv.Atoi(hourPart)
		if err != nil || hour < 0 || hour > 23 {
			return Shift{}, fmt.Errorf("%w: %q", ErrInvalidShift, value)
		}
		return HourlyShift(hour), nil
	default:
		return Shift{}, fmt.Errorf("%w: unknown resource kind %q", ErrInvalidShift, kind)
	}
}

// ParseShiftKey parses a canonical shift key without knowing the resource
// kind, recovering the tagged variant from the key's shape.
func ParseShiftKey(key string) (Shift, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	switch CoarsePeriod(key) {
	case PeriodDay:
		return CoarseShift(PeriodDay), nil
	case PeriodNight:
		return CoarseShift(PeriodNight), nil
	}
	if hour, ok := strings.CutSuffix(key, ":00"); ok {
		if h, err := strconv.Atoi(hour); err == nil && h >= 0 && h <= 23 {
			return HourlyShift(h), nil
		}
	}
	return Shift{}, fmt.Errorf("%w: %q", ErrInvalidShift, key)
}

// IsZero reports whether the shift has not been set.
func (s Shift) IsZero() bool {
	return s.Kind == ShiftKindUnspecified
}

// Key returns the canonical comparison key: "day", "night" or "HH:00".
func (s Shift) Key() string {
	switch s.Kind {
	case ShiftKindCoarse:
		return string(s.Period)
	case ShiftKindHourly:
		return fmt.Sprintf("%02d:00", s.Hour)
	default:
		return ""
	}
}

// MinuteRange is a half-open [Start, End) range of minutes since local
// midnight.
type MinuteRange struct {
	Start int
	End   int
}

// Intersects reports whether two half-open minute ranges overlap.
func (r MinuteRange) Intersects(other MinuteRange) bool {
	return r.Start < other.End && other.Start < r.End
}

// TimeRange returns the local-minute window the shift occupies within its
// date. Coarse periods use the club's published rental windows; hourly slots
// cover exactly one hour.
func (s Shift) TimeRange() MinuteRange {
	switch s.Kind {
	case ShiftKindCoarse:
		if s.Period == PeriodNight {
			return MinuteRange{Start: nightPeriodStartMinute, End: nightPeriodEndMinute}
		}
		return MinuteRange{Start: dayPeriodStartMinute, End: dayPeriodEndMinute}
	case ShiftKindHourly:
		return MinuteRange{Start: s.Hour * 60, End: (s.Hour + 1) * 60}
	default:
		return MinuteRange{}
	}
}
