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

// Default horizon and cap for the next-available-dates query, matching the
// portal's booking window of roughly three months ahead.
const (
	DefaultHorizonCount = 12
	DefaultResultCap    = 6
)

// ResourceCatalog exposes the resource lookups the availability queries need.
type ResourceCatalog interface {
	GetResource(ctx context.Context, id string) (booking.Resource, error)
}

// ReservationSource captures the read seams the engine pulls reservation
// rows from.
type ReservationSource interface {
	OneOffOn(ctx context.Context, resourceID string, dates []calendar.DateKey, shift booking.Shift) ([]booking.OneOffReservation, error)
	LastOneOffOnOrBefore(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift, reference calendar.DateKey) (booking.OneOffReservation, error)
	RecurringFor(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift) ([]booking.RecurringReservation, error)
}

// BlackoutSource captures the read seam for admin blackout windows.
type BlackoutSource interface {
	BlackoutsOn(ctx context.Context, resourceID string, dates []calendar.DateKey) ([]booking.Blackout, error)
}

// AvailabilityService answers the two portal availability queries: next free
// dates for a weekday/shift, and the occupancy grid across resources. It is
// stateless between calls; every query reads, computes and returns.
type AvailabilityService struct {
	resources    ResourceCatalog
	reservations ReservationSource
	blackouts    BlackoutSource
	cal          *calendar.Calendar
	horizonCount int
	resultCap    int
	logger       *slog.Logger
}

// NewAvailabilityService wires dependencies for availability queries.
// Non-positive horizon or cap values fall back to the portal defaults.
func NewAvailabilityService(resources ResourceCatalog, reservations ReservationSource, blackouts BlackoutSource, cal *calendar.Calendar, horizonCount, resultCap int, logger *slog.Logger) *AvailabilityService {
	if cal == nil {
		cal = calendar.New(nil, nil)
	}
	if horizonCount <= 0 {
		horizonCount = DefaultHorizonCount
	}
	if resultCap <= 0 {
		resultCap = DefaultResultCap
	}
	return &AvailabilityService{
		resources:    resources,
		reservations: reservations,
		blackouts:    blackouts,
		cal:          cal,
		horizonCount: horizonCount,
		resultCap:    resultCap,
		logger:       defaultLogger(logger),
	}
}

// NextAvailableDates enumerates the next horizon occurrences of the weekday
// starting today, filters out dates occupied by one-off reservations or
// unsuppressed recurring occurrences, and returns up to the result cap of
// survivors in ascending order together with the most recent past one-off
// conflict for the same weekday/shift.
//
// Blacked-out dates are intentionally not filtered here: the portal shows
// them as bookable and warns separately, and the grid query is where the
// blackout state is authoritative.
func (s *AvailabilityService) NextAvailableDates(ctx context.Context, params NextAvailableDatesParams) (NextAvailableDatesResult, error) {
	if s == nil {
		return NextAvailableDatesResult{}, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "next_available_dates", "resource_id", params.ResourceID)

	vErr := &ValidationError{}
	if params.ResourceID == "" {
		vErr.add("resource_id", "resource id is required")
	}
	weekday, err := calendar.ParseWeekday(params.Weekday)
	if err != nil {
		vErr.add("weekday", "weekday is invalid")
	}
	if vErr.HasErrors() {
		return NextAvailableDatesResult{}, vErr
	}

	resource, err := s.resources.GetResource(ctx, params.ResourceID)
	if err != nil {
		return NextAvailableDatesResult{}, mapRepoError(err)
	}

	shift, err := booking.ParseShift(resource.Kind, params.Shift)
	if err != nil {
		vErr.add("shift", "shift is invalid for this resource")
		return NextAvailableDatesResult{}, vErr
	}

	today := s.cal.Today()
	candidates := calendar.EnumerateWeeklyOccurrences(today, weekday, s.horizonCount)

	rows, err := s.loadBookingRows(ctx, resource.ID, candidates, weekday, shift)
	if err != nil {
		return NextAvailableDatesResult{}, err
	}
	s.reportInertExceptions(logger, rows.Recurring)

	result := NextAvailableDatesResult{}
	for _, candidate := range candidates {
		if len(result.AvailableDates) >= s.resultCap {
			break
		}
		if occupancy.ClassifyBookings(candidate, shift, rows).State == occupancy.StateFree {
			result.AvailableDates = append(result.AvailableDates, candidate)
		}
	}

	last, err := s.reservations.LastOneOffOnOrBefore(ctx, resource.ID, weekday, shift, today)
	switch {
	case err == nil:
		date := last.Date
		result.LastConflictDate = &date
	case errors.Is(err, persistence.ErrNotFound):
		// No prior booking on this slot; the window has no conflict to explain.
	default:
		return NextAvailableDatesResult{}, mapRepoError(err)
	}

	return result, nil
}

// OccupancyGrid classifies every (resource, shift) pair in the request for a
// single date, or for the next occurrence of a weekday when no date is
// given. Any repository failure fails the whole query; a partial grid could
// invite a booking into a cell that was never evaluated.
func (s *AvailabilityService) OccupancyGrid(ctx context.Context, params OccupancyGridParams) (OccupancyGrid, error) {
	if s == nil {
		return nil, fmt.Errorf("AvailabilityService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "availability", "occupancy_grid")

	vErr := &ValidationError{}
	if len(params.ResourceIDs) == 0 {
		vErr.add("resources", "at least one resource is required")
	}
	if len(params.Shifts) == 0 {
		vErr.add("shifts", "at least one shift is required")
	}

	var gridDate calendar.DateKey
	switch {
	case params.Date != "":
		date, err := calendar.ParseDateKey(params.Date)
		if err != nil {
			vErr.add("date", "date is invalid")
		} else {
			gridDate = date
		}
	case params.Weekday != "":
		weekday, err := calendar.ParseWeekday(params.Weekday)
		if err != nil {
			vErr.add("weekday", "weekday is invalid")
		} else {
			gridDate = calendar.NextOccurrenceOnOrAfter(s.cal.Today(), weekday)
		}
	default:
		vErr.add("date", "a date or a weekday is required")
	}

	if vErr.HasErrors() {
		return nil, vErr
	}

	grid := make(OccupancyGrid, len(params.ResourceIDs))
	for _, resourceID := range params.ResourceIDs {
		resource, err := s.resources.GetResource(ctx, resourceID)
		if err != nil {
			return nil, mapRepoError(err)
		}

		row := make(map[string]GridCell)
		for _, shiftValue := range params.Shifts {
			shift, err := booking.ParseShift(resource.Kind, shiftValue)
			if err != nil {
				// Shift outside this resource's domain; the matrix stays
				// sparse rather than failing a mixed-kind query.
				continue
			}

			rows, err := s.loadOccupancyRows(ctx, resource.ID, gridDate, shift)
			if err != nil {
				return nil, err
			}
			s.reportInertExceptions(logger, rows.Recurring)

			row[shift.Key()] = s.buildCell(gridDate, occupancy.Classify(gridDate, shift, rows))
		}
		grid[resource.ID] = row
	}

	return grid, nil
}

func (s *AvailabilityService) loadBookingRows(ctx context.Context, resourceID string, dates []calendar.DateKey, weekday time.Weekday, shift booking.Shift) (occupancy.Rows, error) {
	oneOffs, err := s.reservations.OneOffOn(ctx, resourceID, dates, shift)
	if err != nil {
		return occupancy.Rows{}, mapRepoError(err)
	}
	series, err := s.reservations.RecurringFor(ctx, resourceID, weekday, shift)
	if err != nil {
		return occupancy.Rows{}, mapRepoError(err)
	}
	return occupancy.Rows{OneOffs: oneOffs, Recurring: series}, nil
}

func (s *AvailabilityService) loadOccupancyRows(ctx context.Context, resourceID string, date calendar.DateKey, shift booking.Shift) (occupancy.Rows, error) {
	rows, err := s.loadBookingRows(ctx, resourceID, []calendar.DateKey{date}, date.Weekday(), shift)
	if err != nil {
		return occupancy.Rows{}, err
	}
	blackouts, err := s.blackouts.BlackoutsOn(ctx, resourceID, []calendar.DateKey{date})
	if err != nil {
		return occupancy.Rows{}, mapRepoError(err)
	}
	rows.Blackouts = blackouts
	return rows, nil
}

func (s *AvailabilityService) buildCell(date calendar.DateKey, occ occupancy.Occupancy) GridCell {
	cell := GridCell{Date: date, State: occ.State}
	switch occ.State {
	case occupancy.StateOneOff:
		cell.OneOff = &OneOffCellInfo{
			ReservationID: occ.OneOff.ID,
			MemberName:    occ.OneOff.MemberName,
		}
	case occupancy.StateRecurring:
		info := &RecurringCellInfo{
			ReservationID: occ.Recurring.ID,
			MemberName:    occ.Recurring.MemberName,
			Exceptions:    occ.Recurring.Exceptions.Dates(),
		}
		if occ.Recurring.StartsOn != nil {
			start := *occ.Recurring.StartsOn
			info.EffectiveStart = &start
		}
		if next, ok := recurrence.NextRealOccurrence(*occ.Recurring, s.cal.Today()); ok {
			info.NextOccurrence = &next
		}
		cell.Recurring = info
	case occupancy.StateBlackedOut:
		cell.Blackout = &BlackoutCellInfo{
			BlackoutID: occ.Blackout.ID,
			Window:     occ.Blackout.Window,
			Reason:     occ.Blackout.Reason,
		}
	}
	return cell
}

// reportInertExceptions logs exception dates that can never match an
// occurrence of their series. The engine tolerates them (they simply never
// suppress anything) but they indicate a data quality problem upstream.
func (s *AvailabilityService) reportInertExceptions(logger *slog.Logger, series []booking.RecurringReservation) {
	for _, reservation := range series {
		for _, date := range reservation.Exceptions.Dates() {
			if !recurrence.IsMeaningfulException(reservation, date) {
				logger.Warn("exception date can never match its series",
					"recurring_id", reservation.ID,
					"exception_date", date.String(),
					"series_weekday", reservation.Weekday.String(),
				)
			}
		}
	}
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrUnavailable) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrSlotUnavailable
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		// The referenced resource vanished between the catalog check and the
		// write.
		return ErrNotFound
	}
	return err
}
