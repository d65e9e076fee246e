package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/persistence"
)

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. Reads restrict themselves to conflict-relevant statuses in SQL so
// the engine never sees cancelled or transferred rows.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const conflictRelevantStatuses = "('confirmed', 'finished')"

// OneOffOn returns conflict-relevant one-off reservations for the resource
// on any of the given dates and the given shift.
func (r *ReservationRepository) OneOffOn(ctx context.Context, resourceID string, dates []calendar.DateKey, shift booking.Shift) ([]booking.OneOffReservation, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(dates))
	args := []any{resourceID, shift.Key()}
	for i, date := range dates {
		placeholders[i] = "?"
		args = append(args, date.String())
	}

	query := fmt.Sprintf(`
		SELECT id, resource_id, date, shift_key, status, member_id, member_name, created_at, updated_at
		FROM one_off_reservations
		WHERE resource_id = ? AND shift_key = ? AND status IN %s AND date IN (%s)
		ORDER BY date ASC, id ASC
	`, conflictRelevantStatuses, strings.Join(placeholders, ","))

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var reservations []booking.OneOffReservation
	for rows.Next() {
		reservation, err := scanOneOff(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return reservations, nil
}

// LastOneOffOnOrBefore returns the most recent conflict-relevant one-off for
// the resource on the given weekday and shift dated at or before reference.
func (r *ReservationRepository) LastOneOffOnOrBefore(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift, reference calendar.DateKey) (booking.OneOffReservation, error) {
	// SQLite strftime %w yields the weekday as 0 (Sunday) through 6, the
	// same numbering time.Weekday uses.
	query := fmt.Sprintf(`
		SELECT id, resource_id, date, shift_key, status, member_id, member_name, created_at, updated_at
		FROM one_off_reservations
		WHERE resource_id = ? AND shift_key = ? AND status IN %s
			AND date <= ? AND CAST(strftime('%%w', date) AS INTEGER) = ?
		ORDER BY date DESC
		LIMIT 1
	`, conflictRelevantStatuses)

	reservation, err := scanOneOff(r.helper.QueryRow(ctx, query, resourceID, shift.Key(), reference.String(), int(weekday)))
	if err != nil {
		return booking.OneOffReservation{}, r.mapper.MapError(err)
	}
	return reservation, nil
}

// RecurringFor returns active recurring reservations for the resource on the
// weekday and shift, exception sets attached.
func (r *ReservationRepository) RecurringFor(ctx context.Context, resourceID string, weekday time.Weekday, shift booking.Shift) ([]booking.RecurringReservation, error) {
	query := fmt.Sprintf(`
		SELECT id, resource_id, weekday, shift_key, starts_on, status, member_id, member_name, created_at, updated_at
		FROM recurring_reservations
		WHERE resource_id = ? AND weekday = ? AND shift_key = ? AND status IN %s
		ORDER BY created_at ASC, id ASC
	`, conflictRelevantStatuses)

	rows, err := r.helper.Query(ctx, query, resourceID, int(weekday), shift.Key())
	if err != nil {
		return nil, r.mapper.MapError(err)
	}

	var series []booking.RecurringReservation
	for rows.Next() {
		reservation, err := scanRecurring(rows)
		if err != nil {
			rows.Close()
			return nil, r.mapper.MapError(err)
		}
		series = append(series, reservation)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, r.mapper.MapError(err)
	}
	rows.Close()

	for i := range series {
		exceptions, err := r.loadExceptions(ctx, series[i].ID)
		if err != nil {
			return nil, err
		}
		series[i].Exceptions = exceptions
	}
	return series, nil
}

// CreateOneOff inserts a one-off reservation. The partial unique index on
// (resource, date, shift) over conflict-relevant statuses rejects a double
// booking with ErrDuplicate even under concurrent writers.
func (r *ReservationRepository) CreateOneOff(ctx context.Context, reservation booking.OneOffReservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO one_off_reservations (id, resource_id, date, shift_key, status, member_id, member_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		reservation.ID,
		reservation.ResourceID,
		reservation.Date.String(),
		reservation.Shift.Key(),
		string(reservation.Status),
		reservation.MemberID,
		reservation.MemberName,
		reservation.CreatedAt.UTC().Format(time.RFC3339),
		reservation.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// UpdateOneOffStatus transitions a one-off reservation's lifecycle state.
func (r *ReservationRepository) UpdateOneOffStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	result, err := r.helper.Exec(ctx,
		"UPDATE one_off_reservations SET status = ?, updated_at = ? WHERE id = ?",
		string(status), updatedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetOneOff retrieves a one-off reservation by ID regardless of status.
func (r *ReservationRepository) GetOneOff(ctx context.Context, id string) (booking.OneOffReservation, error) {
	query := `
		SELECT id, resource_id, date, shift_key, status, member_id, member_name, created_at, updated_at
		FROM one_off_reservations
		WHERE id = ?
	`
	reservation, err := scanOneOff(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return booking.OneOffReservation{}, r.mapper.MapError(err)
	}
	return reservation, nil
}

// CreateRecurring inserts a recurring reservation series.
func (r *ReservationRepository) CreateRecurring(ctx context.Context, reservation booking.RecurringReservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}

	var startsOn sql.NullString
	if reservation.StartsOn != nil {
		startsOn.String = reservation.StartsOn.String()
		startsOn.Valid = true
	}

	query := `
		INSERT INTO recurring_reservations (id, resource_id, weekday, shift_key, starts_on, status, member_id, member_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		reservation.ID,
		reservation.ResourceID,
		int(reservation.Weekday),
		reservation.Shift.Key(),
		startsOn,
		string(reservation.Status),
		reservation.MemberID,
		reservation.MemberName,
		reservation.CreatedAt.UTC().Format(time.RFC3339),
		reservation.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// UpdateRecurringStatus transitions a recurring series' lifecycle state.
func (r *ReservationRepository) UpdateRecurringStatus(ctx context.Context, id string, status booking.Status, updatedAt time.Time) error {
	result, err := r.helper.Exec(ctx,
		"UPDATE recurring_reservations SET status = ?, updated_at = ? WHERE id = ?",
		string(status), updatedAt.UTC().Format(time.RFC3339), id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetRecurring retrieves a recurring series by ID with its exception set.
func (r *ReservationRepository) GetRecurring(ctx context.Context, id string) (booking.RecurringReservation, error) {
	query := `
		SELECT id, resource_id, weekday, shift_key, starts_on, status, member_id, member_name, created_at, updated_at
		FROM recurring_reservations
		WHERE id = ?
	`
	series, err := scanRecurring(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		return booking.RecurringReservation{}, r.mapper.MapError(err)
	}

	exceptions, err := r.loadExceptions(ctx, id)
	if err != nil {
		return booking.RecurringReservation{}, err
	}
	series.Exceptions = exceptions
	return series, nil
}

// AddException suppresses a single occurrence of a recurring series.
func (r *ReservationRepository) AddException(ctx context.Context, recurringID string, date calendar.DateKey, createdAt time.Time) error {
	_, err := r.helper.Exec(ctx,
		"INSERT INTO recurring_exceptions (recurring_id, date, created_at) VALUES (?, ?, ?)",
		recurringID, date.String(), createdAt.UTC().Format(time.RFC3339))
	return r.mapper.MapError(err)
}

// RemoveException restores a previously suppressed occurrence.
func (r *ReservationRepository) RemoveException(ctx context.Context, recurringID string, date calendar.DateKey) error {
	result, err := r.helper.Exec(ctx,
		"DELETE FROM recurring_exceptions WHERE recurring_id = ? AND date = ?",
		recurringID, date.String())
	if err != nil {
		return r.mapper.MapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

func (r *ReservationRepository) loadExceptions(ctx context.Context, recurringID string) (booking.ExceptionSet, error) {
	rows, err := r.helper.Query(ctx,
		"SELECT date FROM recurring_exceptions WHERE recurring_id = ?", recurringID)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	set := make(booking.ExceptionSet)
	for rows.Next() {
		var dateStr string
		if err := rows.Scan(&dateStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		date, err := calendar.ParseDateKey(dateStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse exception date: %w", err)
		}
		set.Add(date)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return set, nil
}

func scanOneOff(row rowScanner) (booking.OneOffReservation, error) {
	var reservation booking.OneOffReservation
	var dateStr, shiftKey, status string
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&reservation.ID,
		&reservation.ResourceID,
		&dateStr,
		&shiftKey,
		&status,
		&reservation.MemberID,
		&reservation.MemberName,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return booking.OneOffReservation{}, err
	}

	if reservation.Date, err = calendar.ParseDateKey(dateStr); err != nil {
		return booking.OneOffReservation{}, fmt.Errorf("failed to parse date: %w", err)
	}
	if reservation.Shift, err = booking.ParseShiftKey(shiftKey); err != nil {
		return booking.OneOffReservation{}, fmt.Errorf("failed to parse shift: %w", err)
	}
	reservation.Status = booking.Status(status)

	if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return booking.OneOffReservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if reservation.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return booking.OneOffReservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return reservation, nil
}

func scanRecurring(row rowScanner) (booking.RecurringReservation, error) {
	var reservation booking.RecurringReservation
	var weekday int
	var shiftKey, status string
	var startsOn sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&reservation.ID,
		&reservation.ResourceID,
		&weekday,
		&shiftKey,
		&startsOn,
		&status,
		&reservation.MemberID,
		&reservation.MemberName,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return booking.RecurringReservation{}, err
	}

	reservation.Weekday = time.Weekday(weekday)
	if reservation.Shift, err = booking.ParseShiftKey(shiftKey); err != nil {
		return booking.RecurringReservation{}, fmt.Errorf("failed to parse shift: %w", err)
	}
	if startsOn.Valid {
		date, err := calendar.ParseDateKey(startsOn.String)
		if err != nil {
			return booking.RecurringReservation{}, fmt.Errorf("failed to parse starts_on: %w", err)
		}
		reservation.StartsOn = &date
	}
	reservation.Status = booking.Status(status)

	if reservation.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return booking.RecurringReservation{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if reservation.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return booking.RecurringReservation{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return reservation, nil
}
