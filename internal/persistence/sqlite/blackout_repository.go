package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
	"github.com/example/club-reservations/internal/persistence"
)

// BlackoutRepository implements persistence.BlackoutRepository using SQLite.
type BlackoutRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewBlackoutRepository creates a new SQLite blackout repository.
func NewBlackoutRepository(pool *ConnectionPool) *BlackoutRepository {
	return &BlackoutRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// BlackoutsOn returns blackout windows for the resource on any of the given
// dates.
func (r *BlackoutRepository) BlackoutsOn(ctx context.Context, resourceID string, dates []calendar.DateKey) ([]booking.Blackout, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(dates))
	args := []any{resourceID}
	for i, date := range dates {
		placeholders[i] = "?"
		args = append(args, date.String())
	}

	query := fmt.Sprintf(`
		SELECT id, resource_id, date, start_minute, end_minute, reason, created_at
		FROM blackouts
		WHERE resource_id = ? AND date IN (%s)
		ORDER BY date ASC, start_minute ASC, id ASC
	`, strings.Join(placeholders, ","))

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var blackouts []booking.Blackout
	for rows.Next() {
		var blackout booking.Blackout
		var dateStr, createdAtStr string

		err := rows.Scan(
			&blackout.ID,
			&blackout.ResourceID,
			&dateStr,
			&blackout.Window.Start,
			&blackout.Window.End,
			&blackout.Reason,
			&createdAtStr,
		)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}

		if blackout.Date, err = calendar.ParseDateKey(dateStr); err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if blackout.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}
		blackouts = append(blackouts, blackout)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return blackouts, nil
}

// CreateBlackout inserts a blackout window.
func (r *BlackoutRepository) CreateBlackout(ctx context.Context, blackout booking.Blackout) error {
	if blackout.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO blackouts (id, resource_id, date, start_minute, end_minute, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		blackout.ID,
		blackout.ResourceID,
		blackout.Date.String(),
		blackout.Window.Start,
		blackout.Window.End,
		blackout.Reason,
		blackout.CreatedAt.UTC().Format(time.RFC3339),
	)
	return r.mapper.MapError(err)
}

// DeleteBlackout removes a blackout window by ID.
func (r *BlackoutRepository) DeleteBlackout(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, "DELETE FROM blackouts WHERE id = ?", id)
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
