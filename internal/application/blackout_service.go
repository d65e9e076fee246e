package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/club-reservations/internal/booking"
	"github.com/example/club-reservations/internal/calendar"
)

// BlackoutStore is the persistence surface for administering blackout
// windows.
type BlackoutStore interface {
	BlackoutSource

	CreateBlackout(ctx context.Context, blackout booking.Blackout) error
	DeleteBlackout(ctx context.Context, id string) error
}

// BlackoutService owns the admin blackout write path. Blackouts override
// reservations in the grid but never delete them, so this service touches no
// reservation rows.
type BlackoutService struct {
	store       BlackoutStore
	resources   ResourceCatalog
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBlackoutService wires dependencies for blackout administration.
func NewBlackoutService(store BlackoutStore, resources ResourceCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BlackoutService {
	if now == nil {
		now = time.Now
	}
	return &BlackoutService{
		store:       store,
		resources:   resources,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateBlackout declares an unavailability window on a resource's date.
// Overlapping windows are allowed; a slot is blocked when any window
// intersects it.
func (s *BlackoutService) CreateBlackout(ctx context.Context, params CreateBlackoutParams) (booking.Blackout, error) {
	if s == nil {
		return booking.Blackout{}, fmt.Errorf("BlackoutService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "blackout", "create_blackout", "resource_id", params.ResourceID)

	vErr := &ValidationError{}
	if params.ResourceID == "" {
		vErr.add("resource_id", "resource id is required")
	}
	date, err := calendar.ParseDateKey(params.Date)
	if err != nil {
		vErr.add("date", "date is invalid")
	}
	if params.StartMinute < 0 || params.StartMinute >= 24*60 {
		vErr.add("start_minute", "start minute is out of range")
	}
	if params.EndMinute <= params.StartMinute || params.EndMinute > 24*60 {
		vErr.add("end_minute", "end minute must be after start minute and within the day")
	}
	if vErr.HasErrors() {
		return booking.Blackout{}, vErr
	}

	if _, err := s.resources.GetResource(ctx, params.ResourceID); err != nil {
		return booking.Blackout{}, mapRepoError(err)
	}

	blackout := booking.Blackout{
		ID:         s.idGenerator(),
		ResourceID: params.ResourceID,
		Date:       date,
		Window:     booking.MinuteRange{Start: params.StartMinute, End: params.EndMinute},
		Reason:     params.Reason,
		CreatedAt:  s.now(),
	}
	if err := s.store.CreateBlackout(ctx, blackout); err != nil {
		return booking.Blackout{}, mapRepoError(err)
	}

	logger.Info("blackout created", "blackout_id", blackout.ID, "date", date.String())
	return blackout, nil
}

// DeleteBlackout lifts a window. Reservations underneath it, if any, become
// visible in the grid again.
func (s *BlackoutService) DeleteBlackout(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("BlackoutService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "blackout", "delete_blackout", "blackout_id", id)

	if id == "" {
		vErr := &ValidationError{}
		vErr.add("blackout_id", "blackout id is required")
		return vErr
	}

	if err := s.store.DeleteBlackout(ctx, id); err != nil {
		return mapRepoError(err)
	}
	logger.Info("blackout deleted")
	return nil
}
