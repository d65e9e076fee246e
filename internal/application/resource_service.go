package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/club-reservations/internal/booking"
)

// ResourceStore is the persistence surface for the resource catalog.
type ResourceStore interface {
	CreateResource(ctx context.Context, resource booking.Resource) error
	GetResource(ctx context.Context, id string) (booking.Resource, error)
	ListResources(ctx context.Context) ([]booking.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

// ResourceService administers the bookable-unit catalog.
type ResourceService struct {
	store       ResourceStore
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResourceService wires dependencies for catalog administration.
func NewResourceService(store ResourceStore, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResourceService {
	if now == nil {
		now = time.Now
	}
	return &ResourceService{
		store:       store,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// CreateResource registers a new court or barbecue pit.
func (s *ResourceService) CreateResource(ctx context.Context, input ResourceInput) (booking.Resource, error) {
	if s == nil {
		return booking.Resource{}, fmt.Errorf("ResourceService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "resource", "create_resource")

	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if input.Number <= 0 {
		vErr.add("number", "number must be positive")
	}
	kind := booking.ResourceKind(input.Kind)
	if kind != booking.ResourceCourt && kind != booking.ResourceBarbecuePit {
		vErr.add("kind", "kind must be court or barbecue_pit")
	}
	if vErr.HasErrors() {
		return booking.Resource{}, vErr
	}

	createdAt := s.now()
	resource := booking.Resource{
		ID:        s.idGenerator(),
		Name:      input.Name,
		Number:    input.Number,
		Kind:      kind,
		Sports:    input.Sports,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := s.store.CreateResource(ctx, resource); err != nil {
		return booking.Resource{}, mapRepoError(err)
	}

	logger.Info("resource created", "resource_id", resource.ID, "kind", string(kind))
	return resource, nil
}

// GetResource returns one catalog entry.
func (s *ResourceService) GetResource(ctx context.Context, id string) (booking.Resource, error) {
	if s == nil {
		return booking.Resource{}, fmt.Errorf("ResourceService is nil")
	}
	if id == "" {
		vErr := &ValidationError{}
		vErr.add("resource_id", "resource id is required")
		return booking.Resource{}, vErr
	}
	resource, err := s.store.GetResource(ctx, id)
	if err != nil {
		return booking.Resource{}, mapRepoError(err)
	}
	return resource, nil
}

// ListResources returns the whole catalog.
func (s *ResourceService) ListResources(ctx context.Context) ([]booking.Resource, error) {
	if s == nil {
		return nil, fmt.Errorf("ResourceService is nil")
	}
	resources, err := s.store.ListResources(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return resources, nil
}

// DeleteResource removes a catalog entry. The store drops every reservation
// and blackout referencing the resource in the same transaction, so a
// retired court disappears from the grid along with its bookings.
func (s *ResourceService) DeleteResource(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ResourceService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "resource", "delete_resource", "resource_id", id)

	if id == "" {
		vErr := &ValidationError{}
		vErr.add("resource_id", "resource id is required")
		return vErr
	}

	if err := s.store.DeleteResource(ctx, id); err != nil {
		return mapRepoError(err)
	}
	logger.Info("resource deleted")
	return nil
}
