package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/club-reservations/internal/booking"
)

func newResourceFixture(store *resourceStoreStub) (*ResourceService, *resourceStoreStub) {
	if store == nil {
		store = &resourceStoreStub{}
	}
	service := NewResourceService(store, sequentialIDs("rsc"), testClock, nil)
	return service, store
}

func TestCreateResource(t *testing.T) {
	t.Parallel()

	service, store := newResourceFixture(nil)

	resource, err := service.CreateResource(context.Background(), ResourceInput{
		Name:   "Quadra Central",
		Number: 1,
		Kind:   "court",
		Sports: []string{"tennis", "padel"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.created == nil {
		t.Fatal("expected resource to be persisted")
	}
	if resource.ID != "rsc-1" {
		t.Fatalf("expected generated id, got %q", resource.ID)
	}
	if resource.Kind != booking.ResourceCourt {
		t.Fatalf("expected court kind, got %q", resource.Kind)
	}
}

func TestCreateResourceValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input ResourceInput
		field string
	}{
		{name: "missing name", input: ResourceInput{Number: 1, Kind: "court"}, field: "name"},
		{name: "bad number", input: ResourceInput{Name: "Quadra", Number: 0, Kind: "court"}, field: "number"},
		{name: "bad kind", input: ResourceInput{Name: "Quadra", Number: 1, Kind: "piscina"}, field: "kind"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			service, _ := newResourceFixture(nil)
			_, err := service.CreateResource(context.Background(), tc.input)

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

func TestGetResourceMapsNotFound(t *testing.T) {
	t.Parallel()

	store := &resourceStoreStub{resourceCatalogStub: resourceCatalogStub{
		resources: map[string]booking.Resource{},
	}}
	service, _ := newResourceFixture(store)

	if _, err := service.GetResource(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListResources(t *testing.T) {
	t.Parallel()

	store := &resourceStoreStub{resourcesList: []booking.Resource{
		courtResource("court-1"),
		pitResource("pit-1"),
	}}
	service, _ := newResourceFixture(store)

	resources, err := service.ListResources(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
}

func TestDeleteResource(t *testing.T) {
	t.Parallel()

	service, store := newResourceFixture(nil)

	if err := service.DeleteResource(context.Background(), "court-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.deletedID != "court-1" {
		t.Fatalf("expected deletion of court-1, got %q", store.deletedID)
	}
}
