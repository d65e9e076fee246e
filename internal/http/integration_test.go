package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/club-reservations/internal/testfixtures"
)

// newPortalFixture wires the real services over the in-memory store so a
// request travels the same path it would in production, minus the database.
func newPortalFixture(t *testing.T) (http.Handler, *testfixtures.MemoryStore) {
	t.Helper()

	store := testfixtures.NewMemoryStore()
	factory := testfixtures.NewServiceFactory(
		testfixtures.WithClock(testfixtures.NewClock(testfixtures.ReferenceTime())),
	)

	availability := factory.NewAvailabilityService(testfixtures.AvailabilityServiceDeps{
		Resources:    store,
		Reservations: store,
		Blackouts:    store,
	})
	reservations := factory.NewReservationService(testfixtures.ReservationServiceDeps{
		Store:     store,
		Resources: store,
		Blackouts: store,
	})
	blackouts := factory.NewBlackoutService(testfixtures.BlackoutServiceDeps{
		Store:     store,
		Resources: store,
	})
	resources := factory.NewResourceService(testfixtures.ResourceServiceDeps{
		Store: store,
	})

	handler := NewRouter(RouterConfig{
		Availability: NewAvailabilityHandler(availability, nil),
		Reservations: NewReservationHandler(reservations, nil),
		Blackouts:    NewBlackoutHandler(blackouts, nil),
		Resources:    NewResourceHandler(resources, nil),
	})
	return handler, store
}

func serve(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

// The reference clock reads Friday 2024-03-01, so Mondays in the horizon run
// 2024-03-04, 2024-03-11 and onward.
func TestBookingFlowEndToEnd(t *testing.T) {
	t.Parallel()

	handler, store := newPortalFixture(t)
	ctx := context.Background()
	if err := store.CreateResource(ctx, testfixtures.NewResourceFixture(testfixtures.WithResourceID("court-1"))); err != nil {
		t.Fatalf("failed to seed resource: %v", err)
	}

	// A standing Monday 19:00 series with an exception on 2024-03-11.
	recorder := serve(t, handler, http.MethodPost, "/reservations/recurring",
		`{"resource_id":"court-1","weekday":"monday","shift":"19:00","member_id":"m-1","member_name":"Ana"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 for recurring create, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var created struct {
		ID string `json:"id"`
	}
	decodeBody(t, recorder, &created)

	recorder = serve(t, handler, http.MethodPost, "/reservations/recurring/"+created.ID+"/exceptions", `{"date":"2024-03-11"}`)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for exception add, got %d: %s", recorder.Code, recorder.Body.String())
	}

	// Only the exception hole survives the horizon scan.
	recorder = serve(t, handler, http.MethodGet, "/resources/court-1/availability?weekday=monday&shift=19:00", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for availability, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var availability struct {
		LastConflictDate *string  `json:"last_conflict_date"`
		AvailableDates   []string `json:"available_dates"`
	}
	decodeBody(t, recorder, &availability)
	if len(availability.AvailableDates) != 1 || availability.AvailableDates[0] != "2024-03-11" {
		t.Fatalf("expected only the exception date, got %v", availability.AvailableDates)
	}
	if availability.LastConflictDate != nil {
		t.Fatalf("expected no past one-off conflict, got %v", *availability.LastConflictDate)
	}

	// Booking the covered Monday is refused, the hole is bookable.
	recorder = serve(t, handler, http.MethodPost, "/reservations",
		`{"resource_id":"court-1","date":"2024-03-04","shift":"19:00","member_id":"m-2"}`)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("expected 409 for covered date, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = serve(t, handler, http.MethodPost, "/reservations",
		`{"resource_id":"court-1","date":"2024-03-11","shift":"19:00","member_id":"m-2","member_name":"Bia"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 for exception date, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var oneOff struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	decodeBody(t, recorder, &oneOff)
	if oneOff.Status != "confirmed" {
		t.Fatalf("expected confirmed reservation, got %+v", oneOff)
	}

	// The hole is now taken, so no Monday is free within the horizon.
	recorder = serve(t, handler, http.MethodGet, "/resources/court-1/availability?weekday=monday&shift=19:00", "")
	decodeBody(t, recorder, &availability)
	if len(availability.AvailableDates) != 0 {
		t.Fatalf("expected no available dates, got %v", availability.AvailableDates)
	}

	// Cancelling the one-off reopens it.
	recorder = serve(t, handler, http.MethodDelete, "/reservations/"+oneOff.ID, "")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for cancellation, got %d", recorder.Code)
	}

	recorder = serve(t, handler, http.MethodGet, "/resources/court-1/availability?weekday=monday&shift=19:00", "")
	decodeBody(t, recorder, &availability)
	if len(availability.AvailableDates) != 1 || availability.AvailableDates[0] != "2024-03-11" {
		t.Fatalf("expected the date to reopen, got %v", availability.AvailableDates)
	}
}

func TestResourceDeletionEndToEnd(t *testing.T) {
	t.Parallel()

	handler, store := newPortalFixture(t)
	ctx := context.Background()
	if err := store.CreateResource(ctx, testfixtures.NewResourceFixture(testfixtures.WithResourceID("court-1"))); err != nil {
		t.Fatalf("failed to seed resource: %v", err)
	}

	recorder := serve(t, handler, http.MethodPost, "/reservations",
		`{"resource_id":"court-1","date":"2024-03-04","shift":"19:00","member_id":"m-1"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	// Retiring the court takes its bookings with it instead of failing.
	recorder = serve(t, handler, http.MethodDelete, "/resources/court-1", "")
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for delete, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = serve(t, handler, http.MethodGet, "/resources/court-1", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after deletion, got %d", recorder.Code)
	}
}

func TestOccupancyGridEndToEnd(t *testing.T) {
	t.Parallel()

	handler, store := newPortalFixture(t)
	ctx := context.Background()
	if err := store.CreateResource(ctx, testfixtures.NewResourceFixture(testfixtures.WithResourceID("court-1"))); err != nil {
		t.Fatalf("failed to seed resource: %v", err)
	}

	recorder := serve(t, handler, http.MethodPost, "/reservations",
		`{"resource_id":"court-1","date":"2024-03-04","shift":"19:00","member_id":"m-1","member_name":"Ana"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = serve(t, handler, http.MethodPost, "/blackouts",
		`{"resource_id":"court-1","date":"2024-03-04","start_minute":1200,"end_minute":1260,"reason":"manutenção"}`)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201 for blackout, got %d: %s", recorder.Code, recorder.Body.String())
	}

	recorder = serve(t, handler, http.MethodGet, "/occupancy?resources=court-1&shifts=19:00,20:00,21:00&date=2024-03-04", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 for grid, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var body struct {
		Grid map[string]map[string]struct {
			State  string `json:"state"`
			OneOff *struct {
				MemberName string `json:"member_name"`
			} `json:"one_off"`
			Blackout *struct {
				Reason string `json:"reason"`
			} `json:"blackout"`
		} `json:"grid"`
	}
	decodeBody(t, recorder, &body)

	row := body.Grid["court-1"]
	if cell := row["19:00"]; cell.State != "one_off" || cell.OneOff == nil || cell.OneOff.MemberName != "Ana" {
		t.Fatalf("unexpected 19:00 cell: %+v", cell)
	}
	// The 20:00 slot spans minutes 1200-1260, inside the blackout window.
	if cell := row["20:00"]; cell.State != "blacked_out" || cell.Blackout == nil || cell.Blackout.Reason != "manutenção" {
		t.Fatalf("unexpected 20:00 cell: %+v", cell)
	}
	if cell := row["21:00"]; cell.State != "free" {
		t.Fatalf("unexpected 21:00 cell: %+v", cell)
	}
}
