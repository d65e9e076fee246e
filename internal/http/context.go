package http

import "context"

type contextKey string

const (
	resourceIDContextKey    contextKey = "resource_id"
	reservationIDContextKey contextKey = "reservation_id"
	recurringIDContextKey   contextKey = "recurring_id"
	blackoutIDContextKey    contextKey = "blackout_id"
)

// ContextWithResourceID injects the resource identifier resolved from the request path.
func ContextWithResourceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, resourceIDContextKey, id)
}

// ResourceIDFromContext extracts a resource identifier previously associated with the context.
func ResourceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(resourceIDContextKey).(string)
	return id, ok
}

// ContextWithReservationID injects the one-off reservation identifier resolved from the request path.
func ContextWithReservationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reservationIDContextKey, id)
}

// ReservationIDFromContext extracts a one-off reservation identifier from the context.
func ReservationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(reservationIDContextKey).(string)
	return id, ok
}

// ContextWithRecurringID injects the recurring reservation identifier resolved from the request path.
func ContextWithRecurringID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, recurringIDContextKey, id)
}

// RecurringIDFromContext extracts a recurring reservation identifier from the context.
func RecurringIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(recurringIDContextKey).(string)
	return id, ok
}

// ContextWithBlackoutID injects the blackout identifier resolved from the request path.
func ContextWithBlackoutID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, blackoutIDContextKey, id)
}

// BlackoutIDFromContext extracts a blackout identifier from the context.
func BlackoutIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(blackoutIDContextKey).(string)
	return id, ok
}
