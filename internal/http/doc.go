// Package http provides the HTTP handlers and middleware of the reservation
// portal API.
//
// The router exposes the following endpoints:
//   - GET /resources/{id}/availability?weekday={name}&shift={key}: next free
//     dates for a weekly slot plus the most recent past conflict on it.
//   - GET /occupancy?resources={ids}&date={date}&shifts={keys}: occupancy
//     grid for a set of resources crossed with shifts on one date, or on the
//     next occurrence of a weekday when `weekday` replaces `date`.
//   - POST /reservations, DELETE /reservations/{id}: one-off bookings.
//   - POST /reservations/recurring, DELETE /reservations/recurring/{id}:
//     standing weekly bookings.
//   - POST /reservations/recurring/{id}/exceptions and
//     DELETE /reservations/recurring/{id}/exceptions/{date}: suppress or
//     restore single occurrences of a recurring series.
//   - POST /blackouts, DELETE /blackouts/{id}: admin unavailability windows.
//   - GET /resources, POST /resources, GET /resources/{id},
//     DELETE /resources/{id}: the bookable-unit catalog.
//
// Request/response DTOs live alongside their respective handlers so tests
// and documentation share the same ground truth. User-facing messages are
// in Brazilian Portuguese; logs stay in English.
package http
