package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/club-reservations/internal/application"
	"github.com/example/club-reservations/internal/booking"
)

type reservationService interface {
	CreateOneOff(ctx context.Context, params application.CreateOneOffParams) (booking.OneOffReservation, error)
	CancelOneOff(ctx context.Context, id string) error
	CreateRecurring(ctx context.Context, params application.CreateRecurringParams) (booking.RecurringReservation, error)
	CancelRecurring(ctx context.Context, id string) error
	AddException(ctx context.Context, params application.ExceptionParams) error
	RemoveException(ctx context.Context, params application.ExceptionParams) error
}

type ReservationHandler struct {
	service   reservationService
	responder responder
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{service: service, responder: newResponder(logger)}
}

func (h *ReservationHandler) CreateOneOff(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req oneOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	reservation, err := h.service.CreateOneOff(r.Context(), application.CreateOneOffParams{
		ResourceID: strings.TrimSpace(req.ResourceID),
		Date:       strings.TrimSpace(req.Date),
		Shift:      strings.TrimSpace(req.Shift),
		MemberID:   strings.TrimSpace(req.MemberID),
		MemberName: strings.TrimSpace(req.MemberName),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toOneOffDTO(reservation))
}

func (h *ReservationHandler) CancelOneOff(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ReservationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservation)
		return
	}

	if err := h.service.CancelOneOff(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	reservation, err := h.service.CreateRecurring(r.Context(), application.CreateRecurringParams{
		ResourceID: strings.TrimSpace(req.ResourceID),
		Weekday:    strings.TrimSpace(req.Weekday),
		Shift:      strings.TrimSpace(req.Shift),
		StartsOn:   strings.TrimSpace(req.StartsOn),
		MemberID:   strings.TrimSpace(req.MemberID),
		MemberName: strings.TrimSpace(req.MemberName),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toRecurringDTO(reservation))
}

func (h *ReservationHandler) CancelRecurring(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RecurringIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecurringID)
		return
	}

	if err := h.service.CancelRecurring(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) AddException(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RecurringIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecurringID)
		return
	}

	var req exceptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	err := h.service.AddException(r.Context(), application.ExceptionParams{
		RecurringID: id,
		Date:        strings.TrimSpace(req.Date),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *ReservationHandler) RemoveException(w http.ResponseWriter, r *http.Request, date string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := RecurringIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecurringID)
		return
	}
	if strings.TrimSpace(date) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidExceptionRef)
		return
	}

	err := h.service.RemoveException(r.Context(), application.ExceptionParams{
		RecurringID: id,
		Date:        strings.TrimSpace(date),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type oneOffRequest struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Shift      string `json:"shift"`
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
}

type recurringRequest struct {
	ResourceID string `json:"resource_id"`
	Weekday    string `json:"weekday"`
	Shift      string `json:"shift"`
	StartsOn   string `json:"starts_on"`
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
}

type exceptionRequest struct {
	Date string `json:"date"`
}

type oneOffDTO struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Shift      string `json:"shift"`
	Status     string `json:"status"`
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func toOneOffDTO(reservation booking.OneOffReservation) oneOffDTO {
	return oneOffDTO{
		ID:         reservation.ID,
		ResourceID: reservation.ResourceID,
		Date:       reservation.Date.String(),
		Shift:      reservation.Shift.Key(),
		Status:     string(reservation.Status),
		MemberID:   reservation.MemberID,
		MemberName: reservation.MemberName,
		CreatedAt:  reservation.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  reservation.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

type recurringDTO struct {
	ID         string   `json:"id"`
	ResourceID string   `json:"resource_id"`
	Weekday    string   `json:"weekday"`
	Shift      string   `json:"shift"`
	StartsOn   *string  `json:"starts_on,omitempty"`
	Status     string   `json:"status"`
	MemberID   string   `json:"member_id"`
	MemberName string   `json:"member_name,omitempty"`
	Exceptions []string `json:"exceptions,omitempty"`
	CreatedAt  string   `json:"created_at"`
	UpdatedAt  string   `json:"updated_at"`
}

func toRecurringDTO(reservation booking.RecurringReservation) recurringDTO {
	dto := recurringDTO{
		ID:         reservation.ID,
		ResourceID: reservation.ResourceID,
		Weekday:    strings.ToLower(reservation.Weekday.String()),
		Shift:      reservation.Shift.Key(),
		Status:     string(reservation.Status),
		MemberID:   reservation.MemberID,
		MemberName: reservation.MemberName,
		Exceptions: toDateStrings(reservation.Exceptions.Dates()),
		CreatedAt:  reservation.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  reservation.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if reservation.StartsOn != nil {
		date := reservation.StartsOn.String()
		dto.StartsOn = &date
	}
	return dto
}
