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

type blackoutService interface {
	CreateBlackout(ctx context.Context, params application.CreateBlackoutParams) (booking.Blackout, error)
	DeleteBlackout(ctx context.Context, id string) error
}

type BlackoutHandler struct {
	service   blackoutService
	responder responder
}

func NewBlackoutHandler(service blackoutService, logger *slog.Logger) *BlackoutHandler {
	return &BlackoutHandler{service: service, responder: newResponder(logger)}
}

func (h *BlackoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req blackoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	blackout, err := h.service.CreateBlackout(r.Context(), application.CreateBlackoutParams{
		ResourceID:  strings.TrimSpace(req.ResourceID),
		Date:        strings.TrimSpace(req.Date),
		StartMinute: req.StartMinute,
		EndMinute:   req.EndMinute,
		Reason:      strings.TrimSpace(req.Reason),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toBlackoutDTO(blackout))
}

func (h *BlackoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := BlackoutIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBlackoutID)
		return
	}

	if err := h.service.DeleteBlackout(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type blackoutRequest struct {
	ResourceID  string `json:"resource_id"`
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Reason      string `json:"reason"`
}

type blackoutDTO struct {
	ID          string `json:"id"`
	ResourceID  string `json:"resource_id"`
	Date        string `json:"date"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Reason      string `json:"reason,omitempty"`
	CreatedAt   string `json:"created_at"`
}

func toBlackoutDTO(blackout booking.Blackout) blackoutDTO {
	return blackoutDTO{
		ID:          blackout.ID,
		ResourceID:  blackout.ResourceID,
		Date:        blackout.Date.String(),
		StartMinute: blackout.Window.Start,
		EndMinute:   blackout.Window.End,
		Reason:      blackout.Reason,
		CreatedAt:   blackout.CreatedAt.UTC().Format(time.RFC3339),
	}
}
