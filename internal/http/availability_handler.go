package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-reservations/internal/application"
	"github.com/example/club-reservations/internal/calendar"
)

type availabilityService interface {
	NextAvailableDates(ctx context.Context, params application.NextAvailableDatesParams) (application.NextAvailableDatesResult, error)
	OccupancyGrid(ctx context.Context, params application.OccupancyGridParams) (application.OccupancyGrid, error)
}

type AvailabilityHandler struct {
	service   availabilityService
	responder responder
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{service: service, responder: newResponder(logger)}
}

// NextDates answers GET /resources/{id}/availability with the next free
// dates for the weekday and shift query parameters.
func (h *AvailabilityHandler) NextDates(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	query := r.URL.Query()
	result, err := h.service.NextAvailableDates(r.Context(), application.NextAvailableDatesParams{
		ResourceID: resourceID,
		Weekday:    strings.TrimSpace(query.Get("weekday")),
		Shift:      strings.TrimSpace(query.Get("shift")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAvailabilityDTO(result))
}

// Grid answers GET /occupancy for a set of resources and shifts on one date
// or the next occurrence of a weekday.
func (h *AvailabilityHandler) Grid(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	grid, err := h.service.OccupancyGrid(r.Context(), application.OccupancyGridParams{
		ResourceIDs: parseCSV(query.Get("resources")),
		Date:        strings.TrimSpace(query.Get("date")),
		Weekday:     strings.TrimSpace(query.Get("weekday")),
		Shifts:      parseCSV(query.Get("shifts")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, occupancyGridResponse{Grid: toGridDTO(grid)})
}

type availabilityResponse struct {
	LastConflictDate *string  `json:"last_conflict_date,omitempty"`
	AvailableDates   []string `json:"available_dates"`
}

func toAvailabilityDTO(result application.NextAvailableDatesResult) availabilityResponse {
	response := availabilityResponse{
		AvailableDates: toDateStrings(result.AvailableDates),
	}
	if result.LastConflictDate != nil {
		date := result.LastConflictDate.String()
		response.LastConflictDate = &date
	}
	return response
}

type occupancyGridResponse struct {
	Grid map[string]map[string]gridCellDTO `json:"grid"`
}

type gridCellDTO struct {
	Date      string            `json:"date"`
	State     string            `json:"state"`
	OneOff    *oneOffCellDTO    `json:"one_off,omitempty"`
	Recurring *recurringCellDTO `json:"recurring,omitempty"`
	Blackout  *blackoutCellDTO  `json:"blackout,omitempty"`
}

type oneOffCellDTO struct {
	ReservationID string `json:"reservation_id"`
	MemberName    string `json:"member_name,omitempty"`
}

type recurringCellDTO struct {
	ReservationID  string   `json:"reservation_id"`
	MemberName     string   `json:"member_name,omitempty"`
	EffectiveStart *string  `json:"effective_start,omitempty"`
	NextOccurrence *string  `json:"next_occurrence,omitempty"`
	Exceptions     []string `json:"exceptions,omitempty"`
}

type blackoutCellDTO struct {
	BlackoutID  string `json:"blackout_id"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Reason      string `json:"reason,omitempty"`
}

func toGridDTO(grid application.OccupancyGrid) map[string]map[string]gridCellDTO {
	out := make(map[string]map[string]gridCellDTO, len(grid))
	for resourceID, row := range grid {
		cells := make(map[string]gridCellDTO, len(row))
		for shiftKey, cell := range row {
			cells[shiftKey] = toGridCellDTO(cell)
		}
		out[resourceID] = cells
	}
	return out
}

func toGridCellDTO(cell application.GridCell) gridCellDTO {
	dto := gridCellDTO{
		Date:  cell.Date.String(),
		State: string(cell.State),
	}
	if cell.OneOff != nil {
		dto.OneOff = &oneOffCellDTO{
			ReservationID: cell.OneOff.ReservationID,
			MemberName:    cell.OneOff.MemberName,
		}
	}
	if cell.Recurring != nil {
		recurring := &recurringCellDTO{
			ReservationID: cell.Recurring.ReservationID,
			MemberName:    cell.Recurring.MemberName,
			Exceptions:    toDateStrings(cell.Recurring.Exceptions),
		}
		if cell.Recurring.EffectiveStart != nil {
			date := cell.Recurring.EffectiveStart.String()
			recurring.EffectiveStart = &date
		}
		if cell.Recurring.NextOccurrence != nil {
			date := cell.Recurring.NextOccurrence.String()
			recurring.NextOccurrence = &date
		}
		dto.Recurring = recurring
	}
	if cell.Blackout != nil {
		dto.Blackout = &blackoutCellDTO{
			BlackoutID:  cell.Blackout.BlackoutID,
			StartMinute: cell.Blackout.Window.Start,
			EndMinute:   cell.Blackout.Window.End,
			Reason:      cell.Blackout.Reason,
		}
	}
	return dto
}

func toDateStrings(dates []calendar.DateKey) []string {
	if len(dates) == 0 {
		return nil
	}
	out := make([]string, 0, len(dates))
	for _, date := range dates {
		out = append(out, date.String())
	}
	return out
}

func parseCSV(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
