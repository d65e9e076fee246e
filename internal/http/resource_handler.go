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

type resourceService interface {
	CreateResource(ctx context.Context, input application.ResourceInput) (booking.Resource, error)
	GetResource(ctx context.Context, id string) (booking.Resource, error)
	ListResources(ctx context.Context) ([]booking.Resource, error)
	DeleteResource(ctx context.Context, id string) error
}

type ResourceHandler struct {
	service   resourceService
	responder responder
}

func NewResourceHandler(service resourceService, logger *slog.Logger) *ResourceHandler {
	return &ResourceHandler{service: service, responder: newResponder(logger)}
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resources, err := h.service.ListResources(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourcesResponse{Resources: toResourceDTOs(resources)})
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	resource, err := h.service.GetResource(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toResourceDTO(resource))
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	resource, err := h.service.CreateResource(r.Context(), application.ResourceInput{
		Name:   strings.TrimSpace(req.Name),
		Number: req.Number,
		Kind:   strings.TrimSpace(req.Kind),
		Sports: req.Sports,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toResourceDTO(resource))
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	if err := h.service.DeleteResource(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type resourceRequest struct {
	Name   string   `json:"name"`
	Number int      `json:"number"`
	Kind   string   `json:"kind"`
	Sports []string `json:"sports"`
}

type listResourcesResponse struct {
	Resources []resourceDTO `json:"resources"`
}

type resourceDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Number    int      `json:"number"`
	Kind      string   `json:"kind"`
	Sports    []string `json:"sports,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toResourceDTO(resource booking.Resource) resourceDTO {
	return resourceDTO{
		ID:        resource.ID,
		Name:      resource.Name,
		Number:    resource.Number,
		Kind:      string(resource.Kind),
		Sports:    append([]string(nil), resource.Sports...),
		CreatedAt: resource.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: resource.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toResourceDTOs(resources []booking.Resource) []resourceDTO {
	if len(resources) == 0 {
		return nil
	}
	out := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		out = append(out, toResourceDTO(resource))
	}
	return out
}
