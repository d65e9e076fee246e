package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/club-reservations/internal/application"
)

var (
	errBadRequestBody      = errors.New("O formato da requisição é inválido.")
	errInvalidResourceID   = errors.New("O ID do recurso é inválido.")
	errInvalidReservation  = errors.New("O ID da reserva é inválido.")
	errInvalidRecurringID  = errors.New("O ID da reserva permanente é inválido.")
	errInvalidBlackoutID   = errors.New("O ID do bloqueio é inválido.")
	errInvalidExceptionRef = errors.New("A data da exceção é inválida.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "O recurso solicitado não foi encontrado."})
	case errors.Is(err, application.ErrSlotUnavailable):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SLOT_UNAVAILABLE",
			Message:   "O horário solicitado não está mais disponível.",
		})
	case errors.Is(err, application.ErrStoreUnavailable):
		r.loggerFor(ctx).ErrorContext(ctx, "store unavailable", "error", err)
		r.writeJSON(ctx, w, http.StatusServiceUnavailable, errorResponse{Message: "O serviço está temporariamente indisponível. Tente novamente."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Há erros nos dados informados.",
				Errors:  localizeValidationErrors(vErr),
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Ocorreu um erro interno no servidor."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "O conteúdo da requisição é inválido."
	case http.StatusNotFound:
		return "O recurso solicitado não foi encontrado."
	case http.StatusConflict:
		return "A requisição conflita com o estado atual do recurso."
	case http.StatusUnprocessableEntity:
		return "Há erros nos dados informados."
	case http.StatusTooManyRequests:
		return "Muitas requisições. Aguarde um momento e tente novamente."
	case http.StatusServiceUnavailable:
		return "O serviço está temporariamente indisponível. Tente novamente."
	default:
		return "Ocorreu um erro interno no servidor."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "resource id is required":
		return "O ID do recurso é obrigatório."
	case "member id is required":
		return "O ID do sócio é obrigatório."
	case "reservation id is required":
		return "O ID da reserva é obrigatório."
	case "recurring reservation id is required":
		return "O ID da reserva permanente é obrigatório."
	case "blackout id is required":
		return "O ID do bloqueio é obrigatório."
	case "weekday is invalid":
		return "O dia da semana é inválido."
	case "date is invalid":
		return "A data é inválida. Use o formato AAAA-MM-DD."
	case "date is in the past":
		return "A data informada já passou."
	case "shift is invalid for this resource":
		return "O turno informado não é válido para este recurso."
	case "start date is invalid":
		return "A data de início é inválida. Use o formato AAAA-MM-DD."
	case "start date does not fall on the chosen weekday":
		return "A data de início não cai no dia da semana escolhido."
	case "a date or a weekday is required":
		return "Informe uma data ou um dia da semana."
	case "at least one resource is required":
		return "Informe ao menos um recurso."
	case "at least one shift is required":
		return "Informe ao menos um turno."
	case "start minute is out of range":
		return "O minuto inicial está fora do intervalo do dia."
	case "end minute must be after start minute and within the day":
		return "O minuto final deve ser posterior ao inicial e dentro do dia."
	case "name is required":
		return "O nome é obrigatório."
	case "number must be positive":
		return "O número deve ser positivo."
	case "kind must be court or barbecue_pit":
		return "O tipo deve ser quadra (court) ou churrasqueira (barbecue_pit)."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
