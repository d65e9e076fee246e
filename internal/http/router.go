package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Availability *AvailabilityHandler
	Reservations *ReservationHandler
	Blackouts    *BlackoutHandler
	Resources    *ResourceHandler
	Middleware   []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Availability != nil {
		mux.HandleFunc("/occupancy", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Availability.Grid(w, r)
		})
	}

	if cfg.Resources != nil {
		mux.HandleFunc("/resources", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Resources.List(w, r)
			case http.MethodPost:
				cfg.Resources.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/resources/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/resources/")
			parts := splitPath(rest)
			if len(parts) == 0 {
				http.NotFound(w, r)
				return
			}

			ctx := ContextWithResourceID(r.Context(), parts[0])
			r = r.WithContext(ctx)

			switch {
			case len(parts) == 1:
				switch r.Method {
				case http.MethodGet:
					cfg.Resources.Get(w, r)
				case http.MethodDelete:
					cfg.Resources.Delete(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodDelete)
				}
			case len(parts) == 2 && parts[1] == "availability" && cfg.Availability != nil:
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Availability.NextDates(w, r)
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Reservations != nil {
		mux.HandleFunc("/reservations", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Reservations.CreateOneOff(w, r)
		})
		mux.HandleFunc("/reservations/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/reservations/")
			parts := splitPath(rest)
			if len(parts) == 0 {
				http.NotFound(w, r)
				return
			}

			if parts[0] != "recurring" {
				ctx := ContextWithReservationID(r.Context(), parts[0])
				r = r.WithContext(ctx)
				if len(parts) != 1 {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Reservations.CancelOneOff(w, r)
				return
			}

			switch {
			case len(parts) == 1:
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Reservations.CreateRecurring(w, r)
			case len(parts) == 2:
				ctx := ContextWithRecurringID(r.Context(), parts[1])
				r = r.WithContext(ctx)
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Reservations.CancelRecurring(w, r)
			case len(parts) == 3 && parts[2] == "exceptions":
				ctx := ContextWithRecurringID(r.Context(), parts[1])
				r = r.WithContext(ctx)
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				cfg.Reservations.AddException(w, r)
			case len(parts) == 4 && parts[2] == "exceptions":
				ctx := ContextWithRecurringID(r.Context(), parts[1])
				r = r.WithContext(ctx)
				if r.Method != http.MethodDelete {
					methodNotAllowed(w, http.MethodDelete)
					return
				}
				cfg.Reservations.RemoveException(w, r, parts[3])
			default:
				http.NotFound(w, r)
			}
		})
	}

	if cfg.Blackouts != nil {
		mux.HandleFunc("/blackouts", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Blackouts.Create(w, r)
		})
		mux.HandleFunc("/blackouts/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/blackouts/")
			if id == "" {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithBlackoutID(r.Context(), id)
			r = r.WithContext(ctx)
			if r.Method != http.MethodDelete {
				methodNotAllowed(w, http.MethodDelete)
				return
			}
			cfg.Blackouts.Delete(w, r)
		})
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func splitPath(rest string) []string {
	rest = strings.Trim(rest, "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
