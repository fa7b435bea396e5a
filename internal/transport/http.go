package transport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opencivic/govcontacts/internal/domain/agency"
	"github.com/opencivic/govcontacts/internal/domain/contact"
)

// ContactService lists contacts under quota and resets the caller's
// limit.
type ContactService interface {
	List(ctx context.Context, userID string, req contact.ListRequest) (*contact.ListResult, error)
	ResetLimit(ctx context.Context, userID string) error
}

// AgencyService lists and fetches agencies.
type AgencyService interface {
	List(ctx context.Context, req agency.ListRequest) (*agency.ListResult, error)
	Get(ctx context.Context, id string) (*agency.Agency, error)
}

// Server wires HTTP handlers.
type Server struct {
	contacts ContactService
	agencies AgencyService
	logger   *slog.Logger
}

// NewServer creates an HTTP router with middleware. The health endpoint
// stays outside the auth chain.
func NewServer(contacts ContactService, agencies AgencyService, logger *slog.Logger, authMiddleware func(http.Handler) http.Handler, throttle *Throttle) *chi.Mux {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	srv := &Server{contacts: contacts, agencies: agencies, logger: logger}

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		if throttle != nil {
			r.Use(throttle.Middleware)
		}

		r.Get("/contacts", srv.handleListContacts)
		r.Post("/contacts/reset-limit", srv.handleResetLimit)
		r.Get("/agencies", srv.handleListAgencies)
		r.Get("/agencies/{id}", srv.handleGetAgency)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
