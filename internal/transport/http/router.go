// Package httptransport is the thin HTTP layer. Handlers decode, validate,
// delegate to domain services, and translate errors; no business logic
// lives here.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"folio/internal/platform/middleware"
)

// RouterConfig bundles the pieces NewRouter needs.
type RouterConfig struct {
	Nominees       *NomineeHandler
	MFA            *MFAHandler
	Authenticator  *middleware.Authenticator
	Logger         *slog.Logger
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints with middleware. Everything except
// health and metrics requires an authenticated session.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Authenticator, cfg.Logger))
		cfg.Nominees.Register(r)
		cfg.MFA.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
