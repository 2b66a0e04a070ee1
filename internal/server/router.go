package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"calculator-api/internal/calculator"
	"calculator-api/internal/handlers"
	"calculator-api/internal/history"
	"calculator-api/internal/observability"
	"calculator-api/internal/session"
)

// Dependencies are the domain handlers mounted by NewRouter.
type Dependencies struct {
	ServiceName string
	Calculator  *calculator.Handler
	Session     *session.Handler
	History     *history.Handler

	// Metrics backs /metrics; nil serves the default registry.
	Metrics prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/", index(deps.ServiceName))
	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler(deps.Metrics))

	calculator.RegisterRoutes(r, deps.Calculator)
	session.RegisterRoutes(r, deps.Session)
	history.RegisterRoutes(r, deps.History)

	return r
}

func index(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Calculator API",
			"service": serviceName,
		})
	}
}
