package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultMetricsPath is used when metricsPath is empty.
const DefaultMetricsPath = "/metrics"

// NewRouter wires every HTTP route. metricsHandler may be nil, in which case no
// metrics route is registered.
func NewRouter(h *Handler, recorder MetricsRecorder, metricsPath string, metricsHandler http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware(recorder))

	r.Get("/healthz", h.Health)
	if metricsHandler != nil {
		if metricsPath == "" {
			metricsPath = DefaultMetricsPath
		}
		r.Method(http.MethodGet, metricsPath, metricsHandler)
	}
	r.Get("/ws", h.WebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Get("/snapshot", h.Snapshot)
		r.Get("/telemetry", h.Telemetry)
		r.Get("/incidents", h.Incidents)
		r.Get("/sensors", h.Sensors)
		r.Post("/attack", h.TriggerAttack)
		r.Post("/reset", h.Reset)
		r.Post("/predict", h.Predict)
	})

	return r
}
