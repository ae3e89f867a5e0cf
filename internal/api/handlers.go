package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"hydrovigil/internal/logger"
	"hydrovigil/internal/output/eventredis"
	"hydrovigil/internal/prediction"
	"hydrovigil/internal/scheduler"
	"hydrovigil/internal/websocket"
	"hydrovigil/pkg/models"
)

var apiLog = logger.For("api")

// Engine is the simulation surface served over HTTP.
type Engine interface {
	Snapshot() models.Snapshot
	Telemetry(count int) []models.TelemetrySample
	Incidents() []models.Incident
	TriggerAttack() bool
	Reset()
	PendingTasks() []scheduler.Key
}

// Predictor scores a telemetry window.
type Predictor interface {
	Predict(ctx context.Context, window []models.TelemetrySample) (*prediction.Result, error)
}

// PredictionRecorder records prediction call outcomes.
type PredictionRecorder interface {
	RecordPrediction(outcome string, duration time.Duration)
}

// SensorReader reads the per-sensor incident counters kept by the Redis export.
type SensorReader interface {
	Sensors(ctx context.Context) ([]eventredis.SensorStats, error)
}

// Handler serves the dashboard API.
type Handler struct {
	engine    Engine
	predictor Predictor
	hub       *websocket.Hub
	recorder  PredictionRecorder
	sensors   SensorReader
	timeout   time.Duration
}

// Options holds the optional collaborators of a Handler.
type Options struct {
	Predictor      Predictor
	Hub            *websocket.Hub
	Recorder       PredictionRecorder
	Sensors        SensorReader
	PredictTimeout time.Duration
}

// NewHandler creates the API handler.
func NewHandler(engine Engine, opts Options) *Handler {
	timeout := opts.PredictTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Handler{
		engine:    engine,
		predictor: opts.Predictor,
		hub:       opts.Hub,
		recorder:  opts.Recorder,
		sensors:   opts.Sensors,
		timeout:   timeout,
	}
}

type attackResponse struct {
	Accepted bool         `json:"accepted"`
	Phase    models.Phase `json:"phase"`
	Target   string       `json:"target"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apiLog.Warnf("Failed to encode response: %v", err)
	}
}

type healthResponse struct {
	Status string          `json:"status"`
	Tasks  []scheduler.Key `json:"tasks"`
}

// Health reports liveness and the armed simulation timers. A started engine
// always has its telemetry tick and incident feed armed.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Tasks: h.engine.PendingTasks()})
}

// Snapshot returns the full dashboard view.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Telemetry returns the telemetry window, oldest first.
func (h *Handler) Telemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Telemetry(0))
}

// Incidents returns the incident log, newest first.
func (h *Handler) Incidents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Incidents())
}

// Sensors returns exported per-sensor incident counters, most recently seen
// first. It answers 404 unless events are exported to Redis.
func (h *Handler) Sensors(w http.ResponseWriter, r *http.Request) {
	if h.sensors == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "sensor counters require redis export"})
		return
	}
	stats, err := h.sensors.Sensors(r.Context())
	if err != nil {
		apiLog.Warnf("Failed to read sensor counters: %v", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// TriggerAttack starts an attack run when the system is at baseline.
func (h *Handler) TriggerAttack(w http.ResponseWriter, r *http.Request) {
	accepted := h.engine.TriggerAttack()
	snap := h.engine.Snapshot()
	resp := attackResponse{Accepted: accepted, Phase: snap.Phase, Target: snap.AttackTarget}
	if !accepted {
		writeJSON(w, http.StatusConflict, resp)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// Reset returns the simulation to baseline.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.engine.Reset()
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// Predict scores the current telemetry window with the prediction service.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	if h.predictor == nil {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "prediction service is not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	start := time.Now()
	res, err := h.predictor.Predict(ctx, h.engine.Telemetry(0))
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if h.recorder != nil {
		h.recorder.RecordPrediction(outcome, time.Since(start))
	}

	if err != nil {
		apiLog.Warnf("Prediction failed: %v", err)
		status := http.StatusInternalServerError
		if errors.Is(err, prediction.ErrUnavailable) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// WebSocket streams a snapshot and then every engine event.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		http.Error(w, "live updates are disabled", http.StatusServiceUnavailable)
		return
	}
	websocket.Serve(h.hub, w, r, func() ([]byte, error) {
		return websocket.Encode(websocket.MessageSnapshot, h.engine.Snapshot())
	})
}
