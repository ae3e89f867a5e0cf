// Package prediction calls the external anomaly-scoring service with the current
// telemetry window.
package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hydrovigil/pkg/models"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:8000"

// ErrUnavailable matches every failed prediction call.
var ErrUnavailable = errors.New("prediction unavailable")

// Kind classifies a prediction failure.
type Kind string

const (
	KindTransport Kind = "transport"
	KindStatus    Kind = "status"
	KindDecode    Kind = "decode"
)

// Error describes a failed call. It matches ErrUnavailable with errors.Is.
type Error struct {
	Kind       Kind
	StatusCode int
	Detail     string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		detail := e.Detail
		if detail == "" {
			detail = "no details"
		}
		return fmt.Sprintf("prediction request failed (%d): %s", e.StatusCode, detail)
	case KindDecode:
		if e.Err != nil {
			return fmt.Sprintf("prediction service returned an invalid JSON payload: %v", e.Err)
		}
		return "prediction service returned an invalid JSON payload"
	default:
		return fmt.Sprintf("prediction request failed: %v", e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrUnavailable }

// Result is the service verdict. Raw keeps the full response object.
type Result struct {
	FinalDecision string                     `json:"final_decision,omitempty"`
	RiskScore     *float64                   `json:"risk_score,omitempty"`
	MahalScore    *float64                   `json:"mahal_score,omitempty"`
	Confidence    *float64                   `json:"confidence,omitempty"`
	Raw           map[string]json.RawMessage `json:"raw"`
}

// Config configures the client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// Client posts telemetry windows to <base>/predict.
type Client struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewClient creates a prediction client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		url:     strings.TrimRight(base, "/") + "/predict",
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
	}
}

// URL returns the predict endpoint.
func (c *Client) URL() string { return c.url }

type request struct {
	SensorData [][]float64 `json:"sensor_data"`
}

// Predict scores window. Samples are sent as [pressure, flow, level] rows, oldest first.
// It makes a single attempt.
func (c *Client) Predict(ctx context.Context, window []models.TelemetrySample) (*Result, error) {
	rows := make([][]float64, len(window))
	for i, s := range window {
		rows[i] = s.Features()
	}
	body, err := json.Marshal(request{SensorData: rows})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode, Detail: strings.TrimSpace(string(payload))}
	}

	return decode(payload)
}

func decode(payload []byte) (*Result, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	if raw == nil {
		return nil, &Error{Kind: KindDecode}
	}

	res := &Result{Raw: raw}
	if v, ok := raw["final_decision"]; ok {
		var s string
		if json.Unmarshal(v, &s) == nil {
			res.FinalDecision = s
		}
	}
	res.RiskScore = number(raw, "risk_score")
	res.MahalScore = number(raw, "mahal_score")
	res.Confidence = number(raw, "confidence")
	return res, nil
}

func number(raw map[string]json.RawMessage, key string) *float64 {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	var f float64
	if err := json.Unmarshal(v, &f); err != nil {
		return nil
	}
	return &f
}
