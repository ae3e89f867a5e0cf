// Package eventhttp posts exported engine events to a remote collector.
package eventhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hydrovigil/pkg/models"
)

// Collector headers describing the batch, so receivers can route without
// decoding the body.
const (
	HeaderPhase     = "X-HydroVigil-Phase"
	HeaderTarget    = "X-HydroVigil-Target"
	HeaderBatchSize = "X-HydroVigil-Batch-Size"
)

// Source identifies this service in every batch envelope.
const Source = "hydrovigil"

// Config configures the HTTP writer.
type Config struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// Batch is the body of one POST. Phase and Target are taken from the newest
// event in the batch.
type Batch struct {
	Source string          `json:"source"`
	SentAt time.Time       `json:"sent_at"`
	Count  int             `json:"count"`
	Phase  models.Phase    `json:"phase"`
	Target string          `json:"target,omitempty"`
	Events []*models.Event `json:"events"`
}

// Writer posts event batches to a collector endpoint.
type Writer struct {
	url     string
	headers map[string]string
	client  *http.Client
	now     func() time.Time
}

// NewWriter creates an HTTP writer.
func NewWriter(cfg Config) (*Writer, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("http export URL is empty")
	}
	return &Writer{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  NewClient(cfg.Timeout),
		now:     time.Now,
	}, nil
}

// NewClient returns an HTTP client with timeout, defaulting to 5s.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// WriteEvents posts one batch envelope. Canceling ctx aborts an in-flight request.
func (w *Writer) WriteEvents(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	last := events[len(events)-1]
	batch := Batch{
		Source: Source,
		SentAt: w.now().UTC(),
		Count:  len(events),
		Phase:  last.Phase,
		Target: last.Target,
		Events: events,
	}
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("failed to marshal event batch: %w", err)
	}

	headers := make(map[string]string, len(w.headers)+3)
	for k, v := range w.headers {
		headers[k] = v
	}
	headers[HeaderPhase] = batch.Phase.String()
	headers[HeaderBatchSize] = strconv.Itoa(batch.Count)
	if batch.Target != "" {
		headers[HeaderTarget] = batch.Target
	}

	if err := Post(ctx, w.client, w.url, "application/json", headers, bytes.NewReader(body)); err != nil {
		return fmt.Errorf("event batch export: %w", err)
	}
	return nil
}

// Close releases HTTP resources.
func (w *Writer) Close() error {
	w.client.CloseIdleConnections()
	return nil
}

// StatusError is a non-2xx collector response.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return "status " + e.Status
	}
	return "status " + e.Status + ": " + e.Body
}

// Post sends body to url and drains the response. Any status outside 2xx is
// returned as a *StatusError carrying the first 4KiB of the response body.
func Post(ctx context.Context, client *http.Client, url, contentType string, headers map[string]string, body io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(detail)),
		}
	}
	return nil
}
