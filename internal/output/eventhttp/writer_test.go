package eventhttp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrovigil/pkg/models"
)

func TestWriterPostsBatchEnvelope(t *testing.T) {
	var got Batch
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL, Headers: map[string]string{"X-Token": "secret"}})
	require.NoError(t, err)
	sentAt := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	w.now = func() time.Time { return sentAt }

	err = w.WriteEvents(context.Background(), []*models.Event{
		{Type: models.EventPhase, Phase: models.Phase1, Target: "P-23"},
		{Type: models.EventPhase, Phase: models.Phase2, Target: "GW-A2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "secret", header.Get("X-Token"))
	assert.Equal(t, "phase2", header.Get(HeaderPhase))
	assert.Equal(t, "GW-A2", header.Get(HeaderTarget))
	assert.Equal(t, "2", header.Get(HeaderBatchSize))

	assert.Equal(t, Source, got.Source)
	assert.Equal(t, sentAt, got.SentAt)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, models.Phase2, got.Phase)
	require.Len(t, got.Events, 2)
	assert.Equal(t, models.Phase1, got.Events[0].Phase)
}

func TestWriterRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collector overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	w, err := NewWriter(Config{URL: srv.URL})
	require.NoError(t, err)
	err = w.WriteEvents(context.Background(), []*models.Event{{Type: models.EventCue}})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "collector overloaded")
}

func TestWriterCancelAbortsInFlightPost(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	w, err := NewWriter(Config{URL: srv.URL, Timeout: time.Minute})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.WriteEvents(ctx, []*models.Event{{Type: models.EventCue}})
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled), "unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatalf("canceled write did not return")
	}
}

func TestPostSendsContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/plain", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.Header.Get("X-K"))
	}))
	defer srv.Close()

	err := Post(context.Background(), NewClient(0), srv.URL, "text/plain", map[string]string{"X-K": "v"}, strings.NewReader("x"))
	require.NoError(t, err)
}

func TestWriterEmptyBatchIsNoop(t *testing.T) {
	w, err := NewWriter(Config{URL: "http://127.0.0.1:1"})
	require.NoError(t, err)
	require.NoError(t, w.WriteEvents(context.Background(), nil))
}

func TestNewWriterRequiresURL(t *testing.T) {
	_, err := NewWriter(Config{})
	require.Error(t, err)
}
