package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hydrovigil/pkg/models"
)

type countingObserver struct {
	mu           sync.Mutex
	connected    int
	disconnected int
	dropped      int
}

func (o *countingObserver) ClientConnected()    { o.mu.Lock(); o.connected++; o.mu.Unlock() }
func (o *countingObserver) ClientDisconnected() { o.mu.Lock(); o.disconnected++; o.mu.Unlock() }
func (o *countingObserver) MessageDropped()     { o.mu.Lock(); o.dropped++; o.mu.Unlock() }

func (o *countingObserver) snapshot() (int, int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.connected, o.disconnected, o.dropped
}

func startHub(t *testing.T, obs Observer) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(obs)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Serve(hub, w, r, func() ([]byte, error) {
			return Encode(MessageSnapshot, map[string]string{"phase": "normal"})
		})
	}))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func waitConnected(t *testing.T, obs *countingObserver, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c, _, _ := obs.snapshot(); c >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("clients never connected")
}

func TestClientReceivesSnapshotThenEvents(t *testing.T) {
	obs := &countingObserver{}
	hub, srv := startHub(t, obs)
	conn := dial(t, srv)

	first := readMessage(t, conn)
	assert.JSONEq(t, `"snapshot"`, string(first["type"]))
	assert.JSONEq(t, `{"phase":"normal"}`, string(first["payload"]))

	waitConnected(t, obs, 1)
	hub.Publish(models.Event{Type: models.EventPhase, Phase: models.Phase1})

	next := readMessage(t, conn)
	assert.JSONEq(t, `"phase"`, string(next["type"]))
	var ev models.Event
	require.NoError(t, json.Unmarshal(next["payload"], &ev))
	assert.Equal(t, models.Phase1, ev.Phase)
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	obs := &countingObserver{}
	hub, srv := startHub(t, obs)
	a := dial(t, srv)
	b := dial(t, srv)
	readMessage(t, a)
	readMessage(t, b)
	waitConnected(t, obs, 2)

	hub.Publish(models.Event{Type: models.EventCue})
	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.JSONEq(t, `"cue"`, string(msg["type"]))
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	obs := &countingObserver{}
	_, srv := startHub(t, obs)
	conn := dial(t, srv)
	readMessage(t, conn)
	waitConnected(t, obs, 1)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, d, _ := obs.snapshot(); d == 1 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("client never unregistered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishDoesNotBlockWithoutRun(t *testing.T) {
	obs := &countingObserver{}
	hub := NewHub(obs)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Publish(models.Event{Type: models.EventTelemetry})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publish blocked")
	}
	_, _, dropped := obs.snapshot()
	assert.Equal(t, 1000-256, dropped)
}

func TestAttachAfterStopFails(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped
	assert.False(t, hub.Attach(&Client{hub: hub, Send: make(chan []byte, 1)}, nil))
}
