package websocket

import (
	"context"
	"encoding/json"

	"hydrovigil/internal/logger"
	"hydrovigil/pkg/models"
)

var wsLog = logger.For("websocket")

// MessageSnapshot is the type of the first message every client receives.
const MessageSnapshot = "snapshot"

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Observer is told about client churn and dropped messages.
type Observer interface {
	ClientConnected()
	ClientDisconnected()
	MessageDropped()
}

type attachment struct {
	client  *Client
	initial func() ([]byte, error)
}

// Hub maintains the set of active clients and broadcasts messages.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan attachment
	unregister chan *Client
	done       chan struct{}
	observer   Observer
}

// NewHub creates a hub. observer may be nil.
func NewHub(observer Observer) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan attachment),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		observer:   observer,
	}
}

// Run owns the client set until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for client := range h.clients {
			h.drop(client)
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case a := <-h.register:
			if a.initial != nil {
				msg, err := a.initial()
				if err != nil {
					wsLog.Errorf("Failed to build initial message for %s: %v", a.client.addr(), err)
					close(a.client.Send)
					continue
				}
				a.client.Send <- msg
			}
			h.clients[a.client] = true
			if h.observer != nil {
				h.observer.ClientConnected()
			}
			wsLog.Infof("Client registered: %s (%d connected)", a.client.addr(), len(h.clients))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				wsLog.Infof("Client unregistered: %s", client.addr())
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.Send <- message:
				default:
					wsLog.Warnf("Client %s send buffer full, removing", client.addr())
					if h.observer != nil {
						h.observer.MessageDropped()
					}
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.Send)
	if h.observer != nil {
		h.observer.ClientDisconnected()
	}
}

// Attach registers client. initial, when set, builds the first message the
// client receives, ahead of any broadcast. It reports false when the hub has stopped.
func (h *Hub) Attach(client *Client, initial func() ([]byte, error)) bool {
	select {
	case h.register <- attachment{client: client, initial: initial}:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) detach(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish broadcasts an engine event. It never blocks; when the hub is behind
// the event is dropped. It satisfies engine.Sink.
func (h *Hub) Publish(ev models.Event) {
	msg, err := Encode(string(ev.Type), ev)
	if err != nil {
		wsLog.Errorf("Failed to encode %s event: %v", ev.Type, err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		if h.observer != nil {
			h.observer.MessageDropped()
		}
	}
}

// Encode builds one client frame.
func Encode(msgType string, payload interface{}) ([]byte, error) {
	return json.Marshal(Message{Type: msgType, Payload: payload})
}
