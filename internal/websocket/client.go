package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub  *Hub
	Conn *websocket.Conn
	Send chan []byte
}

// Serve upgrades the request, attaches the client to the hub and starts its pumps.
// initial builds the first frame the client receives.
func Serve(h *Hub, w http.ResponseWriter, r *http.Request, initial func() ([]byte, error)) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		wsLog.Warnf("Upgrade failed: %v", err)
		return
	}

	client := &Client{hub: h, Conn: conn, Send: make(chan []byte, sendBuffer)}
	if !h.Attach(client, initial) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

func (c *Client) addr() string {
	if c.Conn == nil {
		return "detached"
	}
	return c.Conn.RemoteAddr().String()
}

// ReadPump discards client frames and handles control messages until the
// connection fails.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.detach(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				wsLog.Warnf("Read error from %s: %v", c.addr(), err)
			}
			return
		}
	}
}

// WritePump sends one frame per hub message, plus periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				wsLog.Warnf("Write error to %s: %v", c.addr(), err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
