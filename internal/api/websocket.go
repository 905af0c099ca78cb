package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/prody/prody/internal/logging"
	"github.com/prody/prody/internal/notifications"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The daemon serves a local client only.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the envelope sent to WebSocket clients
type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// wsClient is one connected WebSocket client
type wsClient struct {
	hub  *WebSocketHub
	conn *websocket.Conn
	send chan []byte
}

// WebSocketHub fans messages out to all connected clients
type WebSocketHub struct {
	clients    map[*wsClient]bool
	register   chan *wsClient
	unregister chan *wsClient
	broadcast  chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	log        *logging.Logger
}

// NewWebSocketHub creates a hub. Call Run in a goroutine to start it.
func NewWebSocketHub() *WebSocketHub {
	return &WebSocketHub{
		clients:    make(map[*wsClient]bool),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		log:        logging.Named("ws"),
	}
}

// Run processes hub events until Close is called
func (h *WebSocketHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow client, drop it.
					delete(h.clients, client)
					close(client.send)
				}
			}
		case <-h.done:
			for client := range h.clients {
				close(client.send)
			}
			h.clients = make(map[*wsClient]bool)
			return
		}
	}
}

// Broadcast sends a typed message to all clients
func (h *WebSocketHub) Broadcast(msgType string, payload any) {
	data, err := json.Marshal(wsMessage{Type: msgType, Payload: payload})
	if err != nil {
		h.log.Warn("marshal broadcast: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	}
}

// Close shuts the hub down
func (h *WebSocketHub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// handleWebSocket upgrades the connection and attaches it to the hub
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade: %v", err)
		return
	}

	client := &wsClient{
		hub:  s.wsHub,
		conn: conn,
		send: make(chan []byte, 16),
	}
	s.wsHub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains client messages; clients only listen, so everything but
// control frames is discarded.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// hubSubscriber bridges the notification service into the WebSocket hub.
type hubSubscriber struct {
	id  string
	hub *WebSocketHub
}

func newHubSubscriber(hub *WebSocketHub) *hubSubscriber {
	return &hubSubscriber{
		id:  "ws-hub-" + uuid.New().String(),
		hub: hub,
	}
}

func (s *hubSubscriber) ID() string { return s.id }

func (s *hubSubscriber) Send(n notifications.Notification) error {
	s.hub.Broadcast("notification", n)
	return nil
}
