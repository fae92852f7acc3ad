package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/philipparndt/goslice/internal/app"
)

const (
	writeWait   = 2 * time.Second
	maxInbound  = 4096
	messageKind = websocket.TextMessage
)

// Message is pushed to every connected browser
type Message struct {
	Type   string      `json:"type"` // "fields" or "frame"
	Fields *app.Fields `json:"fields,omitempty"`
	Viewer string      `json:"viewer,omitempty"`
}

// Event is sent by a browser when the user edits an input or drags a viewer
type Event struct {
	Type      string  `json:"type"` // "position", "layer" or "orbit"
	Value     string  `json:"value,omitempty"`
	Viewer    string  `json:"viewer,omitempty"`
	Elevation float64 `json:"elevation,omitempty"`
	Azimuth   float64 `json:"azimuth,omitempty"`
	Zoom      float64 `json:"zoom,omitempty"`
}

// EventHandler applies a browser event
type EventHandler func(ctx context.Context, ev Event) error

// Hub fans field updates and frame notifications out to websocket clients.
// It implements app.Display. Pending messages are coalesced: only the
// newest fields and one notice per viewer wait for delivery.
type Hub struct {
	upgrader websocket.Upgrader
	wake     chan struct{}
	logger   *slog.Logger

	pmu    sync.Mutex
	fields *app.Fields
	frames []string
	queued map[string]bool

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	last    *app.Fields
	handler EventHandler
}

// NewHub creates a hub; call Run to start delivering messages
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		wake:    make(chan struct{}, 1),
		queued:  make(map[string]bool),
		clients: make(map[*websocket.Conn]bool),
		logger:  logger,
	}
}

// Handle sets the function applying inbound events
func (h *Hub) Handle(fn EventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = fn
}

// Update queues the fields for broadcast, replacing any fields not yet
// sent. It never blocks.
func (h *Hub) Update(fields app.Fields) {
	h.mu.Lock()
	h.last = &fields
	h.mu.Unlock()

	h.pmu.Lock()
	h.fields = &fields
	h.pmu.Unlock()
	h.signal()
}

// NotifyFrame tells clients that a viewer has a new frame
func (h *Hub) NotifyFrame(target string) {
	h.pmu.Lock()
	if !h.queued[target] {
		h.queued[target] = true
		h.frames = append(h.frames, target)
	}
	h.pmu.Unlock()
	h.signal()
}

func (h *Hub) signal() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// flush takes the pending messages, fields first
func (h *Hub) flush() []Message {
	h.pmu.Lock()
	defer h.pmu.Unlock()

	msgs := make([]Message, 0, len(h.frames)+1)
	if h.fields != nil {
		msgs = append(msgs, Message{Type: "fields", Fields: h.fields})
		h.fields = nil
	}
	for _, target := range h.frames {
		msgs = append(msgs, Message{Type: "frame", Viewer: target})
		delete(h.queued, target)
	}
	h.frames = h.frames[:0]
	return msgs
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Run delivers queued messages until ctx is done, then closes every client
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return nil
		case <-h.wake:
			for _, msg := range h.flush() {
				h.broadcast(msg)
			}
		}
	}
}

func (h *Hub) broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.WriteMessage(messageKind, data); err != nil {
			h.logger.Debug("websocket write failed", "remote", client.RemoteAddr().String(), "error", err)
			_ = client.Close()
			delete(h.clients, client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.Close()
		delete(h.clients, client)
	}
}

// ServeHTTP upgrades the connection, sends the current fields and applies
// inbound events until the client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(maxInbound)

	h.mu.Lock()
	h.clients[conn] = true
	last := h.last
	handler := h.handler
	if last != nil {
		data, _ := json.Marshal(Message{Type: "fields", Fields: last})
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(messageKind, data)
	}
	h.mu.Unlock()

	h.logger.Debug("websocket client connected", "remote", conn.RemoteAddr().String())

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		_ = conn.Close()
		h.logger.Debug("websocket client disconnected", "remote", conn.RemoteAddr().String())
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", "error", err)
			}
			return
		}
		if handler == nil {
			continue
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			h.logger.Warn("malformed event", "error", err)
			continue
		}
		if err := handler(r.Context(), ev); err != nil {
			h.logger.Warn("event rejected", "type", ev.Type, "error", err)
		}
	}
}
