// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package websocket

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/metrics"
)

// Message types.
const (
	MessageTypeNotification = "notification"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// Message is the JSON frame exchanged with clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type delivery struct {
	userID string
	msg    Message
}

// Hub routes messages to the connections of each account. The registry is
// guarded by mu; Run drains the delivery queue.
type Hub struct {
	clients    map[string]map[*Client]struct{}
	deliveries chan delivery
	mu         sync.RWMutex

	// AllowedOrigins is matched against the Origin header on upgrade.
	// "*" allows any origin.
	AllowedOrigins []string
}

// NewHub creates an idle hub; call Run to start it.
func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:        make(map[string]map[*Client]struct{}),
		deliveries:     make(chan delivery, 256),
		AllowedOrigins: allowedOrigins,
	}
}

// Run delivers queued messages until ctx is done, then closes every
// connection.
func (h *Hub) Run(ctx context.Context) error {
	for {
		// Shutdown wins over pending deliveries.
		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		default:
		}

		select {
		case <-ctx.Done():
			h.closeAll()
			return ctx.Err()
		case d := <-h.deliveries:
			h.deliver(d)
		}
	}
}

// Register adds c to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.mu.Unlock()
	metrics.WebSocketConnections.Inc()
	logging.Debug().Str("user_id", c.userID).Msg("WebSocket client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// dropLocked removes c and closes its queue. Callers hold h.mu.
func (h *Hub) dropLocked(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
	close(c.send)
	metrics.WebSocketConnections.Dec()
}

// deliver queues d on each of the user's connections in id order. A client
// whose queue is full is dropped; it reconnects and reads the inbox.
func (h *Hub) deliver(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.clients[d.userID]
	clients := make([]*Client, 0, len(set))
	for c := range set {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, c := range clients {
		select {
		case c.send <- d.msg:
		default:
			logging.Warn().Str("user_id", d.userID).Msg("WebSocket client too slow, dropping connection")
			h.dropLocked(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, set := range h.clients {
		for c := range set {
			h.dropLocked(c)
			n++
		}
	}
	logging.Info().Int("clients_closed", n).Msg("WebSocket hub stopped")
}

// SendToUser queues a message for every connection of userID. It never
// blocks; when the hub is saturated the message is dropped and false is
// returned.
func (h *Hub) SendToUser(userID, msgType string, data any) bool {
	select {
	case h.deliveries <- delivery{userID: userID, msg: Message{Type: msgType, Data: data}}:
		return true
	default:
		logging.Warn().Str("message_type", msgType).Msg("WebSocket delivery queue full, dropping message")
		return false
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// UserClientCount returns the number of open connections of userID.
func (h *Hub) UserClientCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients; they authenticated with a bearer token.
		return true
	}
	for _, allowed := range h.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// Upgrade switches r to a WebSocket bound to userID and starts its pumps.
// On failure the upgrader has already written an HTTP error.
func (h *Hub) Upgrade(w http.ResponseWriter, r *http.Request, userID string) error {
	upgrader := websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := NewClient(h, conn, userID)
	h.Register(c)
	c.Start()
	return nil
}
