package services

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type WSClient struct {
	UserID string
	Conn   *websocket.Conn
	mu     sync.Mutex
}

const writeWait = 5 * time.Second

func (c *WSClient) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteMessage(messageType, data)
}

// Ping keeps idle connections alive through proxies.
func (c *WSClient) Ping() error { return c.write(websocket.PingMessage, nil) }

// RealtimeHub tracks live websocket connections per user.
type RealtimeHub struct {
	mu      sync.RWMutex
	clients map[string]map[*WSClient]struct{}
	log     *slog.Logger
}

func NewRealtimeHub(log *slog.Logger) *RealtimeHub {
	if log == nil {
		log = slog.Default()
	}
	return &RealtimeHub{clients: make(map[string]map[*WSClient]struct{}), log: log}
}

func (h *RealtimeHub) Register(c *WSClient) {
	h.mu.Lock()
	if h.clients[c.UserID] == nil {
		h.clients[c.UserID] = make(map[*WSClient]struct{})
	}
	h.clients[c.UserID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *RealtimeHub) Unregister(c *WSClient) {
	h.mu.Lock()
	if set := h.clients[c.UserID]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, c.UserID)
		}
	}
	h.mu.Unlock()
	_ = c.Conn.Close()
}

// Connections reports how many sockets a user has open.
func (h *RealtimeHub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

func (h *RealtimeHub) Publish(userID string, ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("encode realtime event", "error", err)
		return
	}
	for _, c := range h.snapshot(userID) {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.log.Warn("realtime write failed", "user_id", userID, "error", err)
		}
	}
}

// snapshot copies a user's clients so writes happen outside the lock.
func (h *RealtimeHub) snapshot(userID string) []*WSClient {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]*WSClient, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		out = append(out, c)
	}
	return out
}
