package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/vacation-management/internal/core/events"
)

// Message is the JSON frame pushed to websocket clients.
type Message struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	UserID    int64       `json:"userId,omitempty"`
	Data      interface{} `json:"data"`
}

type client struct {
	userID int64
	send   chan []byte
}

// wants reports whether the client subscribed to events about userID. A
// client without a filter receives everything.
func (c *client) wants(userID int64) bool {
	return c.userID == 0 || c.userID == userID
}

// Hub fans vacation events out to connected websocket clients.
type Hub struct {
	mu        sync.RWMutex
	clients   map[*client]struct{}
	queueSize int
	logger    *slog.Logger
}

func NewHub(queueSize int, logger *slog.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 16
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:   make(map[*client]struct{}),
		queueSize: queueSize,
		logger:    logger,
	}
}

// Subscribe registers the hub on bus for every event type.
func (h *Hub) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.AllEvents, h.HandleEvent)
}

func (h *Hub) register(userID int64) *client {
	c := &client{userID: userID, send: make(chan []byte, h.queueSize)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("notification client connected", "user_id", userID, "clients", total)
	return c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("notification client disconnected", "user_id", c.userID, "clients", total)
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleEvent is an events.Handler. Clients whose queue is full are dropped
// rather than blocking the publisher.
func (h *Hub) HandleEvent(ctx context.Context, event events.Event) error {
	subject := events.SubjectUserID(event)
	frame, err := json.Marshal(Message{
		ID:        event.EventID(),
		Type:      event.EventType(),
		Timestamp: event.OccurredAt(),
		UserID:    subject,
		Data:      event.Payload(),
	})
	if err != nil {
		return err
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if !c.wants(subject) {
			continue
		}
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow notification client", "user_id", c.userID)
		h.unregister(c)
	}
	return nil
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
