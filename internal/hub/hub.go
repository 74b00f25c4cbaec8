// Package hub multiplexes evaluated events to live subscribers and keeps a
// bounded history of recently published events.
package hub

import (
	"log/slog"
	"sync"

	"github.com/soulkill3r/pythia/internal/logging"
	"github.com/soulkill3r/pythia/internal/metrics"
	"github.com/soulkill3r/pythia/internal/models"
)

// HistoryCap is the maximum number of events kept in history; it is replayed
// to new subscribers on connect.
const HistoryCap = 100

// Conn is a send-only subscriber connection from the hub's perspective.
type Conn interface {
	// Send delivers one event to the subscriber. A non-nil error marks the
	// connection dead; the hub removes it and never calls Send again.
	Send(event models.EvaluatedEvent) error
}

// Hub owns the live connection set and the history buffer. All mutations are
// serialized behind one mutex so a connect racing a publish sees the
// pre-publish or post-publish history, never a partial one.
type Hub struct {
	mu       sync.Mutex
	history  []models.EvaluatedEvent
	capacity int
	conns    map[Conn]struct{}
	logger   *slog.Logger
}

// New constructs a Hub with the default history capacity.
func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		capacity: HistoryCap,
		conns:    make(map[Conn]struct{}),
		logger:   logger,
	}
}

// Connect registers a subscriber and replays the current history to it in
// publish order. If any replayed send fails the connection is treated as
// dead immediately and not retained.
func (h *Hub) Connect(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, event := range h.history {
		if err := conn.Send(event); err != nil {
			h.logger.Warn("history replay failed, dropping subscriber", logging.Error(err))
			metrics.SubscriberSendErrors.Inc()
			return
		}
	}

	h.conns[conn] = struct{}{}
	metrics.Subscribers.Set(float64(len(h.conns)))
	h.logger.Info("subscriber connected", logging.Subscribers(len(h.conns)))
}

// Disconnect removes a subscriber. Disconnecting an unknown connection is a
// no-op.
func (h *Hub) Disconnect(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; !ok {
		return
	}
	delete(h.conns, conn)
	metrics.Subscribers.Set(float64(len(h.conns)))
	h.logger.Info("subscriber disconnected", logging.Subscribers(len(h.conns)))
}

// Publish appends the event to history, evicting the oldest entry at
// capacity, then multicasts it to every live subscriber. Connections whose
// send fails are pruned after the full pass; one dead subscriber never
// blocks delivery to the others.
func (h *Hub) Publish(event models.EvaluatedEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, event)
	if len(h.history) > h.capacity {
		h.history = h.history[1:]
	}

	var dead []Conn
	for conn := range h.conns {
		if err := conn.Send(event); err != nil {
			h.logger.Warn("subscriber send failed", logging.Error(err))
			metrics.SubscriberSendErrors.Inc()
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.conns, conn)
	}
	if len(dead) > 0 {
		metrics.Subscribers.Set(float64(len(h.conns)))
	}
}

// History returns a copy of the current history buffer in publish order.
func (h *Hub) History() []models.EvaluatedEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]models.EvaluatedEvent, len(h.history))
	copy(out, h.history)
	return out
}

// SubscriberCount returns the number of live connections.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
