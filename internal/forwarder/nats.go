// Package forwarder mirrors accepted events to a NATS subject so downstream
// consumers can tap the stream without holding a subscriber connection.
package forwarder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/soulkill3r/pythia/internal/models"
)

// NATSForwarder publishes evaluated events to a single subject.
type NATSForwarder struct {
	conn    *nats.Conn
	subject string
}

// Connect establishes the NATS connection. Reconnects are handled by the
// client; a broker outage degrades forwarding, never the pipeline.
func Connect(url, subject, name string) (*NATSForwarder, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSForwarder{conn: conn, subject: subject}, nil
}

// Forward publishes one event as JSON.
func (f *NATSForwarder) Forward(ctx context.Context, event models.EvaluatedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := f.conn.Publish(f.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close drains the connection, letting in-flight messages complete.
func (f *NATSForwarder) Close() error {
	if f.conn == nil {
		return nil
	}
	return f.conn.Drain()
}
