// Package nats wraps the optional telemetry bus: every broadcast line is
// mirrored to a NATS subject so consumers can tap the feed without a TCP
// connection to the simulator.
package nats

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"github.com/saviobatista/pointing-sim/internal/types"
)

const (
	// SubjectTargetRaw carries raw telemetry lines as published by the
	// target simulator. Core NATS only; history is not persisted.
	SubjectTargetRaw = "telemetry.target.raw"
)

// Client represents a NATS client.
type Client struct {
	conn *nats.Conn
}

// New creates a new NATS client.
func New(url string) (*Client, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &Client{conn: nc}, nil
}

// PublishTelemetryLine publishes one raw telemetry line to the bus.
func (c *Client) PublishTelemetryLine(line *types.TelemetryLine) error {
	data, err := json.Marshal(line)
	if err != nil {
		return fmt.Errorf("failed to marshal telemetry line: %w", err)
	}
	if err := c.conn.Publish(SubjectTargetRaw, data); err != nil {
		return fmt.Errorf("failed to publish telemetry line: %w", err)
	}
	return nil
}

// SubscribeTelemetryLines subscribes to raw telemetry lines.
func (c *Client) SubscribeTelemetryLines(handler func(*types.TelemetryLine)) error {
	_, err := c.conn.Subscribe(SubjectTargetRaw, func(msg *nats.Msg) {
		var line types.TelemetryLine
		if err := json.Unmarshal(msg.Data, &line); err != nil {
			log.Printf("nats: error unmarshaling telemetry line: %v", err)
			return
		}
		handler(&line)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	return nil
}

// Close closes the NATS connection.
func (c *Client) Close() {
	if c.conn != nil {
		c.conn.Close()
	}
}
