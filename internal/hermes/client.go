package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	connectTimeout = 2 * time.Second
	flushTimeout   = 5 * time.Second
)

// Client publishes run events to NATS.
type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

// NewClient connects once and fails if the server is unreachable. Later drops
// reconnect in the background.
func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("digest"),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// Publish sends data as JSON on subject.
func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	if err := c.conn.Publish(subject, payload); err != nil {
		return err
	}
	c.logger.Debug("published event", "subject", subject, "bytes", len(payload))
	return nil
}

// Close flushes pending events and closes the connection.
func (c *Client) Close() {
	if c.conn.IsConnected() {
		if err := c.conn.FlushTimeout(flushTimeout); err != nil {
			c.logger.Warn("nats flush failed", "error", err)
		}
	}
	c.conn.Close()
}
