//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_Publish(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()
	logger := slog.Default()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), logger)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	opts := []nats.Option{}
	if tok := os.Getenv("NATS_TOKEN"); tok != "" {
		opts = append(opts, nats.Token(tok))
	}
	sub, err := nats.Connect(natsURL, opts...)
	if err != nil {
		t.Fatalf("subscriber connect failed: %v", err)
	}
	defer sub.Close()

	received := make(chan map[string]any, 1)
	_, err = sub.Subscribe("digest.test.>", func(msg *nats.Msg) {
		var body map[string]any
		json.Unmarshal(msg.Data, &body)
		received <- body
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	if err := sub.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	err = client.Publish("digest.test.completed", map[string]any{
		"snapshot_id": 42,
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case msg := <-received:
		if msg["snapshot_id"] != float64(42) {
			t.Errorf("expected snapshot_id 42, got %v", msg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
