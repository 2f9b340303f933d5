package event

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Webhook posts events to the host's event endpoint.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook creates a webhook emitter. timeout bounds each delivery.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{url: url, client: &http.Client{Timeout: timeout}}
}

// Emit delivers the event via POST.
func (w *Webhook) Emit(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("webhook emit: marshalling event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("webhook emit: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook emit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook emit: status %d: %s", resp.StatusCode, body)
	}

	slog.Debug("webhook emit success", "target", w.url, "event_id", e.ID, "status", resp.StatusCode)
	return nil
}

// Log writes events to the structured log. It is the sink when no host
// endpoint is configured.
type Log struct{}

// Emit logs the event.
func (Log) Emit(_ context.Context, e Event) error {
	slog.Info("event created", "event_id", e.ID, "agent", e.Agent, "payload", e.Payload)
	return nil
}

// Collector keeps emitted events in memory. Dry runs use it to return events
// instead of sending them.
type Collector struct {
	mu     sync.Mutex
	events []Event
}

// Emit records the event.
func (c *Collector) Emit(_ context.Context, e Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

// Events returns a copy of the recorded events.
func (c *Collector) Events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}
