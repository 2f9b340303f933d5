// Package event defines the events exchanged with the host and the sinks
// that emitted events are written to.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is a unit of data flowing between the host and the agent.
type Event struct {
	// ID is a unique identifier for this event (UUID).
	ID string `json:"id"`

	// Agent names the agent that created the event. Empty for incoming events.
	Agent string `json:"agent,omitempty"`

	// Payload is the event body. Agent options are interpolated against it.
	Payload map[string]any `json:"payload"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"created_at"`
}

// New creates an event with a fresh ID.
func New(agent string, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Agent:     agent,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// DecodeBatch accepts either a single JSON event or a JSON array of events.
// Incoming events without an ID get one.
func DecodeBatch(data []byte) ([]Event, error) {
	var events []Event
	switch firstNonSpace(data) {
	case '[':
		if err := json.Unmarshal(data, &events); err != nil {
			return nil, fmt.Errorf("decoding events: %w", err)
		}
	case '{':
		var e Event
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("decoding event: %w", err)
		}
		events = []Event{e}
	default:
		return nil, fmt.Errorf("decoding events: expected a JSON object or array")
	}

	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.NewString()
		}
		if events[i].CreatedAt.IsZero() {
			events[i].CreatedAt = time.Now().UTC()
		}
	}
	return events, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b
	}
	return 0
}

// Emitter delivers events created by the agent to the host.
type Emitter interface {
	Emit(ctx context.Context, e Event) error
}
