// Package transport defines the interface for the surfaces a host uses to
// drive the agent.
//
// Each transport (HTTP, gRPC) implements this interface. Transports don't
// know how an action is carried out; they only work with the Agent contract.
package transport

import (
	"context"

	"github.com/hihouhou/huginn-tts-agent/internal/event"
)

// Agent is the set of operations a host can invoke.
type Agent interface {
	// Receive runs one action per incoming event.
	Receive(ctx context.Context, events []event.Event) error

	// Check runs one action on the agent's own options.
	Check(ctx context.Context) error

	// DryRun runs one action and returns the events it would emit.
	DryRun(ctx context.Context, in *event.Event) ([]event.Event, error)

	// Working reports whether the agent is healthy from the host's point of view.
	Working() bool
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "grpc", "http").
	Name() string

	// Listen starts accepting requests and hands them to the agent.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, agent Agent) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
