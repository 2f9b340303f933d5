// Package grpc implements the gRPC transport for the agent.
//
// The transport serves the standard grpc.health.v1.Health service so that
// orchestrators and hosts can probe the agent's working state with stock
// tooling (grpc_health_probe, Kubernetes gRPC probes). The overall status
// follows agent.Working and is refreshed on an interval.
package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/hihouhou/huginn-tts-agent/internal/transport"
)

// Transport implements transport.Transport over gRPC.
type Transport struct {
	port     int
	interval time.Duration
	server   *grpc.Server
	health   *health.Server
}

// New creates a new gRPC transport on the given port. The health status is
// re-evaluated every interval.
func New(port int, interval time.Duration) *Transport {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Transport{
		port:     port,
		interval: interval,
		server:   grpc.NewServer(),
		health:   health.NewServer(),
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "grpc" }

// Listen starts the gRPC server on the configured port.
func (t *Transport) Listen(ctx context.Context, agent transport.Agent) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", t.port))
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}
	slog.Info("grpc transport listening", "port", t.port)
	return t.Serve(ctx, lis, agent)
}

// Serve runs the gRPC server on lis until the context is cancelled.
func (t *Transport) Serve(ctx context.Context, lis net.Listener, agent transport.Agent) error {
	healthpb.RegisterHealthServer(t.server, t.health)
	t.refresh(agent)

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				slog.Info("grpc transport shutting down")
				t.health.Shutdown()
				t.server.GracefulStop()
				return
			case <-ticker.C:
				t.refresh(agent)
			}
		}
	}()

	return t.server.Serve(lis)
}

func (t *Transport) refresh(agent transport.Agent) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if agent.Working() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	t.health.SetServingStatus("", status)
}

// Close gracefully stops the gRPC server.
func (t *Transport) Close() error {
	t.health.Shutdown()
	t.server.GracefulStop()
	return nil
}
