package grpc

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/hihouhou/huginn-tts-agent/internal/event"
)

type fakeAgent struct {
	working atomic.Bool
}

func (f *fakeAgent) Receive(context.Context, []event.Event) error { return nil }

func (f *fakeAgent) Check(context.Context) error { return nil }

func (f *fakeAgent) DryRun(context.Context, *event.Event) ([]event.Event, error) {
	return nil, nil
}

func (f *fakeAgent) Working() bool { return f.working.Load() }

func TestHealthFollowsWorking(t *testing.T) {
	agent := &fakeAgent{}
	lis := bufconn.Listen(1 << 20)
	tr := New(0, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tr.Serve(ctx, lis, agent) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	waitFor := func(want healthpb.HealthCheckResponse_ServingStatus) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for {
			resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
			if err == nil && resp.GetStatus() == want {
				return
			}
			if time.Now().After(deadline) {
				t.Fatalf("status never became %v (last: %v, err %v)", want, resp.GetStatus(), err)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}

	waitFor(healthpb.HealthCheckResponse_NOT_SERVING)
	agent.working.Store(true)
	waitFor(healthpb.HealthCheckResponse_SERVING)
	agent.working.Store(false)
	waitFor(healthpb.HealthCheckResponse_NOT_SERVING)
}

func TestName(t *testing.T) {
	if got := New(50051, 0).Name(); got != "grpc" {
		t.Errorf("Name() = %q", got)
	}
}
