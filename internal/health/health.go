// Package health provides simple HTTP liveness endpoints.
//
// /healthz and /readyz report that the daemon is up and accepting work.
// /working reports the agent's own notion of health: an event was emitted
// recently and nothing failed since. Hosts use it to flag stalled agents.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Server is a lightweight HTTP server that exposes the health endpoints.
type Server struct {
	port    int
	working func() bool
	ready   atomic.Bool
	server  *http.Server
}

// New creates a new health check server. working reports the agent state.
func New(port int, working func() bool) *Server {
	return &Server{port: port, working: working}
}

// SetReady marks the daemon as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// Handler returns the health endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, true, "ok", "not_ready")
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, s.ready.Load(), "ok", "not_ready")
	})

	mux.HandleFunc("GET /working", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, s.working(), "working", "not_working")
	})

	return mux
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}

func writeStatus(w http.ResponseWriter, ok bool, up, down string) {
	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": down})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": up})
}
