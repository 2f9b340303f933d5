// Package http implements the HTTP transport for the agent.
//
// The host drives the agent through a small REST API: it posts incoming
// events, triggers scheduled checks and dry runs, and polls the working
// state. Swagger UI documents the API under /swagger/.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/hihouhou/huginn-tts-agent/internal/config"
	"github.com/hihouhou/huginn-tts-agent/internal/event"
	"github.com/hihouhou/huginn-tts-agent/internal/transport"
	"github.com/hihouhou/huginn-tts-agent/internal/tts"
)

const maxBodyBytes = 1 << 20

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port   int
	server *http.Server
}

// New creates a new HTTP transport on the given port.
func New(port int) *Transport {
	return &Transport{port: port}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Listen starts the HTTP server and routes incoming requests to the agent.
func (t *Transport) Listen(ctx context.Context, agent transport.Agent) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           NewHandler(agent),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// NewHandler builds the HTTP API around the agent.
func NewHandler(agent transport.Agent) http.Handler {
	h := &handler{agent: agent}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /receive", h.receive)
	mux.HandleFunc("POST /check", h.check)
	mux.HandleFunc("POST /dry_run", h.dryRun)
	mux.HandleFunc("GET /working", h.working)

	// Swagger UI serves the registered OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return mux
}

type handler struct {
	agent transport.Agent
}

// StatusResponse is returned by successful actions.
type StatusResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is returned when an action fails.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
}

// DryRunResponse carries the events a dry run would have emitted.
type DryRunResponse struct {
	Events []event.Event `json:"events"`
}

// WorkingResponse reports the agent's working state.
type WorkingResponse struct {
	Working bool `json:"working"`
}

// receive handles POST /receive.
//
// @Summary     Receive events
// @Description Runs one text-to-speech action per incoming event. Agent options are interpolated
// @Description against each event's payload. Accepts a single event or an array of events.
// @Tags        agent
// @Accept      json
// @Produce     json
// @Param       events  body      []event.Event   true  "Incoming events"
// @Success     200     {object}  StatusResponse
// @Failure     400     {object}  ErrorResponse  "Invalid request body"
// @Failure     422     {object}  ErrorResponse  "Options empty after interpolation"
// @Failure     502     {object}  ErrorResponse  "Provider rejected the request or history lookup failed"
// @Failure     504     {object}  ErrorResponse  "Provider unreachable or timed out"
// @Router      /receive [post]
func (h *handler) receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "reading body: " + err.Error()})
		return
	}
	events, err := event.DecodeBatch(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if err := h.agent.Receive(r.Context(), events); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// check handles POST /check.
//
// @Summary     Run the agent once
// @Description Runs one text-to-speech action using the configured options without an incoming event.
// @Tags        agent
// @Produce     json
// @Success     200  {object}  StatusResponse
// @Failure     422  {object}  ErrorResponse
// @Failure     502  {object}  ErrorResponse
// @Failure     504  {object}  ErrorResponse
// @Router      /check [post]
func (h *handler) check(w http.ResponseWriter, r *http.Request) {
	if err := h.agent.Check(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// dryRun handles POST /dry_run.
//
// @Summary     Dry run
// @Description Runs one action, optionally against the posted event, and returns the events it
// @Description would have emitted. Nothing is sent to the host.
// @Tags        agent
// @Accept      json
// @Produce     json
// @Param       event  body      event.Event  false  "Optional incoming event"
// @Success     200    {object}  DryRunResponse
// @Failure     400    {object}  ErrorResponse
// @Failure     422    {object}  ErrorResponse
// @Failure     502    {object}  ErrorResponse
// @Failure     504    {object}  ErrorResponse
// @Router      /dry_run [post]
func (h *handler) dryRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "reading body: " + err.Error()})
		return
	}

	var in *event.Event
	if len(body) > 0 {
		events, err := event.DecodeBatch(body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		if len(events) != 1 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "dry run takes at most one event"})
			return
		}
		in = &events[0]
	}

	out, err := h.agent.DryRun(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DryRunResponse{Events: out})
}

// working handles GET /working.
//
// @Summary     Working state
// @Description Reports whether an event was emitted within the expected receive period without errors since.
// @Tags        agent
// @Produce     json
// @Success     200  {object}  WorkingResponse
// @Failure     503  {object}  WorkingResponse
// @Router      /working [get]
func (h *handler) working(w http.ResponseWriter, r *http.Request) {
	working := h.agent.Working()
	status := http.StatusOK
	if !working {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, WorkingResponse{Working: working})
}

// statusFor maps the agent's error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var (
		verr *config.ValidationError
		perr *tts.ProviderError
		nerr *tts.RecordNotFoundError
		xerr *tts.ParseError
		lerr *tts.ResponseTooLargeError
		terr *tts.TransportError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &perr), errors.As(err, &nerr), errors.As(err, &xerr), errors.As(err, &lerr):
		return http.StatusBadGateway
	case errors.As(err, &terr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		resp.Problems = verr.Problems
	}
	writeJSON(w, statusFor(err), resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
