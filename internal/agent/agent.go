// Package agent implements the text-to-speech agent driven by the host.
//
// The host either hands the agent a batch of events (Receive) or asks it to
// run once on its own options (Check). Each action interpolates the options
// against the event payload, asks the synthesizer for a new synthesis and
// emits the provider's history record as a new event. Failures are returned
// to the host; nothing is retried here.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/hihouhou/huginn-tts-agent/internal/config"
	"github.com/hihouhou/huginn-tts-agent/internal/event"
	"github.com/hihouhou/huginn-tts-agent/internal/tts"
)

// errorGrace is how far before the last event an error still counts as recent.
const errorGrace = 2 * time.Minute

// Agent is the text-to-speech agent.
type Agent struct {
	name    string
	apiKey  *Option
	text    *Option
	period  time.Duration
	synth   tts.Synthesizer
	emitter event.Emitter
	pool    *ants.Pool
	now     func() time.Time

	mu          sync.Mutex
	lastEventAt time.Time
	lastErrorAt time.Time
}

// New creates an agent from its options. Received batches are processed by
// at most cfg.Concurrency workers.
func New(cfg config.AgentConfig, synth tts.Synthesizer, emitter event.Emitter) (*Agent, error) {
	apiKey, err := ParseOption("api_key", cfg.APIKey)
	if err != nil {
		return nil, err
	}
	text, err := ParseOption("text", cfg.Text)
	if err != nil {
		return nil, err
	}

	size := cfg.Concurrency
	if size <= 0 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	return &Agent{
		name:    cfg.Name,
		apiKey:  apiKey,
		text:    text,
		period:  cfg.ExpectedReceivePeriod(),
		synth:   synth,
		emitter: emitter,
		pool:    pool,
		now:     time.Now,
	}, nil
}

// Name returns the agent name used on emitted events.
func (a *Agent) Name() string { return a.name }

// Receive runs one action per incoming event. Every event completes both
// provider calls before its result is emitted. Failures of individual
// events are joined into the returned error.
func (a *Agent) Receive(ctx context.Context, events []event.Event) error {
	errs := make([]error, len(events))
	var wg sync.WaitGroup
	for i, in := range events {
		wg.Add(1)
		err := a.pool.Submit(func() {
			defer wg.Done()
			errs[i] = a.trigger(ctx, in.ID, in.Payload, a.emitter, true)
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("event %s: scheduling: %w", in.ID, err)
		}
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Check runs one action using the options alone.
func (a *Agent) Check(ctx context.Context) error {
	return a.trigger(ctx, "", nil, a.emitter, true)
}

// DryRun runs one action, against in when given, and returns the events it
// would have emitted without sending them or touching the working state.
func (a *Agent) DryRun(ctx context.Context, in *event.Event) ([]event.Event, error) {
	var (
		id      string
		payload map[string]any
	)
	if in != nil {
		id, payload = in.ID, in.Payload
	}
	var collector event.Collector
	if err := a.trigger(ctx, id, payload, &collector, false); err != nil {
		return nil, err
	}
	return collector.Events(), nil
}

// Working reports whether the agent emitted an event within the expected
// receive period and has not failed since.
func (a *Agent) Working() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.lastEventAt.IsZero() || a.now().Sub(a.lastEventAt) > a.period {
		return false
	}
	return a.lastErrorAt.IsZero() || a.lastErrorAt.Before(a.lastEventAt.Add(-errorGrace))
}

// Close stops the worker pool and releases the synthesizer.
func (a *Agent) Close() error {
	a.pool.Release()
	return a.synth.Close()
}

func (a *Agent) trigger(ctx context.Context, eventID string, payload map[string]any, emitter event.Emitter, record bool) error {
	start := a.now()
	logger := slog.With("agent", a.name)
	if eventID != "" {
		logger = logger.With("event_id", eventID)
		logger.Info("event received", "payload", payload)
	}

	err := a.synthesizeAndEmit(ctx, logger, payload, emitter)
	if err != nil {
		logger.Error("action failed", "error", err)
		if record {
			a.markError()
		}
		if eventID != "" {
			return fmt.Errorf("event %s: %w", eventID, err)
		}
		return err
	}

	if record {
		a.markEvent()
	}
	logger.Info("action complete", "duration", a.now().Sub(start))
	return nil
}

func (a *Agent) synthesizeAndEmit(ctx context.Context, logger *slog.Logger, payload map[string]any, emitter event.Emitter) error {
	apiKey, err := a.apiKey.Render(payload)
	if err != nil {
		return err
	}
	text, err := a.text.Render(payload)
	if err != nil {
		return err
	}
	if err := config.RequireInputs(apiKey, text); err != nil {
		return err
	}

	rec, err := a.synth.Synthesize(ctx, apiKey, text)
	if err != nil {
		return err
	}

	out, err := rec.Payload()
	if err != nil {
		return err
	}
	created := event.New(a.name, out)
	if err := emitter.Emit(ctx, created); err != nil {
		return fmt.Errorf("emitting event: %w", err)
	}
	logger.Info("event emitted", "emitted_id", created.ID, "history_item_id", rec.HistoryItemID)
	return nil
}

func (a *Agent) markEvent() {
	a.mu.Lock()
	a.lastEventAt = a.now()
	a.mu.Unlock()
}

func (a *Agent) markError() {
	a.mu.Lock()
	a.lastErrorAt = a.now()
	a.mu.Unlock()
}
