// huginn-tts-agent is a text-to-speech agent daemon. It turns text into
// speech through the provider API and emits the provider's history record
// for each synthesis as an event to its host.
//
// Usage:
//
//	huginn-tts-agent [flags]
//	huginn-tts-agent --config /path/to/huginn-tts-agent.yaml
//	huginn-tts-agent --once
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/hihouhou/huginn-tts-agent/docs"
	"github.com/hihouhou/huginn-tts-agent/internal/agent"
	"github.com/hihouhou/huginn-tts-agent/internal/config"
	"github.com/hihouhou/huginn-tts-agent/internal/event"
	"github.com/hihouhou/huginn-tts-agent/internal/health"
	"github.com/hihouhou/huginn-tts-agent/internal/transport"
	grpctransport "github.com/hihouhou/huginn-tts-agent/internal/transport/grpc"
	httptransport "github.com/hihouhou/huginn-tts-agent/internal/transport/http"
	"github.com/hihouhou/huginn-tts-agent/internal/tts"
	"github.com/hihouhou/huginn-tts-agent/internal/tts/elevenlabs"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/huginn-tts-agent.yaml)")
	once := flag.Bool("once", false, "run the agent once on its own options and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("huginn-tts-agent %s\n", version)
		os.Exit(0)
	}

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("huginn-tts-agent starting", "version", version, "agent", cfg.Agent.Name)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize the provider backend. Config validation already rejected
	// unknown providers.
	var synth tts.Synthesizer
	switch tts.Provider(cfg.Agent.Type) {
	case tts.ProviderElevenLabs:
		synth = elevenlabs.New(cfg.Providers.ElevenLabs, cfg.Agent.Debug)
		slog.Info("using ElevenLabs provider",
			"voice_id", cfg.Providers.ElevenLabs.VoiceID,
			"model_id", cfg.Providers.ElevenLabs.ModelID)
	default:
		slog.Error("unknown provider", "type", cfg.Agent.Type)
		os.Exit(1)
	}

	// Initialize the event sink.
	var emitter event.Emitter = event.Log{}
	if cfg.Events.WebhookURL != "" {
		emitter = event.NewWebhook(cfg.Events.WebhookURL, cfg.Events.Timeout)
		slog.Info("emitting events to host", "url", cfg.Events.WebhookURL)
	}

	ttsAgent, err := agent.New(cfg.Agent, synth, emitter)
	if err != nil {
		slog.Error("failed to create agent", "error", err)
		os.Exit(1)
	}
	defer ttsAgent.Close()

	if *once {
		if err := ttsAgent.Check(ctx); err != nil {
			slog.Error("check failed", "error", err)
			ttsAgent.Close()
			os.Exit(1)
		}
		return
	}

	// Initialize enabled transports.
	var transports []transport.Transport

	if cfg.Transports.GRPC.Enabled {
		transports = append(transports, grpctransport.New(cfg.Transports.GRPC.Port, cfg.Transports.GRPC.RefreshInterval))
	}
	if cfg.Transports.HTTP.Enabled {
		transports = append(transports, httptransport.New(cfg.Transports.HTTP.Port))
	}

	if len(transports) == 0 {
		slog.Error("no transports enabled, enable at least one in config")
		os.Exit(1)
	}

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, ttsAgent.Working)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start all transports.
	var wg sync.WaitGroup
	for _, t := range transports {
		wg.Add(1)
		go func(t transport.Transport) {
			defer wg.Done()
			slog.Info("starting transport", "name", t.Name())
			if err := t.Listen(ctx, ttsAgent); err != nil {
				slog.Error("transport failed", "name", t.Name(), "error", err)
			}
		}(t)
	}

	// Mark as ready once all transports are started.
	healthServer.SetReady(true)
	slog.Info("huginn-tts-agent ready",
		"transports", len(transports),
		"health_port", cfg.Server.HealthPort)

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	// Close all transports gracefully.
	for _, t := range transports {
		if err := t.Close(); err != nil {
			slog.Error("transport close error", "name", t.Name(), "error", err)
		}
	}

	wg.Wait()
	slog.Info("huginn-tts-agent stopped")
}
