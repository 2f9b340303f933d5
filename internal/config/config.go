// Package config handles loading and validating the agent configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hihouhou/huginn-tts-agent/internal/tts"
)

// Config is the root configuration for the agent daemon.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Transports TransportsConfig `mapstructure:"transports"`
	Agent      AgentConfig      `mapstructure:"agent"`
	Providers  ProvidersConfig  `mapstructure:"providers"`
	Events     EventsConfig     `mapstructure:"events"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
}

// GRPCConfig configures the gRPC health transport.
type GRPCConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Port            int           `mapstructure:"port"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// AgentConfig holds the options a host sets on the agent. APIKey and Text may
// reference incoming event fields with {{ path }}.
type AgentConfig struct {
	Name                        string `mapstructure:"name"`
	Type                        string `mapstructure:"type"` // "elevenlabs"
	APIKey                      string `mapstructure:"api_key"`
	Text                        string `mapstructure:"text"`
	Debug                       bool   `mapstructure:"debug"`
	ExpectedReceivePeriodInDays int    `mapstructure:"expected_receive_period_in_days"`
	Concurrency                 int    `mapstructure:"concurrency"` // workers per received batch
}

// ExpectedReceivePeriod is the liveness window as a duration.
func (a AgentConfig) ExpectedReceivePeriod() time.Duration {
	return time.Duration(a.ExpectedReceivePeriodInDays) * 24 * time.Hour
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	ElevenLabs ElevenLabsConfig `mapstructure:"elevenlabs"`
}

// ElevenLabsConfig holds ElevenLabs API settings.
type ElevenLabsConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	VoiceID string        `mapstructure:"voice_id"`
	ModelID string        `mapstructure:"model_id"`
	Timeout time.Duration `mapstructure:"timeout"` // per HTTP call
	// FailFast stops after a failed synthesis call instead of still reading
	// the history.
	FailFast bool `mapstructure:"fail_fast"`
}

// EventsConfig configures where emitted events go.
type EventsConfig struct {
	WebhookURL string        `mapstructure:"webhook_url"` // empty: events are only logged
	Timeout    time.Duration `mapstructure:"timeout"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./huginn-tts-agent.yaml, ./configs/huginn-tts-agent.yaml,
// /etc/huginn-tts-agent/huginn-tts-agent.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.grpc.refresh_interval", "30s")
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 8080)
	v.SetDefault("agent.name", "tts")
	v.SetDefault("agent.type", string(tts.ProviderElevenLabs))
	v.SetDefault("agent.api_key", "")
	v.SetDefault("agent.text", "")
	v.SetDefault("agent.debug", false)
	v.SetDefault("agent.expected_receive_period_in_days", 2)
	v.SetDefault("agent.concurrency", 1)
	v.SetDefault("providers.elevenlabs.base_url", "https://api.elevenlabs.io")
	v.SetDefault("providers.elevenlabs.voice_id", "21m00Tcm4TlvDq8ikWAM")
	v.SetDefault("providers.elevenlabs.model_id", "eleven_multilingual_v2")
	v.SetDefault("providers.elevenlabs.timeout", "15s")
	v.SetDefault("providers.elevenlabs.fail_fast", true)
	v.SetDefault("events.webhook_url", "")
	v.SetDefault("events.timeout", "10s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("huginn-tts-agent")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/huginn-tts-agent")
	}

	// Environment variables: HUGINN_TTS_AGENT_API_KEY, HUGINN_TTS_EVENTS_WEBHOOK_URL, etc.
	v.SetEnvPrefix("HUGINN_TTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional, env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${ELEVENLABS_API_KEY}")
	cfg.Agent.APIKey = resolveEnvRef(cfg.Agent.APIKey)
	cfg.Events.WebhookURL = resolveEnvRef(cfg.Events.WebhookURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// References to unset variables are left in place for Validate to report.
func resolveEnvRef(val string) string {
	if envKey, ok := envRefName(val); ok {
		if envVal := os.Getenv(envKey); envVal != "" {
			return envVal
		}
	}
	return val
}

// envRefName returns VAR_NAME when val is exactly "${VAR_NAME}".
func envRefName(val string) (string, bool) {
	if len(val) > 3 && strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return val[2 : len(val)-1], true
	}
	return "", false
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
