package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "huginn-tts-agent.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
agent:
  api_key: key-123
  text: "{{ text }}"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Agent.Type != "elevenlabs" {
		t.Errorf("Agent.Type = %q", cfg.Agent.Type)
	}
	if cfg.Agent.ExpectedReceivePeriodInDays != 2 {
		t.Errorf("ExpectedReceivePeriodInDays = %d, want 2", cfg.Agent.ExpectedReceivePeriodInDays)
	}
	if cfg.Agent.ExpectedReceivePeriod() != 48*time.Hour {
		t.Errorf("ExpectedReceivePeriod = %v", cfg.Agent.ExpectedReceivePeriod())
	}
	el := cfg.Providers.ElevenLabs
	if el.VoiceID != "21m00Tcm4TlvDq8ikWAM" || el.ModelID != "eleven_multilingual_v2" {
		t.Errorf("elevenlabs defaults = %+v", el)
	}
	if el.Timeout != 15*time.Second || !el.FailFast {
		t.Errorf("elevenlabs timeout/fail_fast = %v/%v", el.Timeout, el.FailFast)
	}
	if !cfg.Transports.HTTP.Enabled || cfg.Transports.GRPC.Enabled {
		t.Errorf("transports = %+v", cfg.Transports)
	}
}

func TestLoadEnvOverridesAndRefs(t *testing.T) {
	t.Setenv("MY_ELEVEN_KEY", "from-env-ref")
	t.Setenv("HUGINN_TTS_AGENT_DEBUG", "true")
	t.Setenv("HUGINN_TTS_PROVIDERS_ELEVENLABS_TIMEOUT", "3s")

	path := writeConfig(t, `
agent:
  api_key: ${MY_ELEVEN_KEY}
  text: hello
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agent.APIKey != "from-env-ref" {
		t.Errorf("APIKey = %q", cfg.Agent.APIKey)
	}
	if !cfg.Agent.Debug {
		t.Error("Debug not overridden from env")
	}
	if cfg.Providers.ElevenLabs.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Providers.ElevenLabs.Timeout)
	}
}

func TestLoadUnsetEnvRef(t *testing.T) {
	t.Setenv("UNSET_ELEVEN_KEY", "")
	t.Setenv("UNSET_HOOK_URL", "")

	path := writeConfig(t, `
agent:
  api_key: ${UNSET_ELEVEN_KEY}
  text: hello
events:
  webhook_url: ${UNSET_HOOK_URL}
`)
	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	want := []string{
		"api_key references unset environment variable UNSET_ELEVEN_KEY",
		"events.webhook_url references unset environment variable UNSET_HOOK_URL",
	}
	if strings.Join(verr.Problems, "\n") != strings.Join(want, "\n") {
		t.Errorf("problems = %q, want %q", verr.Problems, want)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad type", "agent: {type: polly, api_key: k, text: t}", "type has invalid value"},
		{"missing api key", "agent: {text: t}", "api_key is a required field"},
		{"missing text", "agent: {api_key: k}", "text is a required field"},
		{"zero period", "agent: {api_key: k, text: t, expected_receive_period_in_days: 0}", "expected_receive_period_in_days"},
		{"bad webhook", "agent: {api_key: k, text: t}\nevents: {webhook_url: not-a-url}", "events.webhook_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
			if !strings.Contains(verr.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", verr.Error(), tt.want)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := &Config{Agent: AgentConfig{Type: "elevenlabs", Concurrency: 1}}
	err := cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("got %v, want ValidationError", err)
	}
	// api_key, text, period, base_url, voice_id, model_id, timeout
	if len(verr.Problems) != 7 {
		t.Errorf("got %d problems: %v", len(verr.Problems), verr.Problems)
	}
}

func TestRequireInputs(t *testing.T) {
	if err := RequireInputs("k", "t"); err != nil {
		t.Errorf("RequireInputs(k, t) = %v", err)
	}
	err := RequireInputs("", "")
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Problems) != 2 {
		t.Errorf("RequireInputs(\"\", \"\") = %v", err)
	}
}
