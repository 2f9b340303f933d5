package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/hihouhou/huginn-tts-agent/internal/tts"
)

// ValidationError lists every problem found in the configuration or in the
// inputs of a single action.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) add(problem string) {
	e.Problems = append(e.Problems, problem)
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

// Validate checks the configuration before the agent starts. It returns a
// *ValidationError describing all problems at once.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	provider, err := tts.ParseProvider(c.Agent.Type)
	if err != nil {
		verr.add("type has invalid value: should be 'elevenlabs'")
	}
	if provider == tts.ProviderElevenLabs && c.Agent.APIKey == "" {
		verr.add("api_key is a required field")
	}
	if name, ok := envRefName(c.Agent.APIKey); ok {
		verr.add(fmt.Sprintf("api_key references unset environment variable %s", name))
	}
	if c.Agent.Text == "" {
		verr.add("text is a required field")
	}
	if c.Agent.ExpectedReceivePeriodInDays <= 0 {
		verr.add("expected_receive_period_in_days must be a positive number of days after which the agent is considered not working")
	}
	if c.Agent.Concurrency <= 0 {
		verr.add("concurrency must be at least 1")
	}

	if provider == tts.ProviderElevenLabs {
		el := c.Providers.ElevenLabs
		if u, err := url.Parse(el.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			verr.add("providers.elevenlabs.base_url must be an absolute URL")
		}
		if el.VoiceID == "" {
			verr.add("providers.elevenlabs.voice_id is a required field")
		}
		if el.ModelID == "" {
			verr.add("providers.elevenlabs.model_id is a required field")
		}
		if el.Timeout <= 0 {
			verr.add("providers.elevenlabs.timeout must be positive")
		}
	}

	if name, ok := envRefName(c.Events.WebhookURL); ok {
		verr.add(fmt.Sprintf("events.webhook_url references unset environment variable %s", name))
	} else if c.Events.WebhookURL != "" {
		if u, err := url.Parse(c.Events.WebhookURL); err != nil || u.Scheme == "" || u.Host == "" {
			verr.add("events.webhook_url must be an absolute URL")
		}
	}

	return verr.orNil()
}

// RequireInputs checks the per-action inputs after interpolation.
func RequireInputs(apiKey, text string) error {
	verr := &ValidationError{}
	if apiKey == "" {
		verr.add("api_key is empty after interpolation")
	}
	if text == "" {
		verr.add("text is empty after interpolation")
	}
	return verr.orNil()
}
