// Package tts defines the capability interface for text-to-speech providers.
//
// The agent asks a provider to synthesize text and gets back the provider's
// history record for that synthesis. The audio itself stays with the
// provider; only its metadata flows back into the host as an event.
package tts

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider selects the text-to-speech backend.
type Provider string

const (
	// ProviderElevenLabs is the ElevenLabs REST API.
	ProviderElevenLabs Provider = "elevenlabs"
)

// Providers lists every supported provider.
var Providers = []Provider{ProviderElevenLabs}

// ParseProvider validates a configured provider name.
func ParseProvider(name string) (Provider, error) {
	for _, p := range Providers {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (supported: %v)", name, Providers)
}

// Synthesizer converts text to audio on the provider side.
type Synthesizer interface {
	// Synthesize requests a new synthesis of text using apiKey and returns the
	// provider's metadata record describing it. Each call creates a new
	// synthesis; results are never cached.
	Synthesize(ctx context.Context, apiKey, text string) (*HistoryRecord, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// VoiceSettings are the voice parameters the provider used for a synthesis.
type VoiceSettings struct {
	SimilarityBoost float64 `json:"similarity_boost"`
	Stability       float64 `json:"stability"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// HistoryRecord is one provider-side history entry.
//
// The known fields are decoded for convenience. The record is otherwise
// opaque: the original JSON object is kept so that fields the client does
// not know about survive into the emitted event.
type HistoryRecord struct {
	HistoryItemID            string          `json:"history_item_id"`
	RequestID                string          `json:"request_id,omitempty"`
	VoiceID                  string          `json:"voice_id,omitempty"`
	ModelID                  string          `json:"model_id,omitempty"`
	VoiceName                string          `json:"voice_name,omitempty"`
	VoiceCategory            string          `json:"voice_category,omitempty"`
	Text                     string          `json:"text,omitempty"`
	DateUnix                 int64           `json:"date_unix,omitempty"`
	CharacterCountChangeFrom int             `json:"character_count_change_from"`
	CharacterCountChangeTo   int             `json:"character_count_change_to"`
	ContentType              string          `json:"content_type,omitempty"`
	State                    string          `json:"state,omitempty"`
	Settings                 *VoiceSettings  `json:"settings,omitempty"`
	Feedback                 json.RawMessage `json:"feedback,omitempty"`
	ShareLinkID              *string         `json:"share_link_id,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON decodes the known fields and keeps the raw object.
func (r *HistoryRecord) UnmarshalJSON(data []byte) error {
	type plain HistoryRecord
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = HistoryRecord(p)
	r.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON emits the record exactly as the provider returned it when
// available, otherwise the known fields.
func (r HistoryRecord) MarshalJSON() ([]byte, error) {
	if len(r.raw) > 0 {
		return r.raw, nil
	}
	type plain HistoryRecord
	return json.Marshal(plain(r))
}

// Payload returns the record as a generic mapping, suitable as an event payload.
func (r *HistoryRecord) Payload() (map[string]any, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encoding history record: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decoding history record: %w", err)
	}
	return m, nil
}

// HistoryPage is one page of the provider's synthesis history.
type HistoryPage struct {
	LastHistoryItemID string          `json:"last_history_item_id"`
	History           []HistoryRecord `json:"history"`
	HasMore           bool            `json:"has_more"`
}

// Latest returns the record the page points at with LastHistoryItemID.
func (p *HistoryPage) Latest() (*HistoryRecord, error) {
	if p.LastHistoryItemID == "" {
		return nil, &RecordNotFoundError{}
	}
	for i := range p.History {
		if p.History[i].HistoryItemID == p.LastHistoryItemID {
			return &p.History[i], nil
		}
	}
	return nil, &RecordNotFoundError{HistoryItemID: p.LastHistoryItemID}
}
