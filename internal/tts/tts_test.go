package tts

import (
	"encoding/json"
	"errors"
	"testing"
)

const samplePage = `{
	"last_history_item_id": "abc123",
	"history": [
		{"history_item_id": "abc123", "text": "hello", "voice_name": "Rachel", "alignments": {"chars": 5},
		 "settings": {"similarity_boost": 0.75, "stability": 0.5, "style": 0, "use_speaker_boost": true},
		 "feedback": null, "share_link_id": null},
		{"history_item_id": "zzz", "text": "other"}
	],
	"has_more": false
}`

func TestHistoryPageLatest(t *testing.T) {
	var page HistoryPage
	if err := json.Unmarshal([]byte(samplePage), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	rec, err := page.Latest()
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if rec.HistoryItemID != "abc123" || rec.Text != "hello" {
		t.Errorf("got %+v, want abc123/hello", rec)
	}
	if rec.Settings == nil || rec.Settings.SimilarityBoost != 0.75 || !rec.Settings.UseSpeakerBoost {
		t.Errorf("settings not decoded: %+v", rec.Settings)
	}
}

func TestHistoryPageLatestNotFound(t *testing.T) {
	tests := []struct {
		name   string
		page   HistoryPage
		wantID string
	}{
		{"missing last id", HistoryPage{History: []HistoryRecord{{HistoryItemID: "a"}}}, ""},
		{"no match", HistoryPage{LastHistoryItemID: "b", History: []HistoryRecord{{HistoryItemID: "a"}}}, "b"},
		{"empty history", HistoryPage{LastHistoryItemID: "b"}, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.page.Latest()
			var nf *RecordNotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("got %v, want RecordNotFoundError", err)
			}
			if nf.HistoryItemID != tt.wantID {
				t.Errorf("HistoryItemID = %q, want %q", nf.HistoryItemID, tt.wantID)
			}
		})
	}
}

func TestHistoryRecordPayloadKeepsUnknownFields(t *testing.T) {
	var page HistoryPage
	if err := json.Unmarshal([]byte(samplePage), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	rec, _ := page.Latest()

	payload, err := rec.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if _, ok := payload["alignments"]; !ok {
		t.Error("unknown field alignments dropped from payload")
	}
	if v, ok := payload["feedback"]; !ok || v != nil {
		t.Errorf("feedback = %v (present %v), want explicit null", v, ok)
	}
}

func TestHistoryRecordPayloadWithoutRaw(t *testing.T) {
	rec := &HistoryRecord{HistoryItemID: "x", Text: "built locally"}
	payload, err := rec.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if payload["history_item_id"] != "x" || payload["text"] != "built locally" {
		t.Errorf("payload = %v", payload)
	}
}

func TestParseProvider(t *testing.T) {
	if p, err := ParseProvider("elevenlabs"); err != nil || p != ProviderElevenLabs {
		t.Errorf("ParseProvider(elevenlabs) = %q, %v", p, err)
	}
	if _, err := ParseProvider("polly"); err == nil {
		t.Error("ParseProvider(polly) succeeded, want error")
	}
}

func TestErrorMessages(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	te := &TransportError{Op: "history", Err: inner}
	if !errors.Is(te, inner) {
		t.Error("TransportError does not unwrap")
	}
	pe := &ProviderError{Op: "synthesize", StatusCode: 401, Body: "unauthorized"}
	if got := pe.Error(); got != "synthesize: provider returned status 401: unauthorized" {
		t.Errorf("ProviderError.Error() = %q", got)
	}
}
