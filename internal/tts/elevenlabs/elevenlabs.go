// Package elevenlabs implements the TTS Synthesizer against the ElevenLabs REST API.
//
// A synthesis is two sequential calls: POST /v1/text-to-speech/{voice_id}
// creates the audio, then GET /v1/history returns the account history whose
// last_history_item_id points at the entry just created. The audio is left
// with the provider; the history entry is what the agent reports.
package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hihouhou/huginn-tts-agent/internal/config"
	"github.com/hihouhou/huginn-tts-agent/internal/tts"
)

// APIKeyHeader carries the account key on every request.
const APIKeyHeader = "Xi-Api-Key"

const (
	opSynthesize = "synthesize"
	opHistory    = "history"

	maxHistoryBytes = 8 << 20
	maxErrorBytes   = 2048
)

// Synthesizer implements tts.Synthesizer for ElevenLabs.
type Synthesizer struct {
	baseURL  string
	voiceID  string
	modelID  string
	failFast bool
	debug    bool
	client   *http.Client

	historyLimit int64
}

// New creates a new ElevenLabs synthesizer from config. When debug is set,
// response bodies are logged next to the status codes.
func New(cfg config.ElevenLabsConfig, debug bool) *Synthesizer {
	return &Synthesizer{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		voiceID:  cfg.VoiceID,
		modelID:  cfg.ModelID,
		failFast: cfg.FailFast,
		debug:    debug,
		client:   &http.Client{Timeout: cfg.Timeout},

		historyLimit: maxHistoryBytes,
	}
}

type synthesisRequest struct {
	ModelID string `json:"model_id"`
	Text    string `json:"text"`
}

// Synthesize requests a new synthesis and returns its history record.
func (s *Synthesizer) Synthesize(ctx context.Context, apiKey, text string) (*tts.HistoryRecord, error) {
	if err := s.synthesize(ctx, apiKey, text); err != nil {
		if s.failFast || !isProviderError(err) {
			return nil, err
		}
		slog.Warn("elevenlabs synthesis failed, reading history anyway", "error", err)
	}

	page, err := s.history(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	return page.Latest()
}

// Close drops idle provider connections.
func (s *Synthesizer) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *Synthesizer) synthesize(ctx context.Context, apiKey, text string) error {
	body, err := json.Marshal(synthesisRequest{ModelID: s.modelID, Text: text})
	if err != nil {
		return fmt.Errorf("marshalling synthesis request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating synthesis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(APIKeyHeader, apiKey)

	slog.Debug("elevenlabs synthesize", "voice_id", s.voiceID, "model_id", s.modelID, "text_length", len(text))

	resp, err := s.client.Do(req)
	if err != nil {
		return &tts.TransportError{Op: opSynthesize, Err: err}
	}
	defer resp.Body.Close()

	if !success(resp.StatusCode) {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		s.logResponse(opSynthesize, resp.StatusCode, respBody)
		return &tts.ProviderError{Op: opSynthesize, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// The audio is not used; drain it so the connection can be reused.
	n, err := io.Copy(io.Discard, resp.Body)
	if err != nil {
		return &tts.TransportError{Op: opSynthesize, Err: err}
	}
	slog.Info("request status", "op", opSynthesize, "status", resp.StatusCode)
	if s.debug {
		slog.Info("response body", "op", opSynthesize, "content_type", resp.Header.Get("Content-Type"), "bytes", n)
	}
	return nil
}

func (s *Synthesizer) history(ctx context.Context, apiKey string) (*tts.HistoryPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/history", nil)
	if err != nil {
		return nil, fmt.Errorf("creating history request: %w", err)
	}
	req.Header.Set(APIKeyHeader, apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &tts.TransportError{Op: opHistory, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, s.historyLimit+1))
	if err != nil {
		return nil, &tts.TransportError{Op: opHistory, Err: err}
	}
	tooLarge := int64(len(respBody)) > s.historyLimit
	if tooLarge {
		respBody = respBody[:s.historyLimit]
	}
	s.logResponse(opHistory, resp.StatusCode, respBody)

	if !success(resp.StatusCode) {
		if len(respBody) > maxErrorBytes {
			respBody = respBody[:maxErrorBytes]
		}
		return nil, &tts.ProviderError{Op: opHistory, StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	if tooLarge {
		return nil, &tts.ResponseTooLargeError{Op: opHistory, Limit: s.historyLimit}
	}

	var page tts.HistoryPage
	if err := json.Unmarshal(respBody, &page); err != nil {
		return nil, &tts.ParseError{Op: opHistory, Err: err}
	}
	slog.Debug("elevenlabs history", "entries", len(page.History), "last_history_item_id", page.LastHistoryItemID)
	return &page, nil
}

func (s *Synthesizer) logResponse(op string, status int, body []byte) {
	slog.Info("request status", "op", op, "status", status)
	if s.debug {
		slog.Info("response body", "op", op, "body", string(body))
	}
}

func success(status int) bool {
	return status >= 200 && status < 300
}

func isProviderError(err error) bool {
	var pe *tts.ProviderError
	return errors.As(err, &pe)
}
