package tts

import "fmt"

// TransportError reports a network failure or timeout talking to a provider.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProviderError reports a non-2xx answer from a provider.
type ProviderError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: provider returned status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ParseError reports a provider response body that could not be decoded.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RecordNotFoundError reports that the history page did not contain the
// record for the latest synthesis. HistoryItemID is empty when the page had
// no last_history_item_id at all.
type RecordNotFoundError struct {
	HistoryItemID string
}

func (e *RecordNotFoundError) Error() string {
	if e.HistoryItemID == "" {
		return "history: last_history_item_id missing"
	}
	return fmt.Sprintf("history: no record with history_item_id %q", e.HistoryItemID)
}

// ResponseTooLargeError reports a provider response body over the client's
// read limit. The body is not decoded.
type ResponseTooLargeError struct {
	Op    string
	Limit int64
}

func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("%s: response too large: over %d bytes", e.Op, e.Limit)
}
