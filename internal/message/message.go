// Package message defines the core data types flowing through the krishivoice pipeline.
package message

import (
	"encoding/base64"
	"time"

	"github.com/google/uuid"
)

// Mode records how a reply was produced.
type Mode string

const (
	// ModeAI means the configured language model answered.
	ModeAI Mode = "ai"

	// ModeDemo means a canned reply was used because no model is configured.
	ModeDemo Mode = "demo"

	// ModeErrorFallback means the model failed and a canned reply was used instead.
	ModeErrorFallback Mode = "error_fallback"
)

// Query is a farmer's question arriving from any transport.
type Query struct {
	// ID is a unique identifier for this query (UUID).
	ID string `json:"id"`

	// Source identifies the sender (e.g., "field-sensor-07", "browser").
	Source string `json:"source,omitempty"`

	// Text is the question, as typed or as recognised from speech.
	Text string `json:"query"`

	// Language is the requested reply language: a BCP-47 tag such as
	// "ta-IN", or "auto"/empty to detect it from Text.
	Language string `json:"language,omitempty"`

	// Timestamp is when the query was received.
	Timestamp time.Time `json:"timestamp"`
}

// NewQuery stamps a query with a fresh ID and the current time.
func NewQuery(source, text, language string) *Query {
	return &Query{
		ID:        uuid.NewString(),
		Source:    source,
		Text:      text,
		Language:  language,
		Timestamp: time.Now(),
	}
}

// Reply is the assistant's answer to a Query.
type Reply struct {
	// QueryID is the originating query ID.
	QueryID string `json:"query_id"`

	// Text is the answer in the reply language.
	Text string `json:"response"`

	// Language is the BCP-47 tag of the reply.
	Language string `json:"language"`

	// DetectedLanguage is set when the reply language was detected from the query.
	DetectedLanguage string `json:"detected_language,omitempty"`

	// Mode records whether a model or a canned reply answered.
	Mode Mode `json:"mode"`

	// ResponseAudio is the TTS-synthesized audio as a base64-encoded string.
	ResponseAudio string `json:"response_audio,omitempty"`

	// ResponseContentType is the MIME type of ResponseAudio (e.g., "audio/wav").
	ResponseContentType string `json:"response_content_type,omitempty"`
}

// SetResponseAudioBytes base64-encodes raw audio bytes into ResponseAudio.
func (r *Reply) SetResponseAudioBytes(audio []byte) {
	if len(audio) > 0 {
		r.ResponseAudio = base64.StdEncoding.EncodeToString(audio)
	}
}
