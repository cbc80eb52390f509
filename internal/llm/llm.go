// Package llm defines the interface for the generative language model that
// answers farmers' questions.
//
// KrishiVoice ships with three backends: Gemini (Google Generative Language
// REST API), OpenAI (chat completions) and Local (Ollama or any
// OpenAI-compatible server).
package llm

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyResponse is returned when a backend answers without any text.
var ErrEmptyResponse = errors.New("empty response from language model")

// Prompt is one generation request.
type Prompt struct {
	// System carries the assistant persona and reply-language instruction.
	System string

	// User is the farmer's question.
	User string
}

// Text flattens the prompt for backends without a separate system role.
func (p Prompt) Text() string {
	switch {
	case p.System == "":
		return p.User
	case p.User == "":
		return p.System
	default:
		return p.System + "\n\n" + p.User
	}
}

// Generator produces a natural-language answer for a prompt.
type Generator interface {
	// Name returns the backend identifier (e.g., "gemini", "local").
	Name() string

	// Generate returns the model's answer. Implementations return
	// ErrEmptyResponse rather than an empty string.
	Generate(ctx context.Context, prompt Prompt) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}

// Truncate shortens upstream error bodies for log and error messages.
func Truncate(b []byte, n int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
