// Package remote bridges a browser's built-in speech recognition engine to
// the recognition controller over a websocket.
//
// The server drives the browser engine with recognition.start, .stop and
// .abort messages and the browser streams the engine's events back. Session
// outcomes (result, error, end) and the assistant's reply are pushed to the
// browser as they happen.
package remote

import (
	"github.com/nadzzz/krishivoice/internal/message"
	"github.com/nadzzz/krishivoice/internal/recognition"
)

// Server to client message types.
const (
	TypeStart = "recognition.start"
	TypeStop  = "recognition.stop"
	TypeAbort = "recognition.abort"

	TypeResult = "result"
	TypeError  = "error"
	TypeEnd    = "end"
	TypeReply  = "reply"
)

// Client to server message types.
const (
	TypeListen = "listen"
	TypeCancel = "cancel"
	TypeQuery  = "query"

	TypeStreamResult = "recognition.result"
	TypeStreamError  = "recognition.error"
	TypeStreamEnd    = "recognition.end"
	TypeUnsupported  = "recognition.unsupported"
)

// ServerMessage is sent to the browser.
type ServerMessage struct {
	Type   string `json:"type"`
	Stream string `json:"stream,omitempty"`

	// Set on recognition.start.
	*recognition.Options

	// result
	Text     string `json:"text,omitempty"`
	Language string `json:"language,omitempty"`

	// error
	Message string            `json:"message,omitempty"`
	Cause   recognition.Cause `json:"cause,omitempty"`

	Reply *message.Reply `json:"reply,omitempty"`
}

// ClientMessage is received from the browser.
type ClientMessage struct {
	Type   string `json:"type"`
	Stream string `json:"stream,omitempty"`

	// listen and query
	Lang string `json:"lang,omitempty"`
	Text string `json:"text,omitempty"`

	// recognition.result: only the chunks that are new since the last event.
	Results []recognition.Chunk `json:"results,omitempty"`

	// recognition.error: the engine's error tag (e.g. "no-speech").
	Error string `json:"error,omitempty"`
}
