// Package recognition drives a speech-to-text capability through one
// listening attempt, classifying the transcript when the caller asked for
// automatic language detection and re-listening once in the detected
// language when the first pass was not confident.
//
// The capability itself (a browser engine bridged over a websocket, a
// Whisper server, a test fake) is supplied through the Engine interface.
package recognition

// Options configures one capability stream.
type Options struct {
	// Language is the BCP-47 tag the engine should recognise (e.g. "ta-IN").
	Language string `json:"lang"`

	// Interim asks for non-final partial results.
	Interim bool `json:"interim"`

	// MaxAlternatives is the number of alternative transcriptions per chunk.
	MaxAlternatives int `json:"max_alternatives"`

	// Continuous keeps listening after the first utterance.
	Continuous bool `json:"continuous"`
}

// Alternative is one candidate transcription of a chunk.
type Alternative struct {
	Transcript string  `json:"transcript"`
	Confidence float64 `json:"confidence"` // 0 when the engine does not report one
}

// Chunk is one recognised segment. Alternatives are ordered best first.
type Chunk struct {
	Final        bool          `json:"final"`
	Alternatives []Alternative `json:"alternatives"`
}

// EventKind enumerates capability events.
type EventKind int

const (
	EventResult EventKind = iota
	EventError
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventResult:
		return "result"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is emitted by a Stream. Result events carry only the chunks that are
// new since the previous result event.
type Event struct {
	Kind   EventKind
	Chunks []Chunk
	Cause  Cause
}

// ResultEvent builds a result event.
func ResultEvent(chunks ...Chunk) Event { return Event{Kind: EventResult, Chunks: chunks} }

// ErrorEvent builds an error event.
func ErrorEvent(cause Cause) Event { return Event{Kind: EventError, Cause: cause} }

// EndEvent builds an end event.
func EndEvent() Event { return Event{Kind: EventEnd} }

// Sink receives events from a Stream. It is safe to call from any goroutine
// and never blocks for long.
type Sink func(Event)

// Stream is one configured listening attempt on the capability.
type Stream interface {
	// Start begins listening and delivers events to sink until the stream
	// ends. An engine must emit EventEnd once it stops listening.
	Start(sink Sink) error

	// Stop asks the engine to finish the current utterance.
	Stop()

	// Abort discards any pending audio and ends the stream.
	Abort()
}

// Engine creates capability streams.
type Engine interface {
	// NewStream returns ErrUnavailable when the platform offers no
	// speech recognition at all.
	NewStream(opts Options) (Stream, error)
}
