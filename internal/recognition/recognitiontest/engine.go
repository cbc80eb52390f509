// Package recognitiontest provides an in-memory recognition.Engine for tests.
package recognitiontest

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nadzzz/krishivoice/internal/recognition"
)

// Engine records every stream it creates. Tests drive the streams by calling
// Emit on them.
type Engine struct {
	// Unavailable makes NewStream fail with recognition.ErrUnavailable.
	Unavailable bool

	// StartErr is returned from Start for every stream when set.
	StartErr error

	// OnStart, when set, runs inside Start after the sink is registered.
	OnStart func(s *Stream)

	mu      sync.Mutex
	streams []*Stream
}

// NewStream implements recognition.Engine.
func (e *Engine) NewStream(opts recognition.Options) (recognition.Stream, error) {
	if e.Unavailable {
		return nil, recognition.ErrUnavailable
	}
	s := &Stream{Opts: opts, engine: e}
	e.mu.Lock()
	e.streams = append(e.streams, s)
	e.mu.Unlock()
	return s, nil
}

// Streams returns the streams created so far.
func (e *Engine) Streams() []*Stream {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Stream, len(e.streams))
	copy(out, e.streams)
	return out
}

// WaitStream blocks until the i-th stream has been started.
func (e *Engine) WaitStream(t *testing.T, i int) *Stream {
	t.Helper()
	var s *Stream
	require.Eventually(t, func() bool {
		streams := e.Streams()
		if len(streams) <= i {
			return false
		}
		s = streams[i]
		return s.Started()
	}, 2*time.Second, 5*time.Millisecond, "stream %d never started", i)
	return s
}

// Stream is a fake capability stream.
type Stream struct {
	Opts recognition.Options

	engine  *Engine
	mu      sync.Mutex
	sink    recognition.Sink
	stopped bool
	aborted bool
	calls   []string
}

// Start implements recognition.Stream.
func (s *Stream) Start(sink recognition.Sink) error {
	if s.engine.StartErr != nil {
		return s.engine.StartErr
	}
	s.mu.Lock()
	if s.sink != nil {
		s.mu.Unlock()
		return errors.New("stream already started")
	}
	s.sink = sink
	s.mu.Unlock()
	if s.engine.OnStart != nil {
		s.engine.OnStart(s)
	}
	s.record("start")
	return nil
}

// Stop implements recognition.Stream.
func (s *Stream) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.calls = append(s.calls, "stop")
	s.mu.Unlock()
}

// Abort implements recognition.Stream.
func (s *Stream) Abort() {
	s.mu.Lock()
	s.aborted = true
	s.calls = append(s.calls, "abort")
	s.mu.Unlock()
}

// Started reports whether Start has been called successfully.
func (s *Stream) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink != nil
}

// Stopped reports whether Stop was called.
func (s *Stream) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Aborted reports whether Abort was called.
func (s *Stream) Aborted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.aborted
}

// Calls lists start, stop and abort in the order they returned.
func (s *Stream) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Stream) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

// Emit delivers ev to the session that started the stream.
func (s *Stream) Emit(ev recognition.Event) {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

// Final is shorthand for a single final chunk with one alternative.
func Final(text string, confidence float64) recognition.Event {
	return recognition.ResultEvent(recognition.Chunk{
		Final:        true,
		Alternatives: []recognition.Alternative{{Transcript: text, Confidence: confidence}},
	})
}

// Interim is shorthand for a single non-final chunk.
func Interim(text string) recognition.Event {
	return recognition.ResultEvent(recognition.Chunk{
		Alternatives: []recognition.Alternative{{Transcript: text}},
	})
}
