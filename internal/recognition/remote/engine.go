package remote

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/nadzzz/krishivoice/internal/recognition"
)

var errEngineClosed = errors.New("remote engine closed")

// sender writes one message to the browser.
type sender interface {
	send(msg ServerMessage) error
}

// Engine is a recognition.Engine whose streams run in a connected browser.
type Engine struct {
	out sender

	mu          sync.Mutex
	streams     map[string]*stream
	unsupported bool
	closed      bool
}

func newEngine(out sender) *Engine {
	return &Engine{out: out, streams: make(map[string]*stream)}
}

// NewStream implements recognition.Engine.
func (e *Engine) NewStream(opts recognition.Options) (recognition.Stream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.unsupported {
		return nil, recognition.ErrUnavailable
	}
	if e.closed {
		return nil, errEngineClosed
	}
	return &stream{id: uuid.NewString(), opts: opts, engine: e}, nil
}

// markUnsupported records that the browser has no recognition engine. Any
// stream still running is failed and ended.
func (e *Engine) markUnsupported() {
	e.mu.Lock()
	e.unsupported = true
	running := e.drain()
	e.mu.Unlock()

	for _, s := range running {
		s.sink(recognition.ErrorEvent(recognition.CauseServiceNotAllowed))
		s.sink(recognition.EndEvent())
	}
}

// close ends every running stream; the browser is gone.
func (e *Engine) close() {
	e.mu.Lock()
	e.closed = true
	running := e.drain()
	e.mu.Unlock()

	for _, s := range running {
		s.sink(recognition.EndEvent())
	}
}

// drain empties the stream table. e.mu must be held.
func (e *Engine) drain() []*stream {
	out := make([]*stream, 0, len(e.streams))
	for id, s := range e.streams {
		out = append(out, s)
		delete(e.streams, id)
	}
	return out
}

// deliver routes a stream event from the browser to its stream.
func (e *Engine) deliver(msg ClientMessage) {
	e.mu.Lock()
	s, ok := e.streams[msg.Stream]
	if ok && msg.Type == TypeStreamEnd {
		delete(e.streams, msg.Stream)
	}
	e.mu.Unlock()

	if !ok {
		slog.Debug("event for unknown stream", "stream", msg.Stream, "type", msg.Type)
		return
	}

	switch msg.Type {
	case TypeStreamResult:
		s.sink(recognition.ResultEvent(msg.Results...))
	case TypeStreamError:
		s.sink(recognition.ErrorEvent(recognition.Cause(msg.Error)))
	case TypeStreamEnd:
		s.sink(recognition.EndEvent())
	}
}

type stream struct {
	id     string
	opts   recognition.Options
	engine *Engine
	sink   recognition.Sink
}

func (s *stream) Start(sink recognition.Sink) error {
	s.sink = sink

	e := s.engine
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return errEngineClosed
	}
	e.streams[s.id] = s
	e.mu.Unlock()

	opts := s.opts
	if err := e.out.send(ServerMessage{Type: TypeStart, Stream: s.id, Options: &opts}); err != nil {
		e.mu.Lock()
		delete(e.streams, s.id)
		e.mu.Unlock()
		return fmt.Errorf("starting remote stream: %w", err)
	}
	return nil
}

func (s *stream) Stop()  { s.control(TypeStop) }
func (s *stream) Abort() { s.control(TypeAbort) }

func (s *stream) control(kind string) {
	if err := s.engine.out.send(ServerMessage{Type: kind, Stream: s.id}); err != nil {
		slog.Debug("remote stream control failed", "stream", s.id, "type", kind, "error", err)
	}
}
