package recognition

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/metrics"
)

const (
	// DefaultFallbackTimeout bounds the second recognition pass.
	DefaultFallbackTimeout = 3 * time.Second

	// DefaultConfidenceThreshold is the average confidence at or above which
	// an auto-detected result is delivered without a second pass.
	DefaultConfidenceThreshold = 0.7

	// missingConfidence stands in for engines that report no confidence.
	missingConfidence = 0.5

	autoAlternatives  = 5
	fixedAlternatives = 3
)

// Handlers receive the outcome of a session. Any of them may be nil.
//
// At most one of OnResult and OnError is called. detected is empty unless
// the session was started with langid.Auto.
type Handlers struct {
	OnResult func(text string, detected langid.Code)
	OnError  func(err error)
	OnEnd    func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithFallbackTimeout overrides the second-pass timeout.
func WithFallbackTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.fallbackTimeout = d
		}
	}
}

// WithConfidenceThreshold overrides the confidence below which a non-English
// detection triggers a second pass.
func WithConfidenceThreshold(v float64) Option {
	return func(c *Controller) {
		if v > 0 && v <= 1 {
			c.threshold = v
		}
	}
}

// WithClassifier replaces the built-in language classifier.
func WithClassifier(cl *langid.Classifier) Option {
	return func(c *Controller) {
		if cl != nil {
			c.classifier = cl
		}
	}
}

// WithLogger sets the logger sessions derive from.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// Controller starts recognition sessions on an Engine.
type Controller struct {
	engine          Engine
	classifier      *langid.Classifier
	fallbackTimeout time.Duration
	threshold       float64
	logger          *slog.Logger
}

// New creates a Controller for engine.
func New(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:          engine,
		classifier:      langid.NewClassifier(nil),
		fallbackTimeout: DefaultFallbackTimeout,
		threshold:       DefaultConfidenceThreshold,
		logger:          slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start begins one listening attempt in the requested language and returns a
// function that abandons it. After cancel (or ctx cancellation) no handler
// is called again.
//
// When the engine is unavailable OnError is called before Start returns and
// the returned cancel is a no-op.
func (c *Controller) Start(ctx context.Context, requested langid.Code, h Handlers) (cancel func()) {
	opts := Options{
		Language:        string(requested),
		Interim:         true,
		MaxAlternatives: fixedAlternatives,
	}
	mode := "fixed"
	if requested == langid.Auto || requested == "" {
		requested = langid.Auto
		opts.Language = string(langid.English)
		opts.MaxAlternatives = autoAlternatives
		mode = "auto"
	}

	stream, err := c.engine.NewStream(opts)
	if err != nil {
		metrics.RecognitionSessions.WithLabelValues(mode, "unavailable").Inc()
		c.logger.Warn("recognition unavailable", "error", err)
		if h.OnError != nil {
			h.OnError(err)
		}
		return func() {}
	}

	s := &session{
		id:        uuid.NewString(),
		ctrl:      c,
		requested: requested,
		mode:      mode,
		handlers:  h,
		primary:   stream,
		state:     StateIdle,
		inbox:     make(chan input, 32),
		cancelCh:  make(chan struct{}),
		exited:    make(chan struct{}),
	}
	s.logger = c.logger.With("session_id", s.id, "requested", string(requested))
	s.logger.Debug("recognition session starting", "lang", opts.Language, "max_alternatives", opts.MaxAlternatives)

	go s.run(ctx)

	return s.cancel
}

// FallbackTimeout reports how long a second pass may run.
func (c *Controller) FallbackTimeout() time.Duration {
	return c.fallbackTimeout
}

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateListening
	StateAwaitingFallback
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateAwaitingFallback:
		return "awaiting_fallback"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

type origin int

const (
	originPrimary origin = iota
	originChild
)

type input struct {
	origin   origin
	event    Event
	startErr error
}

// session is owned by its run goroutine; only cancel and sink are called
// from elsewhere. Streams are started on the run goroutine so that a cancel
// is always observed after the Start it races with.
type session struct {
	id        string
	ctrl      *Controller
	requested langid.Code
	mode      string
	handlers  Handlers
	logger    *slog.Logger

	primary Stream
	child   Stream
	timer   *time.Timer

	state    State
	ended    bool // primary capability signalled end
	endFired bool

	final     string
	hasFinal  bool
	confSum   float64
	confCount int

	// second pass
	original string
	detected langid.Code
	average  float64

	inbox      chan input
	cancelCh   chan struct{}
	cancelOnce sync.Once
	cancelled  atomic.Bool
	exited     chan struct{}
}

func (s *session) cancel() {
	s.cancelOnce.Do(func() {
		s.cancelled.Store(true)
		close(s.cancelCh)
	})
}

func (s *session) sink(o origin) Sink {
	return func(ev Event) {
		s.post(input{origin: o, event: ev})
	}
}

func (s *session) post(in input) {
	select {
	case s.inbox <- in:
	case <-s.exited:
	}
}

func (s *session) run(ctx context.Context) {
	defer close(s.exited)

	if ctx.Err() != nil || s.cancelled.Load() {
		s.cancel()
		s.state = StateFinalized
		metrics.RecognitionSessions.WithLabelValues(s.mode, "cancelled").Inc()
		return
	}
	if err := s.primary.Start(s.sink(originPrimary)); err != nil {
		s.dispatch(input{origin: originPrimary, startErr: err})
		return
	}
	s.state = StateListening

	for {
		var timeout <-chan time.Time
		if s.timer != nil {
			timeout = s.timer.C
		}

		select {
		case <-ctx.Done():
			s.cancel()
			s.abandon()
			return
		case <-s.cancelCh:
			s.abandon()
			return
		case in := <-s.inbox:
			s.dispatch(in)
		case <-timeout:
			s.timer = nil
			s.onFallbackTimeout()
		}

		if s.state == StateFinalized && s.ended {
			s.logger.Debug("recognition session closed")
			return
		}
	}
}

func (s *session) dispatch(in input) {
	if in.origin == originChild {
		s.dispatchChild(in)
		return
	}

	if in.startErr != nil {
		s.logger.Error("failed to start recognition", "error", in.startErr)
		// The capability never ran, so there is no end to report.
		s.ended, s.endFired = true, true
		s.fail(fmt.Errorf("%w: %v", ErrStartFailed, in.startErr))
		return
	}

	switch in.event.Kind {
	case EventResult:
		s.onPrimaryResult(in.event.Chunks)
	case EventError:
		s.onPrimaryError(in.event.Cause)
	case EventEnd:
		s.onPrimaryEnd()
	}
}

func (s *session) onPrimaryResult(chunks []Chunk) {
	if s.state != StateListening {
		return
	}

	var interim string
	for _, ch := range chunks {
		if len(ch.Alternatives) == 0 {
			continue
		}
		best := ch.Alternatives[0]
		if ch.Final {
			s.final += best.Transcript
			s.hasFinal = true
			s.confSum += confidence(best)
			s.confCount++
		} else {
			interim += best.Transcript
		}
	}

	text := strings.TrimSpace(s.final + interim)
	if text == "" || !s.hasFinal {
		return
	}
	s.finalize(text)
}

func (s *session) finalize(text string) {
	if s.requested != langid.Auto {
		s.deliver(text, "")
		return
	}

	detected := s.ctrl.classifier.Detect(text)
	avg := s.confSum / float64(s.confCount)
	metrics.Detections.WithLabelValues(string(detected), "recognition").Inc()

	if avg >= s.ctrl.threshold || detected == langid.English {
		s.logger.Info("auto-detected language", "language", detected, "confidence", avg)
		s.deliver(text, detected)
		return
	}

	s.logger.Info("low confidence detection, listening again",
		"language", detected, "confidence", avg)
	s.startFallback(text, detected, avg)
}

func (s *session) startFallback(text string, detected langid.Code, avg float64) {
	s.original, s.detected, s.average = text, detected, avg

	child, err := s.ctrl.engine.NewStream(Options{
		Language:        string(detected),
		MaxAlternatives: 1,
	})
	if err != nil {
		s.logger.Warn("second pass unavailable, keeping first result", "error", err)
		metrics.FallbackPasses.WithLabelValues("unavailable").Inc()
		s.deliver(text, detected)
		return
	}

	s.child = child
	s.state = StateAwaitingFallback
	s.timer = time.NewTimer(s.ctrl.fallbackTimeout)

	if err := child.Start(s.sink(originChild)); err != nil {
		s.dispatchChild(input{origin: originChild, startErr: err})
	}
}

func (s *session) dispatchChild(in input) {
	if s.state != StateAwaitingFallback {
		return
	}

	if in.startErr != nil {
		s.logger.Warn("second pass failed to start", "error", in.startErr)
		s.completeFallback(s.original, "error")
		return
	}

	switch in.event.Kind {
	case EventResult:
		for _, ch := range in.event.Chunks {
			if !ch.Final || len(ch.Alternatives) == 0 {
				continue
			}
			best := ch.Alternatives[0]
			text := strings.TrimSpace(best.Transcript)
			conf := confidence(best)
			if conf > s.average && text != "" {
				s.logger.Info("second pass improved result", "language", s.detected, "confidence", conf)
				s.completeFallback(text, "improved")
			} else {
				s.completeFallback(s.original, "kept")
			}
			return
		}
	case EventError:
		s.logger.Debug("second pass error", "cause", in.event.Cause)
		s.completeFallback(s.original, "error")
	case EventEnd:
		s.completeFallback(s.original, "ended")
	}
}

func (s *session) onFallbackTimeout() {
	if s.state != StateAwaitingFallback {
		return
	}
	s.logger.Info("second pass timed out, keeping first result", "timeout", s.ctrl.fallbackTimeout)
	if s.child != nil {
		s.child.Stop()
	}
	s.completeFallback(s.original, "timeout")
}

func (s *session) completeFallback(text, outcome string) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.child = nil
	metrics.FallbackPasses.WithLabelValues(outcome).Inc()
	s.deliver(text, s.detected)
}

func (s *session) onPrimaryError(cause Cause) {
	if s.state != StateListening {
		s.logger.Debug("ignoring capability error after result", "cause", cause)
		return
	}
	s.logger.Warn("speech recognition error", "cause", cause)
	s.fail(&Error{Cause: cause})
}

func (s *session) onPrimaryEnd() {
	s.ended = true
	switch s.state {
	case StateListening:
		s.state = StateFinalized
		metrics.RecognitionSessions.WithLabelValues(s.mode, "no_result").Inc()
		s.fireEnd()
	case StateFinalized:
		s.fireEnd()
	}
	// While awaiting the second pass the end is reported after delivery.
}

func (s *session) deliver(text string, detected langid.Code) {
	s.state = StateFinalized
	metrics.RecognitionSessions.WithLabelValues(s.mode, "result").Inc()
	if !s.cancelled.Load() && s.handlers.OnResult != nil {
		s.handlers.OnResult(text, detected)
	}
	if s.ended {
		s.fireEnd()
	}
}

func (s *session) fail(err error) {
	s.state = StateFinalized
	metrics.RecognitionSessions.WithLabelValues(s.mode, "error").Inc()
	if !s.cancelled.Load() && s.handlers.OnError != nil {
		s.handlers.OnError(err)
	}
	if s.ended {
		s.fireEnd()
	}
}

func (s *session) fireEnd() {
	if s.endFired {
		return
	}
	s.endFired = true
	if !s.cancelled.Load() && s.handlers.OnEnd != nil {
		s.handlers.OnEnd()
	}
}

func (s *session) abandon() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.primary.Stop()
	s.primary.Abort()
	if s.child != nil {
		s.child.Stop()
		s.child.Abort()
		s.child = nil
	}
	if s.state != StateFinalized {
		metrics.RecognitionSessions.WithLabelValues(s.mode, "cancelled").Inc()
	}
	s.state = StateFinalized
	s.logger.Debug("recognition session cancelled")
}

func confidence(a Alternative) float64 {
	if a.Confidence <= 0 {
		return missingConfidence
	}
	return a.Confidence
}
