package whisper

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/recognition"
)

// Clip is a recognition.Engine over one uploaded clip. Every stream
// transcribes the same audio in the stream's language, emits a single final
// chunk and then ends.
type Clip struct {
	client      *Client
	ctx         context.Context
	audio       []byte
	contentType string
	requested   langid.Code

	mu      sync.Mutex
	streams int
}

// Clip returns an engine for audio. ctx bounds every transcription request.
// When requested is langid.Auto the first stream sends no language hint so
// the server detects the language itself.
func (c *Client) Clip(ctx context.Context, audio []byte, contentType string, requested langid.Code) *Clip {
	return &Clip{
		client:      c,
		ctx:         ctx,
		audio:       audio,
		contentType: contentType,
		requested:   requested,
	}
}

// NewStream implements recognition.Engine.
func (e *Clip) NewStream(opts recognition.Options) (recognition.Stream, error) {
	if e.client == nil || e.client.endpoint == "" {
		return nil, recognition.ErrUnavailable
	}

	e.mu.Lock()
	first := e.streams == 0
	e.streams++
	e.mu.Unlock()

	hint := langid.Code(opts.Language).Base()
	if first && (e.requested == langid.Auto || e.requested == "") {
		hint = ""
	}

	ctx, cancel := context.WithCancel(e.ctx)
	return &clipStream{engine: e, hint: hint, ctx: ctx, cancel: cancel}, nil
}

type clipStream struct {
	engine *Clip
	hint   string
	ctx    context.Context
	cancel context.CancelFunc
}

func (s *clipStream) Start(sink recognition.Sink) error {
	go func() {
		defer s.cancel()
		defer sink(recognition.EndEvent())

		tr, err := s.engine.client.Transcribe(s.ctx, s.engine.audio, s.engine.contentType, s.hint)
		switch {
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			slog.Warn("whisper transcription failed", "error", err)
			sink(recognition.ErrorEvent(recognition.CauseNetwork))
			return
		case tr.Text == "":
			sink(recognition.ErrorEvent(recognition.CauseNoSpeech))
			return
		}
		sink(recognition.ResultEvent(recognition.Chunk{
			Final: true,
			Alternatives: []recognition.Alternative{
				{Transcript: tr.Text, Confidence: tr.Confidence()},
			},
		}))
	}()
	return nil
}

// Stop and Abort both cancel the in-flight request; a clip has no partial
// utterance to finish.
func (s *clipStream) Stop()  { s.cancel() }
func (s *clipStream) Abort() { s.cancel() }
