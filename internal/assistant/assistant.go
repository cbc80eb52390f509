// Package assistant implements the query pipeline.
//
// The assistant receives farmers' questions from transports, resolves the
// reply language (detecting it when the caller asked for auto), asks the
// language model for advice and optionally reads the answer aloud. When no
// model is configured, or the model fails, a canned reply in the farmer's
// language is returned instead. The sender always receives a reply.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/llm"
	"github.com/nadzzz/krishivoice/internal/message"
	"github.com/nadzzz/krishivoice/internal/metrics"
	"github.com/nadzzz/krishivoice/internal/tts"
)

// ErrEmptyQuery is returned for queries without text.
var ErrEmptyQuery = errors.New("query is required")

// Handler answers one query. Transports receive the assistant as a Handler.
type Handler func(ctx context.Context, q *message.Query) (*message.Reply, error)

// Option configures an Assistant.
type Option func(*Assistant)

// WithSynthesizer attaches synthesized audio to every reply.
func WithSynthesizer(s tts.Synthesizer) Option {
	return func(a *Assistant) { a.synthesizer = s }
}

// WithClassifier replaces the built-in language classifier.
func WithClassifier(c *langid.Classifier) Option {
	return func(a *Assistant) {
		if c != nil {
			a.classifier = c
		}
	}
}

// Assistant is the central query pipeline.
type Assistant struct {
	generator   llm.Generator   // nil: demo replies only
	synthesizer tts.Synthesizer // nil if TTS is disabled
	classifier  *langid.Classifier
}

// New creates an Assistant. gen may be nil to serve demo replies only.
func New(gen llm.Generator, opts ...Option) *Assistant {
	a := &Assistant{
		generator:  gen,
		classifier: langid.NewClassifier(nil),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Backend names the generator in use, or "demo".
func (a *Assistant) Backend() string {
	if a.generator == nil {
		return "demo"
	}
	return a.generator.Name()
}

// Close releases the generator and synthesizer.
func (a *Assistant) Close() error {
	var errs []error
	if a.generator != nil {
		errs = append(errs, a.generator.Close())
	}
	if a.synthesizer != nil {
		errs = append(errs, a.synthesizer.Close())
	}
	return errors.Join(errs...)
}

// ResolveLanguage turns the requested language into the reply language.
// detected is true when the language was classified from text.
func (a *Assistant) ResolveLanguage(requested, text string) (lang langid.Code, detected bool, err error) {
	code := langid.Auto
	if strings.TrimSpace(requested) != "" {
		if code, err = langid.Parse(requested); err != nil {
			return "", false, err
		}
	}
	if code != langid.Auto {
		return code, false, nil
	}
	return a.classifier.Detect(text), true, nil
}

// Handle processes a single query through the full pipeline.
// This method is passed as the Handler to each transport.
func (a *Assistant) Handle(ctx context.Context, q *message.Query) (*message.Reply, error) {
	start := time.Now()
	logger := slog.With("query_id", q.ID, "source", q.Source)

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	// Step 1: Settle the reply language.
	lang, detected, err := a.ResolveLanguage(q.Language, text)
	if err != nil {
		return nil, err
	}
	reply := &message.Reply{
		QueryID:  q.ID,
		Language: string(lang),
	}
	if detected {
		reply.DetectedLanguage = string(lang)
		metrics.Detections.WithLabelValues(string(lang), "query").Inc()
		logger.Debug("detected query language", "language", lang)
	}

	// Step 2: Ask the model, falling back to a canned reply.
	backend := a.Backend()
	if a.generator == nil {
		reply.Text = DemoReply(text, lang)
		reply.Mode = message.ModeDemo
	} else {
		answer, err := a.generator.Generate(ctx, BuildPrompt(text, lang))
		if err != nil {
			logger.Warn("language model failed, using canned reply", "backend", backend, "error", err)
			reply.Text = DemoReply(text, lang)
			reply.Mode = message.ModeErrorFallback
		} else {
			reply.Text = answer
			reply.Mode = message.ModeAI
		}
	}

	// Step 3: Read the answer aloud.
	if a.synthesizer != nil {
		logger.Debug("synthesizing reply", "language", lang, "text_length", len(reply.Text))
		res, err := a.synthesizer.Synthesize(ctx, reply.Text, tts.SynthesizeOpts{Language: string(lang)})
		if err != nil {
			logger.Warn("TTS synthesis failed, continuing without audio", "error", err)
		} else {
			reply.SetResponseAudioBytes(res.Audio)
			reply.ResponseContentType = res.ContentType
		}
	}

	metrics.Queries.WithLabelValues(backend, string(reply.Mode)).Inc()
	metrics.QueryDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	logger.Info("query answered",
		"language", lang, "mode", reply.Mode, "duration", time.Since(start))
	return reply, nil
}

// BuildPrompt builds the agricultural advisor prompt for text in lang.
func BuildPrompt(text string, lang langid.Code) llm.Prompt {
	var sb strings.Builder
	sb.WriteString("You are Uzhav, an expert agricultural AI assistant for Indian farmers.\n")
	fmt.Fprintf(&sb, "Provide farming advice in %s for the farmer's query.\n", lang.Name())
	sb.WriteString("Answer in plain sentences that can be read aloud: no markdown, no lists, at most five sentences.\n")
	sb.WriteString("Cover crops, soil, irrigation, pests, weather and market prices where relevant.")
	return llm.Prompt{
		System: sb.String(),
		User:   fmt.Sprintf("Query: %q", text),
	}
}
