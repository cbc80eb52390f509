// Package piper implements the TTS Synthesizer using a Piper Wyoming protocol server.
//
// Voices and endpoints are keyed by BCP-47 tag (e.g., "hi-IN"); endpoints may
// also be keyed by base language (e.g., "hi").
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200. This package
// implements a client for that protocol to synthesize speech.
//
// Wyoming protocol format (per event):
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
package piper

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/tts"
)

// defaultVoices maps BCP-47 tags to Piper voice model names. Piper has no
// voice for most Indian languages yet; those fall back through SelectVoice.
var defaultVoices = map[string]string{
	"en-GB": "en_GB-alan-medium",
	"en-US": "en_US-lessac-medium",
	"hi-IN": "hi_IN-pratham-medium",
	"ml-IN": "ml_IN-meera-medium",
	"te-IN": "te_IN-maya-medium",
	"ne-NP": "ne_NP-google-medium",
}

// Synthesizer implements tts.Synthesizer using the Wyoming protocol.
type Synthesizer struct {
	endpoint  string            // default host:port of the Piper Wyoming server
	endpoints map[string]string // tag or base language -> host:port for per-language Piper instances
	voices    map[string]string // tag -> voice model name
	tags      []string          // keys of voices
}

// New creates a new Piper synthesizer from config.
func New(cfg config.PiperConfig) *Synthesizer {
	// Merge user-configured voices with defaults. Config keys arrive
	// lower-cased, so they are canonicalised first.
	voices := make(map[string]string, len(defaultVoices))
	for k, v := range defaultVoices {
		voices[k] = v
	}
	for k, v := range cfg.Voices {
		voices[canonical(k)] = v
	}
	tags := make([]string, 0, len(voices))
	for k := range voices {
		tags = append(tags, k)
	}

	cleanEndpoint := func(ep string) string {
		ep = strings.TrimPrefix(ep, "tcp://")
		ep = strings.TrimPrefix(ep, "http://")
		return ep
	}

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[canonical(lang)] = cleanEndpoint(ep)
	}

	return &Synthesizer{
		endpoint:  cleanEndpoint(cfg.Endpoint),
		endpoints: endpoints,
		voices:    voices,
		tags:      tags,
	}
}

// Voice returns the Piper voice model used for lang.
func (s *Synthesizer) Voice(lang string) string {
	tag, ok := tts.SelectVoice(s.tags, lang)
	if !ok {
		return ""
	}
	return s.voices[tag]
}

// Endpoint returns the Wyoming server used for lang: a per-tag endpoint,
// else a per-base-language endpoint, else the default.
func (s *Synthesizer) Endpoint(lang string) string {
	tag := language.Make(lang)
	if ep := s.endpoints[tag.String()]; ep != "" {
		return ep
	}
	if base, _ := tag.Base(); s.endpoints[base.String()] != "" {
		return s.endpoints[base.String()]
	}
	return s.endpoint
}

// Synthesize sends text to the Piper server and returns synthesized audio as WAV.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	voice := opts.Voice
	if voice == "" {
		voice = s.Voice(opts.Language)
	}

	endpoint := s.Endpoint(opts.Language)
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for language %q", opts.Language)
	}

	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "language", opts.Language, "endpoint", endpoint)

	// Connect to the Wyoming server.
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	// Set deadline from context.
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}

	// Send synthesize event.
	synthEvent := wyomingEvent{
		Type: "synthesize",
		Data: map[string]any{
			"text": text,
			"voice": map[string]any{
				"name": voice,
			},
		},
	}
	if err := writeEvent(conn, synthEvent, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	// Read response events: audio-start → audio-chunk* → audio-stop
	r := bufio.NewReader(conn)
	var (
		pcmBuf     bytes.Buffer
		sampleRate = 22050
		channels   = 1
		width      = 2
	)

	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			if rate, ok := evt.Data["rate"].(float64); ok {
				sampleRate = int(rate)
			}
			if ch, ok := evt.Data["channels"].(float64); ok {
				channels = int(ch)
			}
			if w, ok := evt.Data["width"].(float64); ok {
				width = int(w)
			}
			slog.Debug("piper audio-start", "rate", sampleRate, "channels", channels, "width", width)

		case "audio-chunk":
			if len(payload) > 0 {
				pcmBuf.Write(payload)
			}

		case "audio-stop":
			slog.Debug("piper audio-stop", "pcm_bytes", pcmBuf.Len())
			wav := pcmToWAV(pcmBuf.Bytes(), sampleRate, channels, width)
			return &tts.SynthesizeResult{
				Audio:       wav,
				ContentType: "audio/wav",
				SampleRate:  sampleRate,
				Channels:    channels,
			}, nil

		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return nil, fmt.Errorf("piper error: %s", msg)

		default:
			slog.Debug("piper unknown event", "type", evt.Type)
		}
	}
}

// Close is a no-op; connections are per-request.
func (s *Synthesizer) Close() error { return nil }

// canonical normalises a config key such as "hi-in" to "hi-IN".
func canonical(key string) string {
	tag, err := language.Parse(key)
	if err != nil {
		return key
	}
	return tag.String()
}
