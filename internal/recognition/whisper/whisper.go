// Package whisper runs recognition sessions over uploaded audio clips using a
// Whisper-compatible transcription server.
//
// Two server flavors are supported:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper, OpenAI)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/krishivoice/internal/config"
)

// Segment is one timed piece of a transcript.
type Segment struct {
	Text       string  `json:"text"`
	AvgLogprob float64 `json:"avg_logprob"`
}

// Transcript is the server's answer for one clip.
type Transcript struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Confidence is exp of the mean segment log-probability, in (0,1]. It is 0
// when the server reported no segments.
func (t *Transcript) Confidence() float64 {
	if len(t.Segments) == 0 {
		return 0
	}
	var sum float64
	for _, s := range t.Segments {
		sum += s.AvgLogprob
	}
	return math.Min(1, math.Exp(sum/float64(len(t.Segments))))
}

// Client talks to a Whisper server.
type Client struct {
	endpoint string
	flavor   string // "openai" or "asr"
	model    string
	apiKey   string
	client   *http.Client
}

// New creates a client from config.
func New(cfg config.WhisperConfig) *Client {
	flavor := cfg.Type
	if flavor == "" {
		flavor = "openai"
	}
	return &Client{
		endpoint: cfg.Endpoint,
		flavor:   flavor,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		client:   &http.Client{},
	}
}

// Transcribe sends one clip. language is an ISO-639-1 hint; empty lets the
// server detect the language.
func (c *Client) Transcribe(ctx context.Context, audio []byte, contentType, language string) (*Transcript, error) {
	req, err := c.newRequest(ctx, audio, contentType, language)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s transcription request: %w", c.flavor, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("%s transcription failed (status %d): %s", c.flavor, resp.StatusCode, respBody)
	}

	var out Transcript
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}
	out.Text = strings.TrimSpace(out.Text)

	slog.Debug("whisper transcription complete",
		"text_length", len(out.Text), "language", out.Language, "segments", len(out.Segments))
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, audio []byte, contentType, language string) (*http.Request, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	field := "file"
	if c.flavor == "asr" {
		field = "audio_file"
	}
	part, err := writer.CreateFormFile(field, "audio"+extFromContentType(contentType))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}

	endpoint := c.endpoint
	if c.flavor == "asr" {
		q := url.Values{"task": {"transcribe"}, "output": {"json"}, "encode": {"true"}}
		if language != "" {
			q.Set("language", language)
		}
		endpoint += "?" + q.Encode()
	} else {
		if c.model != "" {
			_ = writer.WriteField("model", c.model)
		}
		if language != "" {
			_ = writer.WriteField("language", language)
		}
		_ = writer.WriteField("response_format", "verbose_json")
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return req, nil
}

func extFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "wav"):
		return ".wav"
	case strings.Contains(ct, "ogg"):
		return ".ogg"
	case strings.Contains(ct, "mp3"), strings.Contains(ct, "mpeg"):
		return ".mp3"
	case strings.Contains(ct, "flac"):
		return ".flac"
	case strings.Contains(ct, "webm"):
		return ".webm"
	case strings.Contains(ct, "m4a"), strings.Contains(ct, "mp4"):
		return ".m4a"
	default:
		return ".wav"
	}
}
