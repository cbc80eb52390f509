// Package gemini implements llm.Generator over the Google Generative
// Language REST API (models/<model>:generateContent).
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/llm"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Generator calls Gemini's generateContent endpoint.
type Generator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// New creates a Gemini generator from config. timeout bounds each request.
func New(cfg config.GeminiConfig, timeout time.Duration) *Generator {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash-latest"
	}
	return &Generator{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: base,
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (g *Generator) Name() string { return "gemini" }

// Generate sends the prompt as a single user turn.
func (g *Generator) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt.Text()}}}},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.baseURL, url.PathEscape(g.model), url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// The request URL carries the key; report only the cause.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("gemini failed (status %d): %s", resp.StatusCode, llm.Truncate(respBody, 200))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding gemini response: %w", err)
	}

	text := out.text()
	if text == "" {
		return "", llm.ErrEmptyResponse
	}
	slog.Debug("gemini generation complete", "model", g.model, "response_length", len(text))
	return text, nil
}

// Close is a no-op for the Gemini generator.
func (g *Generator) Close() error { return nil }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return strings.TrimSpace(sb.String())
}
