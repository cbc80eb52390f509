// Package openai implements llm.Generator using OpenAI's Chat Completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/llm"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Generator uses the OpenAI chat completions endpoint.
type Generator struct {
	apiKey  string
	model   string
	chatURL string
	client  *http.Client
}

// New creates a new OpenAI generator from config.
func New(cfg config.OpenAIConfig, timeout time.Duration) *Generator {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Generator{
		apiKey:  cfg.APIKey,
		model:   model,
		chatURL: base + "/chat/completions",
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (g *Generator) Name() string { return "openai" }

// Generate sends the system and user turns to the chat completions API.
func (g *Generator) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	reqBody := chatRequest{
		Model:       g.model,
		Messages:    messages(prompt),
		Temperature: 0.4,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.chatURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("chat completion failed (status %d): %s", resp.StatusCode, llm.Truncate(respBody, 200))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", llm.ErrEmptyResponse
	}

	content := strings.TrimSpace(chatResp.Choices[0].Message.Content)
	if content == "" {
		return "", llm.ErrEmptyResponse
	}
	slog.Debug("openai generation complete", "model", g.model, "response_length", len(content))
	return content, nil
}

// Close is a no-op for the OpenAI generator.
func (g *Generator) Close() error { return nil }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func messages(p llm.Prompt) []chatMessage {
	var out []chatMessage
	if p.System != "" {
		out = append(out, chatMessage{Role: "system", Content: p.System})
	}
	return append(out, chatMessage{Role: "user", Content: p.User})
}
