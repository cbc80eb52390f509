// Package local implements llm.Generator using a self-hosted model.
//
// It supports Ollama's /api/generate endpoint and any OpenAI-compatible chat
// endpoint (e.g., Ollama's /v1/chat/completions, vLLM, llama.cpp server).
package local

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

// Generator talks to a local model server.
type Generator struct {
	endpoint string
	model    string
	client   *http.Client
}

// New creates a new local generator from config.
func New(cfg config.LocalConfig, timeout time.Duration) *Generator {
	model := cfg.Model
	if model == "" {
		model = "llama3"
	}
	return &Generator{
		endpoint: cfg.Endpoint,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (g *Generator) Name() string { return "local" }

// Generate sends the prompt to the local endpoint. The request format is
// chosen from the endpoint path.
func (g *Generator) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	var reqBody map[string]any
	if strings.HasSuffix(g.endpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  g.model,
			"system": prompt.System,
			"prompt": prompt.User,
			"stream": false,
		}
	} else {
		msgs := []map[string]string{}
		if prompt.System != "" {
			msgs = append(msgs, map[string]string{"role": "system", "content": prompt.System})
		}
		msgs = append(msgs, map[string]string{"role": "user", "content": prompt.User})
		reqBody = map[string]any{
			"model":       g.model,
			"messages":    msgs,
			"temperature": 0.4,
			"stream":      false,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, llm.Truncate(respBody, 200))
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	content := strings.TrimSpace(extractContent(respData))
	if content == "" {
		return "", llm.ErrEmptyResponse
	}

	slog.Debug("local generation complete", "model", g.model, "response_length", len(content))
	return content, nil
}

// Close is a no-op for the local generator.
func (g *Generator) Close() error { return nil }

func extractContent(data []byte) string {
	// OpenAI-compatible format: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Ollama format: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil {
		return ollamaResp.Response
	}

	// Servers that answer with bare text.
	return string(data)
}
