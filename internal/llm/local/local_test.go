package local

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/llm"
)

func TestGenerate_Ollama(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req["model"])
		assert.Equal(t, "persona", req["system"])
		assert.Equal(t, "question", req["prompt"])
		assert.Equal(t, false, req["stream"])
		_, _ = w.Write([]byte(`{"response":"Sow after the first rain."}`))
	}))
	defer srv.Close()

	g := New(config.LocalConfig{Endpoint: srv.URL + "/api/generate"}, time.Second)
	out, err := g.Generate(context.Background(), llm.Prompt{System: "persona", User: "question"})
	require.NoError(t, err)
	assert.Equal(t, "Sow after the first rain.", out)
}

func TestGenerate_ChatCompatible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string              `json:"model"`
			Messages []map[string]string `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "qwen", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0]["role"])
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Use drip irrigation."}}]}`))
	}))
	defer srv.Close()

	g := New(config.LocalConfig{Endpoint: srv.URL + "/v1/chat/completions", Model: "qwen"}, time.Second)
	out, err := g.Generate(context.Background(), llm.Prompt{System: "persona", User: "question"})
	require.NoError(t, err)
	assert.Equal(t, "Use drip irrigation.", out)
}

func TestGenerate_Failures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/generate" {
			_, _ = w.Write([]byte(`{"response":""}`))
			return
		}
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(config.LocalConfig{Endpoint: srv.URL + "/api/generate"}, time.Second).Generate(context.Background(), llm.Prompt{User: "q"})
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)

	_, err = New(config.LocalConfig{Endpoint: srv.URL + "/v1/chat/completions"}, time.Second).Generate(context.Background(), llm.Prompt{User: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestExtractContent(t *testing.T) {
	assert.Equal(t, "a", extractContent([]byte(`{"choices":[{"message":{"content":"a"}}]}`)))
	assert.Equal(t, "b", extractContent([]byte(`{"response":"b"}`)))
	assert.Equal(t, "plain text", extractContent([]byte("plain text")))
}
