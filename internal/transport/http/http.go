// Package http implements the HTTP/WebSocket transport for krishivoice.
//
// This transport exposes the REST API used by the web client (assistant
// queries, language detection, clip recognition, weather) and the /ws
// endpoint that bridges the browser's speech engine to recognition
// sessions.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/nadzzz/krishivoice/docs" // registers the OpenAPI document
	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/langid"
	"github.com/nadzzz/krishivoice/internal/recognition"
	"github.com/nadzzz/krishivoice/internal/recognition/remote"
	"github.com/nadzzz/krishivoice/internal/recognition/whisper"
	"github.com/nadzzz/krishivoice/internal/weather"
)

const defaultMaxUploadBytes = 25 << 20 // 25 MB

// Deps are the collaborators behind the non-assistant routes.
type Deps struct {
	// Classifier backs /api/detect. Defaults to the built-in table.
	Classifier *langid.Classifier

	// Weather serves the /api/weather routes. Defaults to Demo.
	Weather weather.Provider

	// Demo serves the /api/weather/demo routes.
	Demo *weather.Demo

	// Whisper transcribes uploads for /api/recognize. Nil disables the route.
	Whisper *whisper.Client

	// Recognition tunes the sessions run for uploads and the websocket bridge.
	Recognition []recognition.Option
}

// Transport implements transport.Transport over HTTP and WebSocket.
type Transport struct {
	cfg    config.HTTPConfig
	deps   Deps
	server *http.Server
}

// New creates a new HTTP transport.
func New(cfg config.HTTPConfig, deps Deps) *Transport {
	if deps.Classifier == nil {
		deps.Classifier = langid.NewClassifier(nil)
	}
	if deps.Demo == nil {
		deps.Demo = weather.NewDemo(uint64(time.Now().UnixNano()))
	}
	if deps.Weather == nil {
		deps.Weather = deps.Demo
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	return &Transport{cfg: cfg, deps: deps}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the route table answering queries with handler.
func (t *Transport) Handler(handler assistant.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/ai/query", func(w http.ResponseWriter, r *http.Request) {
		t.handleQuery(w, r, handler)
	})
	mux.HandleFunc("POST /api/detect", t.handleDetect)
	mux.HandleFunc("POST /api/recognize", func(w http.ResponseWriter, r *http.Request) {
		t.handleRecognize(w, r, handler)
	})
	mux.HandleFunc("GET /api/languages", t.handleLanguages)
	mux.HandleFunc("GET /api/health", t.handleHealth)

	mux.HandleFunc("GET /api/weather/current/{city}", t.handleCurrent)
	mux.HandleFunc("GET /api/weather/forecast/{city}", t.handleForecast)
	mux.HandleFunc("GET /api/weather/search/{query}", t.handleSearch)
	mux.HandleFunc("GET /api/weather/coordinates/{lat}/{lon}", t.handleCoordinates)
	mux.HandleFunc("GET /api/weather/reverse-geocode/{lat}/{lon}", t.handleReverse)
	mux.HandleFunc("GET /api/weather/demo/coordinates/{lat}/{lon}", t.handleDemoCoordinates)
	mux.HandleFunc("GET /api/weather/demo/{city}", t.handleDemoCurrent)

	// GET /ws: the browser's speech engine drives recognition sessions.
	mux.Handle("GET /ws", remote.NewBridge(handler,
		remote.WithControllerOptions(t.deps.Recognition...),
		remote.WithCheckOrigin(checkOrigin(t.cfg.AllowedOrigins)),
	))

	// Swagger UI: serves the registered OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return cors(t.cfg.AllowedOrigins, instrument(mux))
}

// Listen starts the HTTP server and routes incoming requests to the handler.
func (t *Transport) Listen(ctx context.Context, handler assistant.Handler) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.cfg.Port),
		Handler:           t.Handler(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.cfg.Port, "weather", t.deps.Weather.Name(),
		"recognize", t.deps.Whisper != nil)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
