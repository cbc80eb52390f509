package main

import (
	"log/slog"
	"time"

	"github.com/nadzzz/krishivoice/internal/assistant"
	"github.com/nadzzz/krishivoice/internal/config"
	"github.com/nadzzz/krishivoice/internal/llm"
	"github.com/nadzzz/krishivoice/internal/llm/gemini"
	"github.com/nadzzz/krishivoice/internal/llm/local"
	"github.com/nadzzz/krishivoice/internal/llm/openai"
	"github.com/nadzzz/krishivoice/internal/recognition"
	"github.com/nadzzz/krishivoice/internal/tts/piper"
	"github.com/nadzzz/krishivoice/internal/weather"
	"github.com/nadzzz/krishivoice/internal/weather/openweathermap"
)

// newGenerator returns the configured language model, or nil for demo
// replies. Hosted backends without an API key also fall back to demo.
func newGenerator(cfg config.AssistantConfig) llm.Generator {
	switch cfg.Backend {
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			slog.Warn("gemini API key not configured, serving demo replies")
			return nil
		}
		slog.Info("using Gemini assistant", "model", cfg.Gemini.Model)
		return gemini.New(cfg.Gemini, cfg.Timeout)
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			slog.Warn("openai API key not configured, serving demo replies")
			return nil
		}
		slog.Info("using OpenAI assistant", "model", cfg.OpenAI.Model)
		return openai.New(cfg.OpenAI, cfg.Timeout)
	case "local":
		slog.Info("using local assistant", "endpoint", cfg.Local.Endpoint, "model", cfg.Local.Model)
		return local.New(cfg.Local, cfg.Timeout)
	default:
		slog.Info("using demo assistant")
		return nil
	}
}

// newAssistant wires the language model and, when enabled, speech synthesis.
func newAssistant(cfg *config.Config) *assistant.Assistant {
	var opts []assistant.Option
	if cfg.TTS.Enabled && cfg.Assistant.Speak {
		slog.Info("using Piper TTS", "endpoint", cfg.TTS.Piper.Endpoint)
		opts = append(opts, assistant.WithSynthesizer(piper.New(cfg.TTS.Piper)))
	}
	return assistant.New(newGenerator(cfg.Assistant), opts...)
}

// newWeather returns the live provider when an API key is configured, and
// the demo provider in every case. Demo coordinates are named by the live
// provider's reverse geocoder when there is one.
func newWeather(cfg config.WeatherConfig) (weather.Provider, *weather.Demo) {
	demo := weather.NewDemo(uint64(time.Now().UnixNano()))
	if cfg.APIKey == "" {
		slog.Warn("weather API key not configured, serving demo weather")
		return demo, demo
	}
	live := openweathermap.New(cfg)
	demo.Geocoder = live
	return live, demo
}

func recognitionOptions(cfg config.RecognitionConfig) []recognition.Option {
	return []recognition.Option{
		recognition.WithFallbackTimeout(cfg.FallbackTimeout),
		recognition.WithConfidenceThreshold(cfg.ConfidenceThreshold),
	}
}
