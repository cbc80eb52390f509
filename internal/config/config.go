// Package config handles loading and validating the krishivoice configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration for the krishivoice daemon.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Transports  TransportsConfig  `mapstructure:"transports"`
	Assistant   AssistantConfig   `mapstructure:"assistant"`
	Recognition RecognitionConfig `mapstructure:"recognition"`
	Weather     WeatherConfig     `mapstructure:"weather"`
	TTS         TTSConfig         `mapstructure:"tts"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds the health check server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each transport layer.
type TransportsConfig struct {
	GRPC GRPCConfig `mapstructure:"grpc"`
	HTTP HTTPConfig `mapstructure:"http"`
	MQTT MQTTConfig `mapstructure:"mqtt"`
}

// GRPCConfig configures the gRPC transport.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// HTTPConfig configures the HTTP/WebSocket transport.
type HTTPConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS; "*" allows any origin
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// MQTTConfig configures the MQTT transport.
type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
	TopicPrefix string `mapstructure:"topic_prefix"` // queries on <prefix>/query/+, replies on <prefix>/reply/<source>
	QoS         byte   `mapstructure:"qos"`
}

// AssistantConfig selects and configures the language model backend.
type AssistantConfig struct {
	Backend string        `mapstructure:"backend"` // "gemini", "openai", "local" or "demo"
	Timeout time.Duration `mapstructure:"timeout"`
	Speak   bool          `mapstructure:"speak"` // attach synthesized audio to replies
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Local   LocalConfig   `mapstructure:"local"`
}

// GeminiConfig holds Google Generative Language API settings.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIConfig holds OpenAI API settings.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// LocalConfig holds self-hosted LLM settings.
type LocalConfig struct {
	Endpoint string `mapstructure:"endpoint"` // Ollama /api/generate or an OpenAI-compatible chat endpoint
	Model    string `mapstructure:"model"`
}

// RecognitionConfig tunes recognition sessions.
type RecognitionConfig struct {
	FallbackTimeout     time.Duration `mapstructure:"fallback_timeout"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	Whisper             WhisperConfig `mapstructure:"whisper"`
}

// WhisperConfig points at a Whisper-compatible transcription server used for
// uploaded clips. Recognition of uploads is disabled when Endpoint is empty.
type WhisperConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Type     string `mapstructure:"type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	Model    string `mapstructure:"model"`
	APIKey   string `mapstructure:"api_key"`
}

// WeatherConfig configures the weather provider. Demo data is served when
// APIKey is empty.
type WeatherConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	GeoURL  string        `mapstructure:"geo_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Backend string      `mapstructure:"backend"` // "piper"
	Piper   PiperConfig `mapstructure:"piper"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// Endpoints maps BCP-47 tags (or their base language) to per-language
// Wyoming servers; Endpoint is used for everything else. Voices maps
// the same keys to Piper voice model names.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./krishivoice.yaml, ./configs/krishivoice.yaml, /etc/krishivoice/krishivoice.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("krishivoice")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/krishivoice")
	}

	// Environment variables: KRISHIVOICE_SERVER_HEALTH_PORT, KRISHIVOICE_ASSISTANT_BACKEND, etc.
	v.SetEnvPrefix("KRISHIVOICE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GEMINI_API_KEY}")
	cfg.Assistant.Gemini.APIKey = resolveEnvRef(cfg.Assistant.Gemini.APIKey)
	cfg.Assistant.OpenAI.APIKey = resolveEnvRef(cfg.Assistant.OpenAI.APIKey)
	cfg.Recognition.Whisper.APIKey = resolveEnvRef(cfg.Recognition.Whisper.APIKey)
	cfg.Weather.APIKey = resolveEnvRef(cfg.Weather.APIKey)
	cfg.Transports.MQTT.Password = resolveEnvRef(cfg.Transports.MQTT.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.grpc.enabled", true)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("transports.http.enabled", true)
	v.SetDefault("transports.http.port", 3001)
	v.SetDefault("transports.http.allowed_origins", []string{"*"})
	v.SetDefault("transports.http.max_upload_bytes", 10<<20)
	v.SetDefault("transports.mqtt.enabled", false)
	v.SetDefault("transports.mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("transports.mqtt.client_id", "krishivoice")
	v.SetDefault("transports.mqtt.topic_prefix", "krishivoice")
	v.SetDefault("transports.mqtt.qos", 1)
	v.SetDefault("assistant.backend", "gemini")
	v.SetDefault("assistant.timeout", 15*time.Second)
	v.SetDefault("assistant.speak", false)
	v.SetDefault("assistant.gemini.model", "gemini-1.5-flash-latest")
	v.SetDefault("assistant.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("assistant.openai.model", "gpt-4o-mini")
	v.SetDefault("assistant.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("assistant.local.endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("assistant.local.model", "llama3")
	v.SetDefault("recognition.fallback_timeout", 3*time.Second)
	v.SetDefault("recognition.confidence_threshold", 0.7)
	v.SetDefault("recognition.whisper.endpoint", "")
	v.SetDefault("recognition.whisper.type", "openai")
	v.SetDefault("weather.base_url", "http://api.openweathermap.org/data/2.5")
	v.SetDefault("weather.geo_url", "http://api.openweathermap.org/geo/1.0")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("tts.enabled", false)
	v.SetDefault("tts.backend", "piper")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	switch c.Assistant.Backend {
	case "gemini", "openai", "local", "demo":
	default:
		return fmt.Errorf("unknown assistant backend: %q", c.Assistant.Backend)
	}
	if c.Assistant.Timeout <= 0 {
		return fmt.Errorf("assistant.timeout must be positive, got %s", c.Assistant.Timeout)
	}
	if c.Recognition.FallbackTimeout <= 0 {
		return fmt.Errorf("recognition.fallback_timeout must be positive, got %s", c.Recognition.FallbackTimeout)
	}
	if t := c.Recognition.ConfidenceThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("recognition.confidence_threshold must be in (0,1], got %g", t)
	}
	switch c.Recognition.Whisper.Type {
	case "", "openai", "asr":
	default:
		return fmt.Errorf("unknown whisper type: %q", c.Recognition.Whisper.Type)
	}
	if c.Weather.Timeout <= 0 {
		return fmt.Errorf("weather.timeout must be positive, got %s", c.Weather.Timeout)
	}
	if c.TTS.Enabled && c.TTS.Backend != "piper" {
		return fmt.Errorf("unknown TTS backend: %q", c.TTS.Backend)
	}
	if c.Transports.MQTT.QoS > 2 {
		return fmt.Errorf("transports.mqtt.qos must be 0, 1 or 2, got %d", c.Transports.MQTT.QoS)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to "" so the backend falls back as if no secret was given.
func resolveEnvRef(val string) string {
	if len(val) > 3 && strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(w io.Writer, cfg LoggingConfig) {
	slog.SetDefault(slog.New(NewHandler(w, cfg)))
}
