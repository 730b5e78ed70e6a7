// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration for the gateway.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	// Generation provider credential pool. GEMINI_API_KEYS takes a
	// comma-separated list; numbered GEMINI_API_KEY_1..n variables are
	// scanned as a fallback when the list is unset.
	GeminiAPIKeys []string `env:"GEMINI_API_KEYS"`
	GeminiModel   string   `env:"GEMINI_MODEL" envDefault:"models/gemini-1.5-pro"`

	CartesiaAPIKey   string `env:"CARTESIA_API_KEY"`
	ElevenLabsAPIKey string `env:"ELEVENLABS_API_KEY"`

	// Voices maps a primary language subtag to a TTS voice id,
	// e.g. TTS_VOICES="en:EXAVITQu4vr4xnSDxMaL,de:pNInz6obpgDQGcFmaJgB".
	Voices map[string]string `env:"TTS_VOICES"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en-US"`

	LinkModelPath string `env:"LINK_MODEL_PATH" envDefault:"model/link_classifier.json"`

	// SessionIdleTTL evicts sessions idle longer than the given duration.
	// Zero disables eviction.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"0"`

	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"10485760"`

	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"10s"`
	HandlerTimeout    time.Duration `env:"HANDLER_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"20"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses configuration from the process environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if len(cfg.GeminiAPIKeys) == 0 {
		cfg.GeminiAPIKeys = scanNumberedKeys("GEMINI_API_KEY_")
	}
	return &cfg, nil
}

// Validate checks that the configuration can actually serve requests.
func (c *Config) Validate() error {
	if len(c.GeminiAPIKeys) == 0 {
		return fmt.Errorf("no generation credentials: set GEMINI_API_KEYS or GEMINI_API_KEY_1")
	}
	return nil
}

// scanNumberedKeys collects PREFIX1, PREFIX2, ... in order, stopping at the
// first gap.
func scanNumberedKeys(prefix string) []string {
	var keys []string
	for i := 1; ; i++ {
		v := strings.TrimSpace(os.Getenv(fmt.Sprintf("%s%d", prefix, i)))
		if v == "" {
			break
		}
		keys = append(keys, v)
	}
	return keys
}
