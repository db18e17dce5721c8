// Package config loads the application configuration from a TOML file with
// environment overrides for secrets.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables that override file values. Secrets should come from
// the environment rather than the config file.
const (
	EnvGeminiAPIKey = "TEAMHUB_GEMINI_API_KEY"
	EnvJWTSecret    = "TEAMHUB_JWT_SECRET"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	AI        AIConfig        `toml:"ai"`
	Storage   StorageConfig   `toml:"storage"`
	Auth      AuthConfig      `toml:"auth"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
	CORS      CORSConfig      `toml:"cors"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	// Addr is the listen address, host:port.
	Addr string `toml:"addr"`
}

type AIConfig struct {
	// APIKey authenticates against the Gemini API. Overridden by
	// TEAMHUB_GEMINI_API_KEY.
	APIKey string `toml:"api_key"`

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string `toml:"base_url"`

	EmbedModel  string `toml:"embed_model"`
	TextModel   string `toml:"text_model"`
	AnswerModel string `toml:"answer_model"`

	// TimeoutSeconds bounds each provider request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

type StorageConfig struct {
	// DataDir holds the SQLite database. Empty defaults to
	// ~/.teamhub/data.
	DataDir string `toml:"data_dir"`
}

type AuthConfig struct {
	// JWTSecret signs bearer tokens. Overridden by TEAMHUB_JWT_SECRET.
	JWTSecret string `toml:"jwt_secret"`

	// TokenTTLHours is how long issued tokens stay valid.
	TokenTTLHours int `toml:"token_ttl_hours"`
}

type RateLimitConfig struct {
	// RPS enables per-client rate limiting when positive.
	RPS   float64 `toml:"rps"`
	Burst int     `toml:"burst"`
}

type CORSConfig struct {
	// AllowedOrigins restricts cross-origin access. Empty allows any.
	AllowedOrigins []string `toml:"allowed_origins"`
}

type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Development switches to human-readable console output.
	Development bool `toml:"development"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		AI: AIConfig{
			TimeoutSeconds: 60,
		},
		Auth: AuthConfig{
			TokenTTLHours: 7 * 24,
		},
		RateLimit: RateLimitConfig{
			RPS:   10,
			Burst: 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. An empty path yields defaults plus overrides; a
// named file that cannot be read is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if v := os.Getenv(EnvGeminiAPIKey); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv(EnvJWTSecret); v != "" {
		cfg.Auth.JWTSecret = v
	}

	return cfg, nil
}

// AITimeout returns the provider timeout as a duration.
func (c Config) AITimeout() time.Duration {
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// TokenTTL returns the token lifetime as a duration.
func (c Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}
