package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.AITimeout())
	assert.Equal(t, 7*24*time.Hour, cfg.TokenTTL())
	assert.Equal(t, 10.0, cfg.RateLimit.RPS)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingNamedFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
addr = ":9090"

[ai]
api_key = "file-key"
embed_model = "custom-embed"

[auth]
jwt_secret = "file-secret"
token_ttl_hours = 1

[cors]
allowed_origins = ["https://app.example.com"]

[log]
level = "debug"
development = true
`), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "file-key", cfg.AI.APIKey)
	assert.Equal(t, "custom-embed", cfg.AI.EmbedModel)
	assert.Equal(t, time.Hour, cfg.TokenTTL())
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Log.Development)
}

func TestEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[ai]
api_key = "file-key"

[auth]
jwt_secret = "file-secret"
`), 0600))

	t.Setenv(EnvGeminiAPIKey, "env-key")
	t.Setenv(EnvJWTSecret, "env-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.AI.APIKey)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
}

func TestLoadBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}
