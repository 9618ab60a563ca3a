package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	assert.Equal(t, "/interop", cfg.Interop.Path)
	assert.Equal(t, "json", cfg.Interop.Codec)
	assert.Equal(t, 30*time.Second, cfg.Interop.CallTimeout.Std())
	assert.Equal(t, 10*time.Second, cfg.Interop.CallbackTimeout.Std())

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.True(t, cfg.Breaker.Enabled)
	assert.Equal(t, uint32(5), cfg.Breaker.MaxFailures)

	assert.Empty(t, cfg.Assets.Dir)
	require.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                 "9000",
		"HOST":                 "127.0.0.1",
		"INTEROP_CODEC":        "cbor",
		"INTEROP_CALL_TIMEOUT": "5s",
		"LOG_LEVEL":            "debug",
		"LOG_DEV":              "true",
		"RATE_LIMIT_RPS":       "500",
		"RATE_LIMIT_ENABLED":   "false",
		"BREAKER_MAX_FAILURES": "2",
		"ASSETS_DIR":           "web/dist",
		"ASSETS_INCLUDE":       "**/*.js,**/*.wasm",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "cbor", cfg.Interop.Codec)
	assert.Equal(t, 5*time.Second, cfg.Interop.CallTimeout.Std())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, uint32(2), cfg.Breaker.MaxFailures)
	assert.Equal(t, "web/dist", cfg.Assets.Dir)
	assert.Equal(t, []string{"**/*.js", "**/*.wasm"}, cfg.Assets.Include)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown codec", key: "INTEROP_CODEC", value: "xml"},
		{name: "relative path", key: "INTEROP_PATH", value: "interop"},
		{name: "bad duration", key: "INTEROP_CALL_TIMEOUT", value: "soon"},
		{name: "zero timeout", key: "INTEROP_CALL_TIMEOUT", value: "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "yaml",
			file: "interop.yaml",
			content: `
server:
  port: "9100"
interop:
  codec: cbor
  call_timeout: 2s
breaker:
  enabled: false
assets:
  dir: ./dist
  include: ["**/*.wasm"]
`,
		},
		{
			name: "toml",
			file: "interop.toml",
			content: `
[server]
port = "9100"

[interop]
codec = "cbor"
call_timeout = "2s"

[breaker]
enabled = false

[assets]
dir = "./dist"
include = ["**/*.wasm"]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			cfg, err := LoadFile(path)
			require.NoError(t, err)

			assert.Equal(t, "9100", cfg.Server.Port)
			assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep their defaults")
			assert.Equal(t, "cbor", cfg.Interop.Codec)
			assert.Equal(t, 2*time.Second, cfg.Interop.CallTimeout.Std())
			assert.Equal(t, 10*time.Second, cfg.Interop.CallbackTimeout.Std())
			assert.False(t, cfg.Breaker.Enabled)
			assert.Equal(t, "./dist", cfg.Assets.Dir)
			assert.Equal(t, []string{"**/*.wasm"}, cfg.Assets.Include)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	ini := filepath.Join(dir, "interop.ini")
	require.NoError(t, os.WriteFile(ini, []byte("port=1"), 0o600))
	_, err = LoadFile(ini)
	assert.ErrorContains(t, err, "unsupported config file extension")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("interop:\n  codec: xml\n"), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorContains(t, err, "invalid interop codec")
}

func TestDurationText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1m30s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("ninety")))
}
