package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server" toml:"server"`
	Interop   InteropConfig   `yaml:"interop" toml:"interop"`
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Breaker   BreakerConfig   `yaml:"breaker" toml:"breaker"`
	Assets    AssetsConfig    `yaml:"assets" toml:"assets"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" yaml:"port" toml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host" toml:"host"`
	// CORSOrigins lists the origins allowed to call the control API.
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*" yaml:"cors_origins" toml:"cors_origins"`
}

// InteropConfig holds the browser bridge configuration.
type InteropConfig struct {
	Path            string   `envconfig:"INTEROP_PATH" default:"/interop" yaml:"path" toml:"path"`
	Codec           string   `envconfig:"INTEROP_CODEC" default:"json" yaml:"codec" toml:"codec"`
	CallTimeout     Duration `envconfig:"INTEROP_CALL_TIMEOUT" default:"30s" yaml:"call_timeout" toml:"call_timeout"`
	CallbackTimeout Duration `envconfig:"INTEROP_CALLBACK_TIMEOUT" default:"10s" yaml:"callback_timeout" toml:"callback_timeout"`
	PingInterval    Duration `envconfig:"INTEROP_PING_INTERVAL" default:"30s" yaml:"ping_interval" toml:"ping_interval"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// BreakerConfig holds the per-session circuit breaker configuration.
type BreakerConfig struct {
	Enabled     bool     `envconfig:"BREAKER_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
	MaxFailures uint32   `envconfig:"BREAKER_MAX_FAILURES" default:"5" yaml:"max_failures" toml:"max_failures"`
	OpenTimeout Duration `envconfig:"BREAKER_OPEN_TIMEOUT" default:"30s" yaml:"open_timeout" toml:"open_timeout"`
}

// AssetsConfig holds the browser bundle served next to the bridge. An
// empty Dir disables asset serving.
type AssetsConfig struct {
	Dir     string   `envconfig:"ASSETS_DIR" yaml:"dir" toml:"dir"`
	Prefix  string   `envconfig:"ASSETS_PREFIX" default:"/_content" yaml:"prefix" toml:"prefix"`
	Include []string `envconfig:"ASSETS_INCLUDE" default:"**/*.js,**/*.wasm,**/*.html,**/*.css" yaml:"include" toml:"include"`
}

// Duration is a time.Duration written as "30s" in files and environment.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile loads the environment configuration and overlays the YAML or
// TOML file at path, chosen by extension. Values present in the file win.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return nil, fmt.Errorf("unsupported config file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Validate checks values the server cannot start with.
func (c *Config) Validate() error {
	if _, err := wire.CodecByName(c.Interop.Codec); err != nil {
		return fmt.Errorf("invalid interop codec: %w", err)
	}
	if !strings.HasPrefix(c.Interop.Path, "/") {
		return fmt.Errorf("interop path %q must start with /", c.Interop.Path)
	}
	if c.Interop.CallTimeout <= 0 {
		return fmt.Errorf("interop call timeout must be positive")
	}
	if c.Assets.Dir != "" && !strings.HasPrefix(c.Assets.Prefix, "/") {
		return fmt.Errorf("assets prefix %q must start with /", c.Assets.Prefix)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: []string{"*"},
		},
		Interop: InteropConfig{
			Path:            "/interop",
			Codec:           "json",
			CallTimeout:     Duration(30 * time.Second),
			CallbackTimeout: Duration(10 * time.Second),
			PingInterval:    Duration(30 * time.Second),
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Breaker: BreakerConfig{
			Enabled:     true,
			MaxFailures: 5,
			OpenTimeout: Duration(30 * time.Second),
		},
		Assets: AssetsConfig{
			Prefix:  "/_content",
			Include: []string{"**/*.js", "**/*.wasm", "**/*.html", "**/*.css"},
		},
	}
}
