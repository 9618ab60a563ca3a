// Package config provides 12-factor configuration for the interop server.
//
// Configuration is loaded from environment variables with defaults. A YAML
// or TOML file can be layered on top with LoadFile; values present in the
// file override the environment.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Interop: bridge endpoint, codec, call and callback timeouts, pings
//   - Logging: log level and output format
//   - RateLimit: per-IP rate limiting
//   - Breaker: per-session circuit breaker
//   - Assets: browser bundle directory and include globs
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Addr())
//
// Environment Variables:
//   - PORT, HOST
//   - INTEROP_PATH, INTEROP_CODEC, INTEROP_CALL_TIMEOUT,
//     INTEROP_CALLBACK_TIMEOUT, INTEROP_PING_INTERVAL
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - BREAKER_ENABLED, BREAKER_MAX_FAILURES, BREAKER_OPEN_TIMEOUT
//   - ASSETS_DIR, ASSETS_PREFIX, ASSETS_INCLUDE
package config
