// Package main is the entry point for the webinterop server.
//
// The server accepts browser contexts on a WebSocket endpoint, binds the
// Geolocation, Observer and JsLogger proxies to each of them and exposes
// those proxies over a REST control API.
//
//	Browser (interop bundle) ⇄ WebSocket ⇄ Server ⇄ REST clients
//
// Configuration:
//   - Environment variables (12-factor)
//   - An optional YAML or TOML file (-config), overriding the environment
//   - CLI flags for the most common settings
//
// Usage:
//
//	./server -port 8000
//	./server -config server.yaml
//	./server -dev
package main
