//go:build js && wasm

// Package jsplatform backs browser.Platform with the real Web APIs through
// syscall/js, and carries bridge frames over a browser WebSocket.
package jsplatform
