// Package ws accepts browser contexts over WebSocket.
//
// Each connection becomes a bridge.Session. Once the browser runtime sends
// its hello frame the session is attached to the component manager, which
// binds the interop proxies to it; when the connection ends the component
// is detached and its proxies disposed.
//
// The codec defaults to the configured one and can be chosen per
// connection with the codec query parameter (json or cbor). Binary codecs
// use binary WebSocket messages.
package ws
