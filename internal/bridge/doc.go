// Package bridge carries interop frames between the host and a browser
// context.
//
// A Conn moves encoded frames (WebSocketConn over gorilla/websocket, Pipe in
// memory). A Peer correlates requests with their results and serves the
// requests the other side sends. A Session is the host's view of one
// connected browser context and implements interop.Runtime.
package bridge
