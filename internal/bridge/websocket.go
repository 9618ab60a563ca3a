package bridge

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MaxMessageSize bounds a single incoming frame.
const MaxMessageSize = 1 << 20

// WebSocketConn adapts a gorilla websocket connection. Binary codecs travel
// as binary messages, text codecs as text messages.
type WebSocketConn struct {
	ws          *websocket.Conn
	messageType int

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

// NewWebSocketConn wraps ws. When pingInterval is positive the connection
// is kept alive with pings, and a peer that misses two pongs is dropped.
func NewWebSocketConn(ws *websocket.Conn, binary bool, pingInterval time.Duration) *WebSocketConn {
	c := &WebSocketConn{
		ws:          ws,
		messageType: websocket.TextMessage,
		done:        make(chan struct{}),
	}
	if binary {
		c.messageType = websocket.BinaryMessage
	}
	ws.SetReadLimit(MaxMessageSize)
	if pingInterval > 0 {
		c.keepalive(pingInterval)
	}
	return c
}

func (c *WebSocketConn) keepalive(interval time.Duration) {
	_ = c.ws.SetReadDeadline(time.Now().Add(2 * interval))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(2 * interval))
	})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.writeMu.Lock()
				err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(interval))
				c.writeMu.Unlock()
				if err != nil {
					return
				}
			case <-c.done:
				return
			}
		}
	}()
}

// ReadMessage blocks until a data message arrives. Cancellation is handled
// by closing the connection.
func (c *WebSocketConn) ReadMessage(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		select {
		case <-c.done:
			return nil, ErrConnClosed
		default:
		}
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return nil, ErrConnClosed
		}
		return nil, err
	}
	return data, nil
}

// WriteMessage sends one message, honoring the ctx deadline.
func (c *WebSocketConn) WriteMessage(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteMessage(c.messageType, data)
}

// Close sends a close frame and closes the underlying connection.
func (c *WebSocketConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}
