//go:build js && wasm

package jsplatform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"syscall/js"

	"github.com/GriffinCanCode/webinterop/internal/bridge"
)

// WebSocketConn is a bridge.Conn over the browser WebSocket API.
type WebSocketConn struct {
	ws     js.Value
	binary bool

	messages chan []byte
	done     chan struct{}
	once     sync.Once
	funcs    []js.Func
}

// Dial opens a WebSocket to url and waits until it is open. Binary codecs
// send binary messages.
func Dial(ctx context.Context, url string, binary bool) (*WebSocketConn, error) {
	ws := js.Global().Get("WebSocket").New(url)
	ws.Set("binaryType", "arraybuffer")

	c := &WebSocketConn{
		ws:       ws,
		binary:   binary,
		messages: make(chan []byte, 64),
		done:     make(chan struct{}),
	}
	opened := make(chan struct{})
	var openOnce sync.Once

	c.on("open", func(js.Value) { openOnce.Do(func() { close(opened) }) })
	c.on("message", func(ev js.Value) {
		data := ev.Get("data")
		var msg []byte
		if data.Type() == js.TypeString {
			msg = []byte(data.String())
		} else {
			arr := js.Global().Get("Uint8Array").New(data)
			msg = make([]byte, arr.Length())
			js.CopyBytesToGo(msg, arr)
		}
		select {
		case c.messages <- msg:
		case <-c.done:
		}
	})
	c.on("close", func(js.Value) { c.shutdown() })
	c.on("error", func(js.Value) { c.shutdown() })

	select {
	case <-opened:
		return c, nil
	case <-c.done:
		return nil, fmt.Errorf("websocket %s: %w", url, bridge.ErrConnClosed)
	case <-ctx.Done():
		_ = c.Close()
		return nil, ctx.Err()
	}
}

// on registers a handler. The message handler may block on a full buffer,
// so handlers run on their own goroutine.
func (c *WebSocketConn) on(event string, fn func(js.Value)) {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		ev := js.Undefined()
		if len(args) > 0 {
			ev = args[0]
		}
		go fn(ev)
		return nil
	})
	c.funcs = append(c.funcs, f)
	c.ws.Call("addEventListener", event, f)
}

func (c *WebSocketConn) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-c.messages:
		return msg, nil
	case <-c.done:
		return nil, bridge.ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *WebSocketConn) WriteMessage(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-c.done:
		return bridge.ErrConnClosed
	default:
	}
	if !c.binary {
		c.ws.Call("send", string(data))
		return nil
	}
	arr := js.Global().Get("Uint8Array").New(len(data))
	if js.CopyBytesToJS(arr, data) != len(data) {
		return errors.New("short copy to websocket buffer")
	}
	c.ws.Call("send", arr)
	return nil
}

func (c *WebSocketConn) Close() error {
	c.shutdown()
	return nil
}

func (c *WebSocketConn) shutdown() {
	c.once.Do(func() {
		close(c.done)
		c.ws.Call("close")
		for _, f := range c.funcs {
			f.Release()
		}
	})
}
