package bridge

import (
	"context"
	"errors"
	"sync"
)

// ErrConnClosed is returned by a Conn after Close.
var ErrConnClosed = errors.New("connection closed")

// Conn carries whole encoded frames between a host and a browser runtime.
type Conn interface {
	ReadMessage(ctx context.Context) ([]byte, error)
	WriteMessage(ctx context.Context, data []byte) error
	Close() error
}

// Pipe returns two connected in-memory Conns. Closing either end closes
// both, like net.Pipe.
func Pipe() (Conn, Conn) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	state := &pipeState{done: make(chan struct{})}
	return &pipeConn{in: ba, out: ab, state: state}, &pipeConn{in: ab, out: ba, state: state}
}

type pipeState struct {
	once sync.Once
	done chan struct{}
}

type pipeConn struct {
	in    <-chan []byte
	out   chan<- []byte
	state *pipeState
}

func (p *pipeConn) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-p.in:
		return msg, nil
	case <-p.state.done:
		return nil, ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *pipeConn) WriteMessage(ctx context.Context, data []byte) error {
	msg := append([]byte(nil), data...)
	select {
	case <-p.state.done:
		return ErrConnClosed
	default:
	}
	select {
	case p.out <- msg:
		return nil
	case <-p.state.done:
		return ErrConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *pipeConn) Close() error {
	p.state.once.Do(func() { close(p.state.done) })
	return nil
}
