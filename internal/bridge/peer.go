package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// HandlerFunc serves a frame received from the other side. For request
// frames the returned value (or error) is sent back in a result frame.
type HandlerFunc func(ctx context.Context, f *wire.Frame) (any, error)

// PeerOption configures a Peer.
type PeerOption func(*Peer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) PeerOption {
	return func(p *Peer) { p.logger = logging.OrNop(l) }
}

// WithFrameObserver is told about every frame sent ("out") or received
// ("in").
func WithFrameObserver(fn func(direction string, kind wire.Kind)) PeerOption {
	return func(p *Peer) { p.observe = fn }
}

// WithOrderedDispatch serves incoming requests one at a time in arrival
// order instead of concurrently.
func WithOrderedDispatch() PeerOption {
	return func(p *Peer) { p.ordered = true }
}

// Peer correlates requests and results over a Conn and serves the requests
// the other side sends.
type Peer struct {
	conn    Conn
	codec   wire.Codec
	handler HandlerFunc
	logger  *zap.Logger
	observe func(direction string, kind wire.Kind)
	ordered bool

	nextID  atomic.Uint64
	mu      sync.Mutex
	pending map[uint64]chan *wire.Frame
	closed  bool
	done    chan struct{}

	queue *frameQueue
}

// NewPeer creates a peer; call Run to start reading.
func NewPeer(conn Conn, codec wire.Codec, handler HandlerFunc, opts ...PeerOption) *Peer {
	p := &Peer{
		conn:    conn,
		codec:   codec,
		handler: handler,
		logger:  zap.NewNop(),
		observe: func(string, wire.Kind) {},
		pending: make(map[uint64]chan *wire.Frame),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Codec returns the codec frames are encoded with.
func (p *Peer) Codec() wire.Codec { return p.codec }

// Done is closed once the peer stopped.
func (p *Peer) Done() <-chan struct{} { return p.done }

// Run reads frames until the connection closes or ctx is cancelled. Pending
// requests then fail with interop.ErrNotConnected.
func (p *Peer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer p.shutdown()

	go func() {
		<-ctx.Done()
		_ = p.conn.Close()
	}()

	if p.ordered {
		p.queue = newFrameQueue()
		go p.drain(ctx)
		defer p.queue.close()
	}

	for {
		data, err := p.conn.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, ErrConnClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read failed: %w", err)
		}

		frame, err := wire.DecodeFrame(p.codec, data)
		if err != nil {
			p.logger.Warn("Dropping malformed frame", zap.Error(err))
			continue
		}
		p.observe("in", frame.Kind)

		switch {
		case frame.Kind == wire.KindResult:
			p.resolve(frame)
		case frame.Kind == wire.KindHello:
			p.serve(ctx, frame)
		case p.ordered:
			p.queue.push(frame)
		default:
			go p.serve(ctx, frame)
		}
	}
}

// Request sends f, assigning it an ID, and waits for the matching result.
func (p *Peer) Request(ctx context.Context, f *wire.Frame) (*wire.Frame, error) {
	f.ID = p.nextID.Add(1)
	ch := make(chan *wire.Frame, 1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, interop.ErrNotConnected
	}
	p.pending[f.ID] = ch
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		delete(p.pending, f.ID)
		p.mu.Unlock()
	}()

	if err := p.Send(ctx, f); err != nil {
		return nil, err
	}

	select {
	case res, ok := <-ch:
		if !ok {
			return nil, interop.ErrNotConnected
		}
		if res.Error != "" {
			identifier := f.Method
			if identifier == "" {
				identifier = string(f.Kind)
			}
			return res, &interop.RemoteError{Identifier: identifier, Message: res.Error}
		}
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Send writes a frame without waiting for a reply.
func (p *Peer) Send(ctx context.Context, f *wire.Frame) error {
	data, err := wire.EncodeFrame(p.codec, f)
	if err != nil {
		return err
	}
	if err := p.conn.WriteMessage(ctx, data); err != nil {
		if errors.Is(err, ErrConnClosed) {
			return interop.ErrNotConnected
		}
		return fmt.Errorf("write failed: %w", err)
	}
	p.observe("out", f.Kind)
	return nil
}

// Close closes the connection; Run returns shortly after.
func (p *Peer) Close() error {
	return p.conn.Close()
}

func (p *Peer) resolve(f *wire.Frame) {
	p.mu.Lock()
	ch, ok := p.pending[f.ID]
	p.mu.Unlock()
	if !ok {
		p.logger.Debug("Result for unknown request", zap.Uint64("id", f.ID))
		return
	}
	select {
	case ch <- f:
	default:
	}
}

func (p *Peer) serve(ctx context.Context, f *wire.Frame) {
	res, err := p.handler(ctx, f)
	if !f.IsRequest() {
		if err != nil {
			p.logger.Warn("Frame handler failed", zap.String("kind", string(f.Kind)), zap.Error(err))
		}
		return
	}

	reply := &wire.Frame{Kind: wire.KindResult, ID: f.ID}
	if err != nil {
		reply.Error = err.Error()
	} else if res != nil {
		raw, encErr := p.encodeResult(res)
		if encErr != nil {
			reply.Error = encErr.Error()
		} else {
			reply.Result = raw
		}
	}

	if err := p.Send(ctx, reply); err != nil {
		p.logger.Debug("Failed to send result", zap.Uint64("id", f.ID), zap.Error(err))
	}
}

func (p *Peer) encodeResult(res any) (wire.Raw, error) {
	if raw, ok := res.(wire.Raw); ok {
		return raw, nil
	}
	if wv, ok := res.(wire.WireValuer); ok {
		res = wv.WireValue()
	}
	data, err := p.codec.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return data, nil
}

func (p *Peer) drain(ctx context.Context) {
	for {
		f, ok := p.queue.pop()
		if !ok {
			return
		}
		p.serve(ctx, f)
	}
}

func (p *Peer) shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	for id, ch := range p.pending {
		close(ch)
		delete(p.pending, id)
	}
	close(p.done)
}

// frameQueue is an unbounded FIFO; the read loop never blocks on a slow
// handler, which may itself be waiting for a result the loop has to read.
type frameQueue struct {
	mu     sync.Mutex
	items  []*wire.Frame
	signal chan struct{}
	closed bool
}

func newFrameQueue() *frameQueue {
	return &frameQueue{signal: make(chan struct{}, 1)}
}

func (q *frameQueue) push(f *wire.Frame) {
	q.mu.Lock()
	q.items = append(q.items, f)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *frameQueue) pop() (*wire.Frame, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			f := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return f, true
		}
		if q.closed {
			q.mu.Unlock()
			return nil, false
		}
		q.mu.Unlock()
		<-q.signal
	}
}

func (q *frameQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}
