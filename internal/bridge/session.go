package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/shared/id"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// DefaultCallTimeout bounds an invocation whose context has no deadline.
const DefaultCallTimeout = 30 * time.Second

// SessionOptions configures a Session. Zero values get defaults.
type SessionOptions struct {
	Logger      *zap.Logger
	Metrics     *monitoring.Metrics
	Breaker     *resilience.Breaker
	CallTimeout time.Duration
}

// Session is one connected browser context seen from the host.
type Session struct {
	id          id.SessionID
	peer        *Peer
	objects     *interop.ObjectRegistry
	logger      *zap.Logger
	metrics     *monitoring.Metrics
	breaker     *resilience.Breaker
	callTimeout time.Duration

	mu        sync.RWMutex
	hello     *wire.Hello
	ready     chan struct{}
	readyOnce sync.Once
}

var _ interop.Runtime = (*Session)(nil)

// NewSession wraps conn. Call Run to start serving it.
func NewSession(conn Conn, codec wire.Codec, opts SessionOptions) *Session {
	s := &Session{
		id:          id.NewSessionID(),
		objects:     interop.NewObjectRegistry(),
		metrics:     opts.Metrics,
		breaker:     opts.Breaker,
		callTimeout: opts.CallTimeout,
		ready:       make(chan struct{}),
	}
	s.logger = logging.OrNop(opts.Logger).With(zap.String("session", s.id.String()))
	if s.callTimeout <= 0 {
		s.callTimeout = DefaultCallTimeout
	}
	if s.breaker == nil {
		s.breaker = resilience.New("session:"+s.id.String(), resilience.Settings{
			IsFailure: IsTransportFailure,
		})
	}

	peerOpts := []PeerOption{WithLogger(s.logger), WithOrderedDispatch()}
	if s.metrics != nil {
		peerOpts = append(peerOpts, WithFrameObserver(func(direction string, kind wire.Kind) {
			s.metrics.RecordFrame(direction, string(kind))
		}))
	}
	s.peer = NewPeer(conn, codec, s.handle, peerOpts...)
	return s
}

// IsTransportFailure reports whether err means the browser context did not
// answer. Exceptions raised by browser code do not count.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	var remote *interop.RemoteError
	return !errors.As(err, &remote)
}

// ID returns the session id.
func (s *Session) ID() id.SessionID { return s.id }

// Codec returns the codec frames are encoded with.
func (s *Session) Codec() wire.Codec { return s.peer.Codec() }

// Objects returns the registry browser callbacks are routed through.
func (s *Session) Objects() *interop.ObjectRegistry { return s.objects }

// Done is closed once the connection went away.
func (s *Session) Done() <-chan struct{} { return s.peer.Done() }

// Hello returns the browser context announcement, or nil before it arrived.
func (s *Session) Hello() *wire.Hello {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hello
}

// WaitReady blocks until the browser sent its hello frame.
func (s *Session) WaitReady(ctx context.Context) (*wire.Hello, error) {
	select {
	case <-s.ready:
		return s.Hello(), nil
	case <-s.peer.Done():
		return nil, interop.ErrNotConnected
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run serves the connection until it closes or ctx is cancelled. Object
// references still registered are released afterwards.
func (s *Session) Run(ctx context.Context) error {
	if s.metrics != nil {
		s.metrics.SessionOpened()
		defer s.metrics.SessionClosed()
	}
	s.logger.Info("Session started")

	err := s.peer.Run(ctx)
	s.objects.DisposeAll()

	if err != nil {
		s.logger.Warn("Session ended with error", zap.Error(err))
	} else {
		s.logger.Info("Session ended")
	}
	return err
}

// Close disconnects the browser context.
func (s *Session) Close() error {
	return s.peer.Close()
}

// Invoke calls a browser function and decodes its result.
func (s *Session) Invoke(ctx context.Context, call interop.Call, result any) error {
	ns, method, ok := interop.SplitMethodName(call.Identifier)
	if !ok {
		ns, method = "global", call.Identifier
	}
	timer := monitoring.NewTimer(s.metrics, ns.String(), method)

	args, err := wire.EncodeArgs(s.peer.Codec(), call.Args...)
	if err != nil {
		timer.Stop(monitoring.StatusError)
		return err
	}

	if _, has := ctx.Deadline(); !has {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}

	var res *wire.Frame
	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		var reqErr error
		res, reqErr = s.peer.Request(ctx, &wire.Frame{
			Kind:   wire.KindInvoke,
			Target: call.Target,
			Method: call.Identifier,
			Args:   args,
		})
		return reqErr
	})
	if err != nil {
		timer.Stop(callStatus(err))
		s.logger.Debug("Invocation failed", zap.String("identifier", call.Identifier), zap.Error(err))
		return err
	}

	if result != nil && !res.Result.IsNull() {
		if err := s.peer.Codec().Unmarshal(res.Result, result); err != nil {
			timer.Stop(monitoring.StatusError)
			return fmt.Errorf("failed to decode result of %s: %w", call.Identifier, err)
		}
	}
	timer.Stop(monitoring.StatusOK)
	return nil
}

// Release drops a module handle held by the browser.
func (s *Session) Release(ctx context.Context, handle string) error {
	if _, has := ctx.Deadline(); !has {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	_, err := s.peer.Request(ctx, &wire.Frame{Kind: wire.KindDispose, Target: handle})
	return err
}

func (s *Session) handle(ctx context.Context, f *wire.Frame) (any, error) {
	switch f.Kind {
	case wire.KindHello:
		var hello wire.Hello
		if _, err := wire.DecodeArg(s.peer.Codec(), f.Args, 0, &hello); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.hello = &hello
		s.mu.Unlock()
		s.readyOnce.Do(func() { close(s.ready) })
		s.logger.Info("Browser context connected",
			zap.String("context", hello.ContextID),
			zap.String("user_agent", hello.UserAgent))
		return nil, nil

	case wire.KindCallback:
		err := s.objects.Dispatch(ctx, f.Target, f.Method, interop.NewArgs(s.peer.Codec(), f.Args))
		status := monitoring.StatusOK
		if err != nil {
			status = monitoring.StatusError
			s.logger.Debug("Callback failed",
				zap.String("target", f.Target),
				zap.String("method", f.Method),
				zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.RecordCallback(f.Method, status)
		}
		return nil, err
	}
	return nil, fmt.Errorf("%w: host does not serve %s frames", interop.ErrUnknownMethod, f.Kind)
}

func callStatus(err error) string {
	var remote *interop.RemoteError
	switch {
	case errors.As(err, &remote):
		return monitoring.StatusRemote
	case errors.Is(err, context.DeadlineExceeded):
		return monitoring.StatusTimeout
	default:
		return monitoring.StatusError
	}
}
