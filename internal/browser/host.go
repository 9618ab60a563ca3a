package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/bridge"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
	"github.com/GriffinCanCode/webinterop/internal/modules/jslogger"
	"github.com/GriffinCanCode/webinterop/internal/modules/observer"
	"github.com/GriffinCanCode/webinterop/internal/shared/id"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// DefaultCallbackTimeout bounds one notification sent to the host.
const DefaultCallbackTimeout = 10 * time.Second

// Module is a browser module the host can import and invoke.
type Module interface {
	Namespace() interop.Namespace
	// Invoke runs method (lowerCamel, without the namespace).
	Invoke(ctx context.Context, method string, args interop.Args) (any, error)
}

// Options configures a Host.
type Options struct {
	Logger          *zap.Logger
	CallbackTimeout time.Duration
	// ContextID overrides the generated browser context id.
	ContextID string
}

// Host serves one connection to a host Session.
type Host struct {
	platform        Platform
	logger          *zap.Logger
	codec           wire.Codec
	peer            *bridge.Peer
	contextID       string
	callbackTimeout time.Duration

	modules map[string]Module

	mu      sync.RWMutex
	handles map[string]Module
	runCtx  context.Context
}

// NewHost creates a host over conn that serves the geolocation, observer
// and logger modules against platform.
func NewHost(conn bridge.Conn, codec wire.Codec, platform Platform, opts Options) *Host {
	h := &Host{
		platform:        platform,
		logger:          logging.OrNop(opts.Logger),
		codec:           codec,
		contextID:       opts.ContextID,
		callbackTimeout: opts.CallbackTimeout,
		handles:         make(map[string]Module),
		runCtx:          context.Background(),
	}
	if h.contextID == "" {
		h.contextID = uuid.NewString()
	}
	if h.callbackTimeout <= 0 {
		h.callbackTimeout = DefaultCallbackTimeout
	}
	h.logger = h.logger.With(zap.String("browser_context", h.contextID))

	h.modules = map[string]Module{
		geolocation.ModulePath: newGeolocationModule(h, platform),
		observer.ModulePath:    newObserverModule(h, platform),
		jslogger.ModulePath:    newJsLoggerModule(platform),
	}
	h.peer = bridge.NewPeer(conn, codec, h.handle, bridge.WithLogger(h.logger))
	return h
}

// ContextID returns the id announced in the hello frame.
func (h *Host) ContextID() string { return h.contextID }

// Run announces the browser context and serves frames until the connection
// closes or ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	h.mu.Lock()
	h.runCtx = ctx
	h.mu.Unlock()

	args, err := wire.EncodeArgs(h.codec, wire.Hello{
		ContextID: h.contextID,
		UserAgent: h.platform.UserAgent,
		Codec:     h.codec.Name(),
	})
	if err != nil {
		return err
	}
	if err := h.peer.Send(ctx, &wire.Frame{Kind: wire.KindHello, Args: args}); err != nil {
		return fmt.Errorf("failed to send hello: %w", err)
	}
	return h.peer.Run(ctx)
}

// Close closes the connection.
func (h *Host) Close() error {
	return h.peer.Close()
}

// Ref wraps a host object handle received as an argument.
func (h *Host) Ref(handle wire.ObjectHandle) *HostRef {
	return &HostRef{id: handle.ID, host: h}
}

func (h *Host) handle(ctx context.Context, f *wire.Frame) (any, error) {
	switch f.Kind {
	case wire.KindInvoke:
		args := interop.NewArgs(h.codec, f.Args)
		if f.Target == "" {
			if f.Method == interop.ImportIdentifier {
				return h.importModule(args)
			}
			return nil, fmt.Errorf("%w: %s", interop.ErrUnknownIdentifier, f.Method)
		}
		return h.invoke(ctx, f.Target, f.Method, args)

	case wire.KindDispose:
		h.mu.Lock()
		delete(h.handles, f.Target)
		h.mu.Unlock()
		h.logger.Debug("Module handle released", zap.String("handle", f.Target))
		return nil, nil
	}
	return nil, fmt.Errorf("%w: browser does not serve %s frames", interop.ErrUnknownMethod, f.Kind)
}

func (h *Host) importModule(args interop.Args) (any, error) {
	var path string
	if ok, err := args.Decode(0, &path); err != nil || !ok {
		return nil, interop.InvalidArgument("import requires a module path")
	}
	m, ok := h.modules[path]
	if !ok {
		return nil, fmt.Errorf("failed to fetch dynamically imported module: %s", path)
	}

	handle := id.NewModuleID().String()
	h.mu.Lock()
	h.handles[handle] = m
	h.mu.Unlock()

	h.logger.Debug("Module imported", zap.String("path", path), zap.String("handle", handle))
	return wire.ModuleHandle{ID: handle}, nil
}

func (h *Host) invoke(ctx context.Context, handle, identifier string, args interop.Args) (any, error) {
	h.mu.RLock()
	m, ok := h.handles[handle]
	h.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: module handle %s", interop.ErrObjectDisposed, handle)
	}

	ns, method, ok := interop.SplitMethodName(identifier)
	if !ok || ns != m.Namespace() {
		return nil, fmt.Errorf("%w: %s", interop.ErrUnknownIdentifier, identifier)
	}
	return m.Invoke(ctx, method, args)
}

// callbackContext bounds a notification; it ends with the connection.
func (h *Host) callbackContext() (context.Context, context.CancelFunc) {
	h.mu.RLock()
	parent := h.runCtx
	h.mu.RUnlock()
	return context.WithTimeout(parent, h.callbackTimeout)
}

// HostRef is a host object reference held by the browser.
type HostRef struct {
	id   string
	host *Host
}

// ID returns the reference token.
func (r *HostRef) ID() string { return r.id }

// InvokeMethod calls method on the host object and waits for it to finish.
func (r *HostRef) InvokeMethod(ctx context.Context, method string, args ...any) error {
	raw, err := wire.EncodeArgs(r.host.codec, args...)
	if err != nil {
		return err
	}
	_, err = r.host.peer.Request(ctx, &wire.Frame{
		Kind:   wire.KindCallback,
		Target: r.id,
		Method: method,
		Args:   raw,
	})
	return err
}

// notify delivers a notification from a platform callback, logging
// failures instead of returning them.
func (r *HostRef) notify(method string, args ...any) {
	ctx, cancel := r.host.callbackContext()
	defer cancel()
	if err := r.InvokeMethod(ctx, method, args...); err != nil {
		r.host.logger.Debug("Notification failed",
			zap.String("ref", r.id),
			zap.String("method", method),
			zap.Error(err))
	}
}

func decodeArg(args interop.Args, i int, name string, v any) (bool, error) {
	ok, err := args.Decode(i, v)
	if err != nil {
		return false, interop.InvalidArgument("%s: %v", name, err)
	}
	return ok, nil
}
