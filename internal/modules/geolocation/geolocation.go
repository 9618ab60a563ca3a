package geolocation

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/interop"
)

const (
	// ModulePath is where the browser geolocation module is published.
	ModulePath = interop.ContentPrefix + "geolocation.js"
	// NotifyWatchMethod is the callback the browser invokes for watch events.
	NotifyWatchMethod = "NotifyGeolocationWatch"
)

func method(name string) string {
	return interop.MethodName(interop.NamespaceGeolocation, name)
}

// Interop is the host proxy for the browser Geolocation API. It is safe for
// concurrent use.
type Interop struct {
	module *interop.LazyModule
	ref    *interop.ObjectRef
	logger *zap.Logger

	mu         sync.RWMutex
	onWatch    []func(Event)
	onWatchCtx func(ctx context.Context, e Event) error
	disposed   bool
}

// New creates a proxy bound to rt. The browser module is imported on first
// use.
func New(rt interop.Runtime, logger *zap.Logger) *Interop {
	g := &Interop{
		module: interop.NewLazyModule(rt, ModulePath),
		logger: logging.OrNop(logger).With(zap.String("module", "geolocation")),
	}
	g.ref = interop.NewObjectRef(rt, "geolocation").Handle(NotifyWatchMethod, g.notifyWatch)
	return g
}

// OnWatch subscribes fn to watch events.
func (g *Interop) OnWatch(fn func(Event)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onWatch = append(g.onWatch, fn)
}

// OnWatchContext sets the asynchronous watch handler. It runs before the
// handlers registered with OnWatch; if it fails they are skipped and the
// error is reported back to the browser.
func (g *Interop) OnWatchContext(fn func(ctx context.Context, e Event) error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onWatchCtx = fn
}

// SetLogLevel sets the minimum level of the browser module's own logging.
func (g *Interop) SetLogLevel(ctx context.Context, level interop.LogLevel) error {
	m, err := g.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("SetLogLevel"), int(level))
}

// GetLocation fetches the current position once. Browser-side failures are
// reported in the Result, not as an error.
func (g *Interop) GetLocation(ctx context.Context, opts *PositionOptions) (Result, error) {
	var res Result
	m, err := g.load(ctx)
	if err != nil {
		return res, err
	}
	if err := m.Invoke(ctx, method("GetLocation"), &res, opts); err != nil {
		return res, err
	}
	return res, nil
}

// WatchPosition starts watching the position under key. If key is already
// watched nothing is registered and ok is false.
func (g *Interop) WatchPosition(ctx context.Context, key string, opts *PositionOptions) (id WatchID, ok bool, err error) {
	if err := interop.RequireNotBlank("key", key); err != nil {
		return 0, false, err
	}
	m, err := g.load(ctx)
	if err != nil {
		return 0, false, err
	}

	var watchID *WatchID
	if err := m.Invoke(ctx, method("WatchPosition"), &watchID, g.ref, key, opts); err != nil {
		return 0, false, err
	}
	if watchID == nil {
		g.logger.Debug("Watch not registered", zap.String("key", key))
		return 0, false, nil
	}
	return *watchID, true, nil
}

// ClearWatch stops the watch registered under key. Unknown keys are ignored.
func (g *Interop) ClearWatch(ctx context.Context, key string) error {
	m, err := g.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("ClearWatch"), key)
}

// ClearWatches stops every watch.
func (g *Interop) ClearWatches(ctx context.Context) error {
	m, err := g.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("ClearWatches"))
}

// IsWatched reports whether key has an active watch.
func (g *Interop) IsWatched(ctx context.Context, key string) (bool, error) {
	m, err := g.load(ctx)
	if err != nil {
		return false, err
	}
	var watched bool
	if err := m.Invoke(ctx, method("IsWatched"), &watched, key); err != nil {
		return false, err
	}
	return watched, nil
}

// Dispose clears the watches and releases the browser module if it was
// ever loaded, then releases the callback reference. Failures along the
// way are logged and skipped. Calling Dispose again does nothing.
func (g *Interop) Dispose(ctx context.Context) error {
	g.mu.Lock()
	if g.disposed {
		g.mu.Unlock()
		return nil
	}
	g.disposed = true
	g.mu.Unlock()

	if m, ok := g.module.Loaded(ctx); ok {
		if err := m.InvokeVoid(ctx, method("ClearWatches")); err != nil {
			g.logger.Debug("Failed to clear watches on dispose", zap.Error(err))
		}
		if err := m.Dispose(ctx); err != nil {
			g.logger.Debug("Failed to dispose module", zap.Error(err))
		}
	}

	g.ref.Dispose()
	return nil
}

func (g *Interop) load(ctx context.Context) (*interop.Module, error) {
	g.mu.RLock()
	disposed := g.disposed
	g.mu.RUnlock()
	if disposed {
		return nil, interop.ErrDisposed
	}
	return g.module.Get(ctx)
}

func (g *Interop) notifyWatch(ctx context.Context, args interop.Args) error {
	var e Event
	if _, err := args.Decode(0, &e); err != nil {
		return fmt.Errorf("failed to decode watch event: %w", err)
	}

	g.mu.RLock()
	async := g.onWatchCtx
	handlers := append([]func(Event){}, g.onWatch...)
	g.mu.RUnlock()

	if async != nil {
		if err := async(ctx, e); err != nil {
			return err
		}
	}
	for _, fn := range handlers {
		fn(e)
	}
	return nil
}
