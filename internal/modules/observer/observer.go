// Package observer watches browser elements for size changes.
//
// Elements are referenced by their DOM id. Size changes arrive through the
// NotifyObserveResized callback and are fanned out to the handlers
// registered with OnResized and OnResizedContext.
package observer

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/interop"
)

const (
	// ModulePath is where the browser observer module is published.
	ModulePath = interop.ContentPrefix + "observer.js"
	// NotifyResizedMethod is the callback the browser invokes for size
	// changes.
	NotifyResizedMethod = "NotifyObserveResized"
)

// ResizeEvent reports the new content-box size of an element.
type ResizeEvent struct {
	ID     string  `json:"id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func method(name string) string {
	return interop.MethodName(interop.NamespaceObserver, name)
}

// Interop is the host proxy for the browser ResizeObserver.
type Interop struct {
	module *interop.LazyModule
	ref    *interop.ObjectRef
	logger *zap.Logger

	mu           sync.RWMutex
	onResized    []func(ResizeEvent)
	onResizedCtx func(ctx context.Context, e ResizeEvent) error
	disposed     bool
}

// New creates a proxy bound to rt.
func New(rt interop.Runtime, logger *zap.Logger) *Interop {
	o := &Interop{
		module: interop.NewLazyModule(rt, ModulePath),
		logger: logging.OrNop(logger).With(zap.String("module", "observer")),
	}
	o.ref = interop.NewObjectRef(rt, "observer").Handle(NotifyResizedMethod, o.notifyResized)
	return o
}

// OnResized subscribes fn to size changes.
func (o *Interop) OnResized(fn func(ResizeEvent)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onResized = append(o.onResized, fn)
}

// OnResizedContext sets the asynchronous handler, run before the OnResized
// handlers.
func (o *Interop) OnResizedContext(fn func(ctx context.Context, e ResizeEvent) error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onResizedCtx = fn
}

// SetLogLevel sets the minimum level of the browser module's own logging.
func (o *Interop) SetLogLevel(ctx context.Context, level interop.LogLevel) error {
	m, err := o.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("SetLogLevel"), int(level))
}

// AddResizer observes a single element.
func (o *Interop) AddResizer(ctx context.Context, id string) error {
	return o.AddResizers(ctx, []string{id})
}

// AddResizers observes the elements with the given ids. Ids with no
// matching element are skipped by the browser with a warning.
func (o *Interop) AddResizers(ctx context.Context, ids []string) error {
	m, err := o.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("AddResizers"), o.ref, ids)
}

// RemoveResizer stops observing a single element.
func (o *Interop) RemoveResizer(ctx context.Context, id string) error {
	return o.RemoveResizers(ctx, []string{id})
}

// RemoveResizers stops observing the given elements. ids is not modified.
func (o *Interop) RemoveResizers(ctx context.Context, ids []string) error {
	m, err := o.load(ctx)
	if err != nil {
		return err
	}
	snapshot := append([]string(nil), ids...)
	return m.InvokeVoid(ctx, method("RemoveResizers"), snapshot)
}

// DisconnectResizers stops observing every element.
func (o *Interop) DisconnectResizers(ctx context.Context) error {
	m, err := o.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("DisconnectResizers"))
}

// Dispose disconnects the observer and releases the browser module if it
// was ever loaded, then releases the callback reference. It never fails and
// is safe to call more than once.
func (o *Interop) Dispose(ctx context.Context) error {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return nil
	}
	o.disposed = true
	o.mu.Unlock()

	if m, ok := o.module.Loaded(ctx); ok {
		if err := m.InvokeVoid(ctx, method("DisconnectResizers")); err != nil {
			o.logger.Debug("Failed to disconnect on dispose", zap.Error(err))
		}
		if err := m.Dispose(ctx); err != nil {
			o.logger.Debug("Failed to dispose module", zap.Error(err))
		}
	}

	o.ref.Dispose()
	return nil
}

func (o *Interop) load(ctx context.Context) (*interop.Module, error) {
	o.mu.RLock()
	disposed := o.disposed
	o.mu.RUnlock()
	if disposed {
		return nil, interop.ErrDisposed
	}
	return o.module.Get(ctx)
}

func (o *Interop) notifyResized(ctx context.Context, args interop.Args) error {
	var e ResizeEvent
	if _, err := args.Decode(0, &e); err != nil {
		return fmt.Errorf("failed to decode resize event: %w", err)
	}

	o.mu.RLock()
	async := o.onResizedCtx
	handlers := append([]func(ResizeEvent){}, o.onResized...)
	o.mu.RUnlock()

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
