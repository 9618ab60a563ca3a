package interop

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Lazy is a value initialized once on first use. Concurrent callers that
// arrive while the load is in flight wait for the same load. A successful
// value is kept for the lifetime of the Lazy; a failed load is not, so the
// next caller tries again.
type Lazy[T any] struct {
	load    func(ctx context.Context) (T, error)
	group   singleflight.Group
	started atomic.Bool

	mu      sync.Mutex
	value   T
	done    bool
	pending chan struct{}
}

// NewLazy returns a Lazy that calls load on first use.
func NewLazy[T any](load func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{load: load}
}

// Get returns the value, loading it if needed. The load runs detached from
// the cancellation of the caller that triggered it; ctx only bounds how long
// this caller waits.
func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if v, ok := l.Peek(); ok {
		return v, nil
	}

	l.started.Store(true)
	ch := l.group.DoChan("load", func() (any, error) {
		if v, ok := l.Peek(); ok {
			return v, nil
		}
		pending := make(chan struct{})
		l.mu.Lock()
		l.pending = pending
		l.mu.Unlock()
		defer func() {
			l.mu.Lock()
			l.pending = nil
			l.mu.Unlock()
			close(pending)
		}()

		v, err := l.load(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.value, l.done = v, true
		l.mu.Unlock()
		return v, nil
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Peek returns the value if it has been loaded.
func (l *Lazy[T]) Peek() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.done
}

// Loaded returns the value if it has been loaded, waiting for a load that
// is already in flight. It never starts a load.
func (l *Lazy[T]) Loaded(ctx context.Context) (T, bool) {
	l.mu.Lock()
	pending := l.pending
	l.mu.Unlock()
	if pending != nil {
		select {
		case <-pending:
		case <-ctx.Done():
		}
	}
	return l.Peek()
}

// Started reports whether a load was ever triggered.
func (l *Lazy[T]) Started() bool {
	return l.started.Load()
}
