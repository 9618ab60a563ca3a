package interop

import (
	"context"
	"fmt"
	"sync"

	"github.com/GriffinCanCode/webinterop/internal/shared/id"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// Args are the positional arguments of a browser callback.
type Args struct {
	codec wire.Codec
	raw   []wire.Raw
}

// NewArgs wraps encoded callback arguments.
func NewArgs(codec wire.Codec, raw []wire.Raw) Args {
	return Args{codec: codec, raw: raw}
}

// Len returns the number of arguments.
func (a Args) Len() int { return len(a.raw) }

// Decode decodes argument i into v and reports whether it was present.
func (a Args) Decode(i int, v any) (bool, error) {
	return wire.DecodeArg(a.codec, a.raw, i, v)
}

// MethodFunc handles one callback method of an object reference.
type MethodFunc func(ctx context.Context, args Args) error

// ObjectRef is a capability token handed to the browser so it can call
// back into the host. The browser only ever sees the token.
type ObjectRef struct {
	id       string
	name     string
	registry *ObjectRegistry

	mu       sync.RWMutex
	methods  map[string]MethodFunc
	disposed bool
}

// NewObjectRef registers a new object reference with the runtime.
func NewObjectRef(rt Runtime, name string) *ObjectRef {
	return rt.Objects().Create(name)
}

// ID returns the token.
func (o *ObjectRef) ID() string { return o.id }

// Name returns the descriptive name given at creation.
func (o *ObjectRef) Name() string { return o.name }

// Handle registers fn under method and returns o for chaining.
func (o *ObjectRef) Handle(method string, fn MethodFunc) *ObjectRef {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods[method] = fn
	return o
}

// WireValue sends the reference as its token.
func (o *ObjectRef) WireValue() any {
	return wire.ObjectHandle{ID: o.id}
}

// Disposed reports whether the reference was released.
func (o *ObjectRef) Disposed() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.disposed
}

// Dispose releases the token. Later callbacks fail with ErrObjectDisposed.
// Calling Dispose more than once is a no-op.
func (o *ObjectRef) Dispose() {
	o.mu.Lock()
	if o.disposed {
		o.mu.Unlock()
		return
	}
	o.disposed = true
	o.mu.Unlock()
	o.registry.remove(o.id)
}

func (o *ObjectRef) invoke(ctx context.Context, method string, args Args) error {
	o.mu.RLock()
	fn, ok := o.methods[method]
	disposed := o.disposed
	o.mu.RUnlock()

	if disposed {
		return ErrObjectDisposed
	}
	if !ok {
		return fmt.Errorf("%w: %s on %s", ErrUnknownMethod, method, o.name)
	}
	return fn(ctx, args)
}

// ObjectRegistry tracks the live object references of one browser context.
type ObjectRegistry struct {
	mu      sync.RWMutex
	objects map[string]*ObjectRef
}

// NewObjectRegistry creates an empty registry.
func NewObjectRegistry() *ObjectRegistry {
	return &ObjectRegistry{objects: make(map[string]*ObjectRef)}
}

// Create registers a new object reference.
func (r *ObjectRegistry) Create(name string) *ObjectRef {
	o := &ObjectRef{
		id:       id.NewObjectRefID().String(),
		name:     name,
		registry: r,
		methods:  make(map[string]MethodFunc),
	}
	r.mu.Lock()
	r.objects[o.id] = o
	r.mu.Unlock()
	return o
}

// Dispatch routes a callback to the object registered under token.
func (r *ObjectRegistry) Dispatch(ctx context.Context, token, method string, args Args) error {
	r.mu.RLock()
	o, ok := r.objects[token]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrObjectDisposed, token)
	}
	return o.invoke(ctx, method, args)
}

// Len returns the number of live references.
func (r *ObjectRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}

// DisposeAll releases every reference, used when the context goes away.
func (r *ObjectRegistry) DisposeAll() {
	r.mu.RLock()
	refs := make([]*ObjectRef, 0, len(r.objects))
	for _, o := range r.objects {
		refs = append(refs, o)
	}
	r.mu.RUnlock()

	for _, o := range refs {
		o.Dispose()
	}
}

func (r *ObjectRegistry) remove(token string) {
	r.mu.Lock()
	delete(r.objects, token)
	r.mu.Unlock()
}
