// Package interoptest provides an in-process interop.Runtime for testing
// host proxies without a browser.
package interoptest

import (
	"context"
	"strings"
	"sync"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// Responder answers one invocation.
type Responder func(call interop.Call) (any, error)

// Runtime records invocations and answers them with registered responders.
// Values cross it through a codec, so results decode exactly as they would
// over a connection.
type Runtime struct {
	codec   wire.Codec
	objects *interop.ObjectRegistry

	mu         sync.Mutex
	calls      []interop.Call
	released   []string
	responders map[string]Responder
	importErr  error
}

// New creates a runtime using the JSON codec.
func New() *Runtime {
	return &Runtime{
		codec:      wire.JSON,
		objects:    interop.NewObjectRegistry(),
		responders: make(map[string]Responder),
	}
}

// Objects returns the object registry.
func (r *Runtime) Objects() *interop.ObjectRegistry { return r.objects }

// Handle registers the responder for identifier.
func (r *Runtime) Handle(identifier string, fn Responder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responders[identifier] = fn
}

// Return makes identifier answer with value.
func (r *Runtime) Return(identifier string, value any) {
	r.Handle(identifier, func(interop.Call) (any, error) { return value, nil })
}

// Fail makes identifier fail with a remote error carrying msg.
func (r *Runtime) Fail(identifier, msg string) {
	r.Handle(identifier, func(interop.Call) (any, error) {
		return nil, &interop.RemoteError{Identifier: identifier, Message: msg}
	})
}

// FailImport makes module imports fail with err; nil restores them.
func (r *Runtime) FailImport(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.importErr = err
}

// Invoke records call and answers it.
func (r *Runtime) Invoke(ctx context.Context, call interop.Call, result any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	r.calls = append(r.calls, call)
	fn := r.responders[call.Identifier]
	importErr := r.importErr
	r.mu.Unlock()

	var value any
	switch {
	case call.Identifier == interop.ImportIdentifier:
		if importErr != nil {
			return importErr
		}
		path, _ := call.Args[0].(string)
		value = wire.ModuleHandle{ID: "mod_" + strings.TrimPrefix(path, interop.ContentPrefix)}
	case fn != nil:
		v, err := fn(call)
		if err != nil {
			return err
		}
		value = v
	}

	if result == nil || value == nil {
		return nil
	}
	if wv, ok := value.(wire.WireValuer); ok {
		value = wv.WireValue()
	}
	data, err := r.codec.Marshal(value)
	if err != nil {
		return err
	}
	return r.codec.Unmarshal(data, result)
}

// Release records a released module handle.
func (r *Runtime) Release(ctx context.Context, handle string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, handle)
	return nil
}

// Callback delivers a browser callback to the object registered under
// token, encoding args as they would travel.
func (r *Runtime) Callback(ctx context.Context, token, method string, args ...any) error {
	raw, err := wire.EncodeArgs(r.codec, args...)
	if err != nil {
		return err
	}
	return r.objects.Dispatch(ctx, token, method, interop.NewArgs(r.codec, raw))
}

// Calls returns every recorded invocation.
func (r *Runtime) Calls() []interop.Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interop.Call(nil), r.calls...)
}

// CallsTo returns the invocations of identifier.
func (r *Runtime) CallsTo(identifier string) []interop.Call {
	var out []interop.Call
	for _, c := range r.Calls() {
		if c.Identifier == identifier {
			out = append(out, c)
		}
	}
	return out
}

// Imports returns how many module imports were requested.
func (r *Runtime) Imports() int {
	return len(r.CallsTo(interop.ImportIdentifier))
}

// Released returns the released module handles.
func (r *Runtime) Released() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.released...)
}

// Encoded returns the JSON form of argument i of call, as it would be sent.
func (r *Runtime) Encoded(call interop.Call, i int) string {
	raw, err := wire.EncodeArgs(wire.JSON, call.Args...)
	if err != nil || i >= len(raw) {
		return ""
	}
	return string(raw[i])
}

// ObjectToken returns the object reference token passed as argument i.
func ObjectToken(call interop.Call, i int) string {
	if i >= len(call.Args) {
		return ""
	}
	if ref, ok := call.Args[i].(*interop.ObjectRef); ok {
		return ref.ID()
	}
	return ""
}
