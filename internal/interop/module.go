package interop

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// ImportIdentifier is the global function that loads a browser module.
const ImportIdentifier = "import"

// ContentPrefix is where browser module scripts are published.
const ContentPrefix = "./_content/webinterop/"

// Module is a browser-side module loaded into the connected context.
type Module struct {
	rt     Runtime
	path   string
	handle string
}

// Import loads the module at path and returns its handle.
func Import(ctx context.Context, rt Runtime, path string) (*Module, error) {
	var h wire.ModuleHandle
	if err := rt.Invoke(ctx, Call{Identifier: ImportIdentifier, Args: []any{path}}, &h); err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}
	if h.ID == "" {
		return nil, fmt.Errorf("failed to import %s: no module handle returned", path)
	}
	return &Module{rt: rt, path: path, handle: h.ID}, nil
}

// Path returns the path the module was imported from.
func (m *Module) Path() string { return m.path }

// Handle returns the browser-side handle of the module.
func (m *Module) Handle() string { return m.handle }

// Invoke calls identifier on the module and decodes the result.
func (m *Module) Invoke(ctx context.Context, identifier string, result any, args ...any) error {
	return m.rt.Invoke(ctx, Call{Target: m.handle, Identifier: identifier, Args: args}, result)
}

// InvokeVoid calls identifier on the module and discards the result.
func (m *Module) InvokeVoid(ctx context.Context, identifier string, args ...any) error {
	return m.Invoke(ctx, identifier, nil, args...)
}

// Dispose releases the module handle.
func (m *Module) Dispose(ctx context.Context) error {
	return m.rt.Release(ctx, m.handle)
}

// LazyModule imports a module on first use.
type LazyModule struct {
	*Lazy[*Module]
	path string
}

// NewLazyModule binds a lazily imported module to rt.
func NewLazyModule(rt Runtime, path string) *LazyModule {
	return &LazyModule{
		Lazy: NewLazy(func(ctx context.Context) (*Module, error) {
			return Import(ctx, rt, path)
		}),
		path: path,
	}
}

// Path returns the module path.
func (l *LazyModule) Path() string { return l.path }
