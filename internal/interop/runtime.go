package interop

import "context"

// Call describes one invocation of a browser-side function.
type Call struct {
	// Target is the module handle the function belongs to. Empty for
	// global functions such as import.
	Target     string
	Identifier string
	Args       []any
}

// Runtime is a connected browser context.
type Runtime interface {
	// Invoke calls a browser function and decodes its return value into
	// result. A nil result discards the value; a null return leaves result
	// untouched.
	Invoke(ctx context.Context, call Call, result any) error

	// Release drops a module handle held by the browser.
	Release(ctx context.Context, handle string) error

	// Objects is the registry browser callbacks are routed through.
	Objects() *ObjectRegistry
}
