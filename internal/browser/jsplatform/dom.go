//go:build js && wasm

package jsplatform

import (
	"syscall/js"

	"github.com/GriffinCanCode/webinterop/internal/browser"
)

type element struct {
	v  js.Value
	id string
}

func (e element) ID() string { return e.id }

type document struct {
	v js.Value
}

func (d document) GetElementByID(id string) (browser.Element, bool) {
	v := d.v.Call("getElementById", id)
	if v.IsNull() || v.IsUndefined() {
		return nil, false
	}
	return element{v: v, id: id}, true
}

// value unwraps an element created by this package.
func value(e browser.Element) (js.Value, bool) {
	el, ok := e.(element)
	return el.v, ok
}
