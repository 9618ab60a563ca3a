//go:build js && wasm

package jsplatform

import (
	"sync"
	"syscall/js"

	"github.com/GriffinCanCode/webinterop/internal/browser"
)

type resizeObservers struct {
	ctor js.Value
}

func (r resizeObservers) NewResizeObserver(callback func([]browser.ResizeEntry)) browser.ResizeObserver {
	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		entries := toEntries(args[0])
		go callback(entries)
		return nil
	})
	return &resizeObserver{v: r.ctor.New(fn), fn: fn}
}

type resizeObserver struct {
	v    js.Value
	fn   js.Func
	once sync.Once
}

func (o *resizeObserver) Observe(e browser.Element) {
	if v, ok := value(e); ok {
		o.v.Call("observe", v)
	}
}

func (o *resizeObserver) Unobserve(e browser.Element) {
	if v, ok := value(e); ok {
		o.v.Call("unobserve", v)
	}
}

func (o *resizeObserver) Disconnect() {
	o.v.Call("disconnect")
	o.once.Do(o.fn.Release)
}

func toEntries(list js.Value) []browser.ResizeEntry {
	n := list.Length()
	entries := make([]browser.ResizeEntry, 0, n)
	for i := 0; i < n; i++ {
		v := list.Index(i)
		target := v.Get("target")
		rect := v.Get("contentRect")
		entries = append(entries, browser.ResizeEntry{
			Target:         element{v: target, id: target.Get("id").String()},
			ContentBoxSize: boxSizes(v.Get("contentBoxSize")),
			ContentRect: browser.Rect{
				X:      rect.Get("x").Float(),
				Y:      rect.Get("y").Float(),
				Width:  rect.Get("width").Float(),
				Height: rect.Get("height").Float(),
			},
		})
	}
	return entries
}

// boxSizes reads contentBoxSize, which older browsers report as a single
// object instead of an array.
func boxSizes(v js.Value) []browser.BoxSize {
	if !truthy(v) {
		return nil
	}
	if v.Get("length").IsUndefined() {
		return []browser.BoxSize{boxSize(v)}
	}
	sizes := make([]browser.BoxSize, v.Length())
	for i := range sizes {
		sizes[i] = boxSize(v.Index(i))
	}
	return sizes
}

func boxSize(v js.Value) browser.BoxSize {
	return browser.BoxSize{
		InlineSize: v.Get("inlineSize").Float(),
		BlockSize:  v.Get("blockSize").Float(),
	}
}
