//go:build js && wasm

package jsplatform

import (
	"syscall/js"

	"github.com/GriffinCanCode/webinterop/internal/browser"
)

// New returns the platform of the page the module runs in. APIs the
// browser lacks are left nil.
func New() browser.Platform {
	global := js.Global()
	p := browser.Platform{
		Document: document{v: global.Get("document")},
		Console:  console{v: global.Get("console")},
	}

	navigator := global.Get("navigator")
	if truthy(navigator) {
		p.UserAgent = navigator.Get("userAgent").String()
		if geo := navigator.Get("geolocation"); truthy(geo) {
			p.Geolocation = newGeolocation(geo)
		}
	}
	if ctor := global.Get("ResizeObserver"); truthy(ctor) {
		p.ResizeObservers = resizeObservers{ctor: ctor}
	}
	return p
}

func truthy(v js.Value) bool {
	return !v.IsUndefined() && !v.IsNull() && v.Truthy()
}

// optionalFloat returns nil for a null or undefined number.
func optionalFloat(v js.Value) *float64 {
	if v.IsUndefined() || v.IsNull() {
		return nil
	}
	f := v.Float()
	return &f
}
