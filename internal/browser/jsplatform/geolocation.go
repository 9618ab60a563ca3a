//go:build js && wasm

package jsplatform

import (
	"context"
	"sync"
	"syscall/js"

	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

type jsGeolocation struct {
	v js.Value

	mu      sync.Mutex
	watches map[int64][]js.Func
}

func newGeolocation(v js.Value) *jsGeolocation {
	return &jsGeolocation{v: v, watches: make(map[int64][]js.Func)}
}

func (g *jsGeolocation) GetCurrentPosition(ctx context.Context, opts *geolocation.PositionOptions) (geolocation.Position, error) {
	type outcome struct {
		pos geolocation.Position
		err *geolocation.PositionError
	}
	done := make(chan outcome, 1)

	success := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- outcome{pos: toPosition(args[0])}
		return nil
	})
	failure := js.FuncOf(func(_ js.Value, args []js.Value) any {
		done <- outcome{err: toPositionError(args[0])}
		return nil
	})
	defer success.Release()
	defer failure.Release()

	g.v.Call("getCurrentPosition", success, failure, toOptions(opts))

	select {
	case o := <-done:
		if o.err != nil {
			return geolocation.Position{}, o.err
		}
		return o.pos, nil
	case <-ctx.Done():
		return geolocation.Position{}, ctx.Err()
	}
}

func (g *jsGeolocation) WatchPosition(success func(geolocation.Position), failure func(*geolocation.PositionError), opts *geolocation.PositionOptions) int64 {
	onSuccess := js.FuncOf(func(_ js.Value, args []js.Value) any {
		pos := toPosition(args[0])
		go success(pos)
		return nil
	})
	onFailure := js.FuncOf(func(_ js.Value, args []js.Value) any {
		err := toPositionError(args[0])
		go failure(err)
		return nil
	})

	id := int64(g.v.Call("watchPosition", onSuccess, onFailure, toOptions(opts)).Int())

	g.mu.Lock()
	g.watches[id] = []js.Func{onSuccess, onFailure}
	g.mu.Unlock()
	return id
}

func (g *jsGeolocation) ClearWatch(id int64) {
	g.v.Call("clearWatch", id)

	g.mu.Lock()
	funcs := g.watches[id]
	delete(g.watches, id)
	g.mu.Unlock()
	for _, f := range funcs {
		f.Release()
	}
}

// toOptions builds a PositionOptions object holding only the set fields.
func toOptions(opts *geolocation.PositionOptions) any {
	if opts == nil {
		return js.Undefined()
	}
	o := js.Global().Get("Object").New()
	if opts.EnableHighAccuracy != nil {
		o.Set("enableHighAccuracy", *opts.EnableHighAccuracy)
	}
	if opts.Timeout != nil {
		o.Set("timeout", opts.Timeout.Milliseconds())
	}
	if opts.MaximumAge != nil {
		o.Set("maximumAge", opts.MaximumAge.Milliseconds())
	}
	return o
}

func toPosition(v js.Value) geolocation.Position {
	c := v.Get("coords")
	return geolocation.Position{
		Coords: geolocation.Coordinates{
			Latitude:         c.Get("latitude").Float(),
			Longitude:        c.Get("longitude").Float(),
			Accuracy:         c.Get("accuracy").Float(),
			Altitude:         optionalFloat(c.Get("altitude")),
			AltitudeAccuracy: optionalFloat(c.Get("altitudeAccuracy")),
			Heading:          optionalFloat(c.Get("heading")),
			Speed:            optionalFloat(c.Get("speed")),
		},
		Timestamp: int64(v.Get("timestamp").Float()),
	}
}

func toPositionError(v js.Value) *geolocation.PositionError {
	return &geolocation.PositionError{
		Code:    geolocation.ErrorCode(v.Get("code").Int()),
		Message: v.Get("message").String(),
	}
}
