package browser

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// pendingWatch marks a key whose platform watch is being registered.
const pendingWatch int64 = -1

type geolocationModule struct {
	host *Host
	api  Geolocation
	log  *moduleLogger

	mu      sync.Mutex
	watches map[string]int64
}

func newGeolocationModule(h *Host, p Platform) *geolocationModule {
	return &geolocationModule{
		host:    h,
		api:     p.Geolocation,
		log:     newModuleLogger(p.Console),
		watches: make(map[string]int64),
	}
}

func (g *geolocationModule) Namespace() interop.Namespace { return interop.NamespaceGeolocation }

func (g *geolocationModule) Invoke(ctx context.Context, method string, args interop.Args) (any, error) {
	switch method {
	case "setLogLevel":
		var level int
		if _, err := decodeArg(args, 0, "level", &level); err != nil {
			return nil, err
		}
		g.log.setLevel(interop.LogLevel(level))
		return nil, nil

	case "getLocation":
		var opts *geolocation.WireOptions
		if _, err := decodeArg(args, 0, "options", &opts); err != nil {
			return nil, err
		}
		return g.getLocation(ctx, opts.Options()), nil

	case "watchPosition":
		var ref wire.ObjectHandle
		var key, callback string
		var opts *geolocation.WireOptions
		if _, err := decodeArg(args, 0, "ref", &ref); err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 1, "key", &key); err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 2, "options", &opts); err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 3, "callbackMethod", &callback); err != nil {
			return nil, err
		}
		if callback == "" {
			callback = geolocation.NotifyWatchMethod
		}
		id, ok := g.watchPosition(g.host.Ref(ref), key, opts.Options(), callback)
		if !ok {
			return nil, nil
		}
		return id, nil

	case "clearWatch":
		var key string
		if _, err := decodeArg(args, 0, "key", &key); err != nil {
			return nil, err
		}
		g.clearWatch(key)
		return nil, nil

	case "clearWatches":
		g.clearWatches()
		return nil, nil

	case "isWatched":
		var key string
		if _, err := decodeArg(args, 0, "key", &key); err != nil {
			return nil, err
		}
		return g.isWatched(key), nil
	}
	return nil, fmt.Errorf("%w: %s", interop.ErrUnknownIdentifier, interop.MethodName(g.Namespace(), method))
}

func (g *geolocationModule) getLocation(ctx context.Context, opts *geolocation.PositionOptions) geolocation.Result {
	if g.api == nil {
		res := geolocation.Result{Error: geolocation.Unsupported()}
		g.log.log(interop.LevelError, "getLocation error:", res)
		return res
	}

	pos, err := g.api.GetCurrentPosition(ctx, opts)
	if err != nil {
		res := geolocation.Result{Error: toPositionError(err)}
		g.log.log(interop.LevelError, "getLocation error:", res)
		return res
	}
	return geolocation.Result{Position: &pos}
}

func toPositionError(err error) *geolocation.PositionError {
	var perr *geolocation.PositionError
	if errors.As(err, &perr) {
		return &geolocation.PositionError{Code: perr.Code, Message: perr.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &geolocation.PositionError{Code: geolocation.CodeTimeout, Message: err.Error()}
	}
	return &geolocation.PositionError{Code: geolocation.CodePositionUnavailable, Message: err.Error()}
}

func (g *geolocationModule) watchPosition(ref *HostRef, key string, opts *geolocation.PositionOptions, callback string) (int64, bool) {
	if g.api == nil {
		return 0, false
	}

	g.mu.Lock()
	if _, ok := g.watches[key]; ok {
		g.mu.Unlock()
		return 0, false
	}
	g.watches[key] = pendingWatch
	g.mu.Unlock()

	success := func(pos geolocation.Position) {
		if !g.isWatched(key) {
			return
		}
		ref.notify(callback, geolocation.Event{
			Key:    key,
			Reason: geolocation.ReasonWatchSuccess,
			Result: &geolocation.Result{Position: &pos},
		})
	}
	failure := func(perr *geolocation.PositionError) {
		e := geolocation.Event{
			Key:    key,
			Reason: geolocation.ReasonWatchError,
			Result: &geolocation.Result{Error: perr},
		}
		g.log.log(interop.LevelError, "watchPosition error:", e)
		ref.notify(callback, e)
	}

	id := g.api.WatchPosition(success, failure, opts)

	g.mu.Lock()
	current, ok := g.watches[key]
	if ok && current == pendingWatch {
		g.watches[key] = id
	}
	g.mu.Unlock()

	if !ok || current != pendingWatch {
		// Cleared while registering.
		g.api.ClearWatch(id)
	}
	return id, true
}

func (g *geolocationModule) clearWatch(key string) {
	if g.api == nil {
		return
	}

	g.mu.Lock()
	id, ok := g.watches[key]
	delete(g.watches, key)
	g.mu.Unlock()

	if !ok {
		g.log.log(interop.LevelDebug, fmt.Sprintf("clearWatch. key was not found: %s ", key))
		return
	}
	if id != pendingWatch {
		g.api.ClearWatch(id)
	}
}

func (g *geolocationModule) clearWatches() {
	g.mu.Lock()
	keys := make([]string, 0, len(g.watches))
	for k := range g.watches {
		keys = append(keys, k)
	}
	g.mu.Unlock()
	slices.Sort(keys)

	g.log.log(interop.LevelDebug, "Clearing watches:", keys)
	for _, k := range keys {
		g.clearWatch(k)
	}
}

func (g *geolocationModule) isWatched(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.watches[key]
	return ok
}
