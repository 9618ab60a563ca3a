package headless

import (
	"context"
	"sync"
	"time"

	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

type watcher struct {
	success func(geolocation.Position)
	failure func(*geolocation.PositionError)
	opts    *geolocation.PositionOptions
}

// Geolocation is a scriptable navigator.geolocation.
type Geolocation struct {
	now func() time.Time

	mu       sync.Mutex
	current  *geolocation.Position
	err      *geolocation.PositionError
	watchers map[int64]watcher
	nextID   int64
	requests []*geolocation.PositionOptions
}

// NewGeolocation creates a device with no known position.
func NewGeolocation(now func() time.Time) *Geolocation {
	if now == nil {
		now = time.Now
	}
	return &Geolocation{now: now, watchers: make(map[int64]watcher)}
}

// GetCurrentPosition returns the last set position, or the failure set by
// Fail.
func (g *Geolocation) GetCurrentPosition(ctx context.Context, opts *geolocation.PositionOptions) (geolocation.Position, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, opts)

	if err := ctx.Err(); err != nil {
		return geolocation.Position{}, err
	}
	if g.err != nil {
		return geolocation.Position{}, g.err
	}
	if g.current == nil {
		return geolocation.Position{}, &geolocation.PositionError{
			Code:    geolocation.CodePositionUnavailable,
			Message: "Position unavailable.",
		}
	}
	return *g.current, nil
}

// WatchPosition registers callbacks for later SetPosition and Fail calls.
func (g *Geolocation) WatchPosition(success func(geolocation.Position), failure func(*geolocation.PositionError), opts *geolocation.PositionOptions) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextID++
	g.watchers[g.nextID] = watcher{success: success, failure: failure, opts: opts}
	g.requests = append(g.requests, opts)
	return g.nextID
}

// ClearWatch drops a watch; unknown ids are ignored.
func (g *Geolocation) ClearWatch(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.watchers, id)
}

// SetPosition moves the device and notifies every watch.
func (g *Geolocation) SetPosition(lat, lon, accuracy float64) {
	g.SetCoordinates(geolocation.Coordinates{Latitude: lat, Longitude: lon, Accuracy: accuracy})
}

// SetCoordinates is SetPosition with the optional readings.
func (g *Geolocation) SetCoordinates(coords geolocation.Coordinates) {
	pos := geolocation.Position{Coords: coords, Timestamp: g.now().UnixMilli()}

	g.mu.Lock()
	g.current, g.err = &pos, nil
	targets := g.snapshot()
	g.mu.Unlock()

	for _, w := range targets {
		w.success(pos)
	}
}

// Fail makes position requests fail and notifies every watch.
func (g *Geolocation) Fail(code geolocation.ErrorCode, message string) {
	perr := &geolocation.PositionError{Code: code, Message: message}

	g.mu.Lock()
	g.err = perr
	targets := g.snapshot()
	g.mu.Unlock()

	for _, w := range targets {
		w.failure(&geolocation.PositionError{Code: code, Message: message})
	}
}

// ActiveWatches returns the number of registered watches.
func (g *Geolocation) ActiveWatches() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.watchers)
}

// Requests returns the options of every position request, in order.
func (g *Geolocation) Requests() []*geolocation.PositionOptions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*geolocation.PositionOptions(nil), g.requests...)
}

// snapshot returns the watchers in registration order. g.mu must be held.
func (g *Geolocation) snapshot() []watcher {
	out := make([]watcher, 0, len(g.watchers))
	for id := int64(1); id <= g.nextID; id++ {
		if w, ok := g.watchers[id]; ok {
			out = append(out, w)
		}
	}
	return out
}
