package browser

import (
	"context"
	"time"

	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

// Platform is the set of Web APIs the modules use. A nil Geolocation or
// ResizeObservers means the browser does not support it.
type Platform struct {
	Geolocation     Geolocation
	Document        Document
	ResizeObservers ResizeObserverFactory
	Console         Console
	Now             func() time.Time
	UserAgent       string
}

func (p Platform) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Geolocation mirrors navigator.geolocation.
type Geolocation interface {
	// GetCurrentPosition returns a *geolocation.PositionError for failures
	// the API reports.
	GetCurrentPosition(ctx context.Context, opts *geolocation.PositionOptions) (geolocation.Position, error)
	// WatchPosition calls success or failure on every update until the
	// returned id is cleared.
	WatchPosition(success func(geolocation.Position), failure func(*geolocation.PositionError), opts *geolocation.PositionOptions) int64
	ClearWatch(id int64)
}

// Element is a DOM element.
type Element interface {
	ID() string
}

// Document looks up elements.
type Document interface {
	GetElementByID(id string) (Element, bool)
}

// BoxSize is one fragment of a ResizeObserver content box.
type BoxSize struct {
	InlineSize float64
	BlockSize  float64
}

// Rect is the legacy content rectangle of a resize entry.
type Rect struct {
	X, Y, Width, Height float64
}

// ResizeEntry is one observation delivered to a resize callback.
type ResizeEntry struct {
	Target         Element
	ContentBoxSize []BoxSize
	ContentRect    Rect
}

// Size returns the content-box size, falling back to the content rect on
// browsers that do not report box sizes.
func (e ResizeEntry) Size() (width, height float64) {
	if len(e.ContentBoxSize) > 0 {
		return e.ContentBoxSize[0].InlineSize, e.ContentBoxSize[0].BlockSize
	}
	return e.ContentRect.Width, e.ContentRect.Height
}

// ResizeObserver mirrors the ResizeObserver API.
type ResizeObserver interface {
	Observe(Element)
	Unobserve(Element)
	Disconnect()
}

// ResizeObserverFactory creates observers; callback receives each batch of
// entries.
type ResizeObserverFactory interface {
	NewResizeObserver(callback func(entries []ResizeEntry)) ResizeObserver
}

// Console is the browser console.
type Console interface {
	Trace(msg string)
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	// Log writes msg. A non-empty style applies to the %c directive msg
	// starts with.
	Log(msg, style string)
}
