package headless

import (
	"time"

	"github.com/GriffinCanCode/webinterop/internal/browser"
)

// UserAgent is announced by headless browsers.
const UserAgent = "webinterop-headless/1.0"

// Browser bundles the in-memory Web APIs.
type Browser struct {
	Geolocation *Geolocation
	Document    *Document
	Observers   *ResizeObservers
	Console     *Console

	now           func() time.Time
	noGeolocation bool
	noResize      bool
}

// Option configures a Browser.
type Option func(*Browser)

// WithoutGeolocation makes the browser report no geolocation support.
func WithoutGeolocation() Option {
	return func(b *Browser) { b.noGeolocation = true }
}

// WithoutResizeObserver makes the browser report no ResizeObserver support.
func WithoutResizeObserver() Option {
	return func(b *Browser) { b.noResize = true }
}

// WithClock replaces the wall clock used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(b *Browser) { b.now = now }
}

// New creates a browser with an empty document.
func New(opts ...Option) *Browser {
	b := &Browser{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	b.Console = NewConsole(b.now)
	b.Document = NewDocument()
	b.Geolocation = NewGeolocation(b.now)
	b.Observers = NewResizeObservers(b.Document)
	return b
}

// Platform exposes the browser to a browser.Host.
func (b *Browser) Platform() browser.Platform {
	p := browser.Platform{
		Document:  b.Document,
		Console:   b.Console,
		Now:       b.now,
		UserAgent: UserAgent,
	}
	if !b.noGeolocation {
		p.Geolocation = b.Geolocation
	}
	if !b.noResize {
		p.ResizeObservers = b.Observers
	}
	return p
}
