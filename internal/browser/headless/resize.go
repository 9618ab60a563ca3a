package headless

import (
	"sync"

	"github.com/GriffinCanCode/webinterop/internal/browser"
)

// Change is one element size change within a batch.
type Change struct {
	ID     string
	Width  float64
	Height float64
	// LegacyOnly reports the size only through the content rect, like
	// browsers without content-box sizes.
	LegacyOnly bool
}

// ResizeObservers creates observers and delivers resize batches to them.
type ResizeObservers struct {
	doc *Document

	mu        sync.Mutex
	observers []*ResizeObserver
	created   int
}

// NewResizeObservers creates a factory resolving ids against doc.
func NewResizeObservers(doc *Document) *ResizeObservers {
	return &ResizeObservers{doc: doc}
}

// NewResizeObserver implements browser.ResizeObserverFactory.
func (r *ResizeObservers) NewResizeObserver(callback func([]browser.ResizeEntry)) browser.ResizeObserver {
	o := &ResizeObserver{callback: callback, observed: make(map[browser.Element]bool), owner: r}
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.created++
	r.mu.Unlock()
	return o
}

// Created returns how many observers were ever created.
func (r *ResizeObservers) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// Live returns how many observers are not disconnected.
func (r *ResizeObservers) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}

// Resize delivers a single-entry batch for the element with id.
func (r *ResizeObservers) Resize(id string, width, height float64) {
	r.Batch(Change{ID: id, Width: width, Height: height})
}

// Batch delivers the changes as one notification to every live observer
// watching at least one of the elements. Entries keep their order,
// duplicates included.
func (r *ResizeObservers) Batch(changes ...Change) {
	r.mu.Lock()
	observers := append([]*ResizeObserver(nil), r.observers...)
	r.mu.Unlock()

	for _, o := range observers {
		var entries []browser.ResizeEntry
		for _, c := range changes {
			elem, ok := r.doc.GetElementByID(c.ID)
			if !ok || !o.watching(elem) {
				continue
			}
			entry := browser.ResizeEntry{
				Target:      elem,
				ContentRect: browser.Rect{Width: c.Width, Height: c.Height},
			}
			if !c.LegacyOnly {
				entry.ContentBoxSize = []browser.BoxSize{{InlineSize: c.Width, BlockSize: c.Height}}
			}
			entries = append(entries, entry)
		}
		if len(entries) > 0 {
			o.callback(entries)
		}
	}
}

// ObservedCount returns the number of elements watched by live observers.
func (r *ResizeObservers) ObservedCount() int {
	r.mu.Lock()
	observers := append([]*ResizeObserver(nil), r.observers...)
	r.mu.Unlock()

	n := 0
	for _, o := range observers {
		o.mu.Lock()
		n += len(o.observed)
		o.mu.Unlock()
	}
	return n
}

// ResizeObserver is an in-memory browser.ResizeObserver.
type ResizeObserver struct {
	callback func([]browser.ResizeEntry)
	owner    *ResizeObservers

	mu           sync.Mutex
	observed     map[browser.Element]bool
	disconnected bool
}

func (o *ResizeObserver) Observe(e browser.Element) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.disconnected {
		o.observed[e] = true
	}
}

func (o *ResizeObserver) Unobserve(e browser.Element) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.observed, e)
}

// Disconnect stops all observation; the observer is not reused.
func (o *ResizeObserver) Disconnect() {
	o.mu.Lock()
	o.observed = make(map[browser.Element]bool)
	o.disconnected = true
	o.mu.Unlock()

	r := o.owner
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, other := range r.observers {
		if other == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			break
		}
	}
}

func (o *ResizeObserver) watching(e browser.Element) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.observed[e]
}
