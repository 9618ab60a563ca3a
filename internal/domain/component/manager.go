package component

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/bridge"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
	"github.com/GriffinCanCode/webinterop/internal/modules/jslogger"
	"github.com/GriffinCanCode/webinterop/internal/modules/observer"
)

// DefaultEventCapacity is the number of events kept per component.
const DefaultEventCapacity = 256

// Event kinds.
const (
	KindGeolocation = "geolocation"
	KindResize      = "resize"
)

// Event is one notification received from a browser context.
type Event struct {
	Seq    uint64                `json:"seq"`
	Time   time.Time             `json:"time"`
	Kind   string                `json:"kind"`
	Watch  *geolocation.Event    `json:"watch,omitempty"`
	Resize *observer.ResizeEvent `json:"resize,omitempty"`
}

// Info describes a component for listings.
type Info struct {
	ID          string    `json:"id"`
	ContextID   string    `json:"contextId"`
	UserAgent   string    `json:"userAgent,omitempty"`
	Codec       string    `json:"codec"`
	ConnectedAt time.Time `json:"connectedAt"`
	Events      uint64    `json:"events"`
}

// Component is the server-side view of one browser context.
type Component struct {
	Geolocation *geolocation.Interop
	Observer    *observer.Interop
	Logger      *jslogger.Logger

	session     *bridge.Session
	connectedAt time.Time
	capacity    int

	mu     sync.RWMutex
	events []Event
	seq    uint64
}

// ID returns the session id.
func (c *Component) ID() string { return c.session.ID().String() }

// Session returns the session the proxies run on.
func (c *Component) Session() *bridge.Session { return c.session }

// Info returns a snapshot of the component.
func (c *Component) Info() Info {
	info := Info{
		ID:          c.ID(),
		Codec:       c.session.Codec().Name(),
		ConnectedAt: c.connectedAt,
	}
	if hello := c.session.Hello(); hello != nil {
		info.ContextID = hello.ContextID
		info.UserAgent = hello.UserAgent
	}
	c.mu.RLock()
	info.Events = c.seq
	c.mu.RUnlock()
	return info
}

// Events returns the retained events with a sequence number above since.
func (c *Component) Events(since uint64) []Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i := sort.Search(len(c.events), func(i int) bool { return c.events[i].Seq > since })
	return append([]Event(nil), c.events[i:]...)
}

func (c *Component) record(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	e.Seq = c.seq
	e.Time = time.Now()
	if len(c.events) == c.capacity {
		copy(c.events, c.events[1:])
		c.events = c.events[:len(c.events)-1]
	}
	c.events = append(c.events, e)
}

// Manager orchestrates component lifecycle
type Manager struct {
	mu         sync.RWMutex
	components map[string]*Component // Protected by mu
	logger     *zap.Logger
	capacity   int
}

// NewManager creates a new component manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		components: make(map[string]*Component),
		logger:     logging.OrNop(logger),
		capacity:   DefaultEventCapacity,
	}
}

// WithEventCapacity sets how many events each component keeps.
func (m *Manager) WithEventCapacity(n int) *Manager {
	if n > 0 {
		m.capacity = n
	}
	return m
}

// Attach creates the component for s and subscribes to its notifications.
func (m *Manager) Attach(s *bridge.Session) *Component {
	logger := m.logger.With(zap.String("session", s.ID().String()))
	c := &Component{
		Geolocation: geolocation.New(s, logger),
		Observer:    observer.New(s, logger),
		Logger:      jslogger.New(s, logger),
		session:     s,
		connectedAt: time.Now(),
		capacity:    m.capacity,
	}
	c.Geolocation.OnWatch(func(e geolocation.Event) {
		c.record(Event{Kind: KindGeolocation, Watch: &e})
	})
	c.Observer.OnResized(func(e observer.ResizeEvent) {
		c.record(Event{Kind: KindResize, Resize: &e})
	})

	m.mu.Lock()
	m.components[c.ID()] = c
	m.mu.Unlock()

	logger.Info("Component attached")
	return c
}

// Detach disposes the proxies of the component and forgets it. It reports
// whether the component existed.
func (m *Manager) Detach(ctx context.Context, id string) bool {
	m.mu.Lock()
	c, ok := m.components[id]
	delete(m.components, id)
	m.mu.Unlock()
	if !ok {
		return false
	}

	for name, dispose := range map[string]func(context.Context) error{
		"geolocation": c.Geolocation.Dispose,
		"observer":    c.Observer.Dispose,
		"jslogger":    c.Logger.Dispose,
	} {
		if err := dispose(ctx); err != nil {
			m.logger.Debug("Dispose failed",
				zap.String("session", id),
				zap.String("module", name),
				zap.Error(err))
		}
	}

	m.logger.Info("Component detached", zap.String("session", id))
	return true
}

// Get retrieves a component by session id
func (m *Manager) Get(id string) (*Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.components[id]
	return c, ok
}

// List returns the attached components ordered by connection time.
func (m *Manager) List() []Info {
	m.mu.RLock()
	infos := make([]Info, 0, len(m.components))
	for _, c := range m.components {
		infos = append(infos, c.Info())
	}
	m.mu.RUnlock()

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].ConnectedAt.Equal(infos[j].ConnectedAt) {
			return infos[i].ID < infos[j].ID
		}
		return infos[i].ConnectedAt.Before(infos[j].ConnectedAt)
	})
	return infos
}

// Count returns the number of attached components.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.components)
}

// DetachAll detaches every component.
func (m *Manager) DetachAll(ctx context.Context) {
	m.mu.RLock()
	ids := make([]string, 0, len(m.components))
	for id := range m.components {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.Detach(ctx, id)
	}
}
