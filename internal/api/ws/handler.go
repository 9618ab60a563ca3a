package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/bridge"
	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

const (
	helloTimeout  = 10 * time.Second
	detachTimeout = 5 * time.Second
)

// Options configures the handler. Zero values get defaults.
type Options struct {
	Codec        wire.Codec
	PingInterval time.Duration
	CallTimeout  time.Duration

	// BreakerEnabled trips a session's breaker after MaxFailures
	// consecutive transport failures, for OpenTimeout.
	BreakerEnabled bool
	MaxFailures    uint32
	OpenTimeout    time.Duration
}

// Handler manages WebSocket connections
type Handler struct {
	components *component.Manager
	logger     *zap.Logger
	metrics    *monitoring.Metrics
	opts       Options
	upgrader   websocket.Upgrader

	mu       sync.Mutex
	sessions map[*bridge.Session]struct{}
}

// NewHandler creates a new WebSocket handler
func NewHandler(components *component.Manager, logger *zap.Logger, metrics *monitoring.Metrics, opts Options) *Handler {
	if opts.Codec == nil {
		opts.Codec = wire.JSON
	}
	return &Handler{
		components: components,
		logger:     logging.OrNop(logger),
		metrics:    metrics,
		opts:       opts,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // origins are enforced by the CORS middleware
			},
		},
		sessions: make(map[*bridge.Session]struct{}),
	}
}

// HandleConnection upgrades the request and serves the session until the
// browser disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	codec := h.opts.Codec
	if name := c.Query("codec"); name != "" {
		var err error
		if codec, err = wire.CodecByName(name); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	conn := bridge.NewWebSocketConn(ws, codec.Binary(), h.opts.PingInterval)
	session := bridge.NewSession(conn, codec, bridge.SessionOptions{
		Logger:      h.logger,
		Metrics:     h.metrics,
		Breaker:     h.newBreaker(),
		CallTimeout: h.opts.CallTimeout,
	})
	h.track(session, true)
	defer h.track(session, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	attached := make(chan *component.Component, 1)
	go h.attach(ctx, session, attached)

	if err := session.Run(ctx); err != nil {
		h.logger.Warn("Session ended with error", zap.String("session", session.ID().String()), zap.Error(err))
	}
	cancel()

	if comp := <-attached; comp != nil {
		detachCtx, done := context.WithTimeout(context.Background(), detachTimeout)
		defer done()
		h.components.Detach(detachCtx, comp.ID())
	}
}

// attach waits for the hello frame and registers the component. It always
// sends exactly one value on out.
func (h *Handler) attach(ctx context.Context, session *bridge.Session, out chan<- *component.Component) {
	helloCtx, cancel := context.WithTimeout(ctx, helloTimeout)
	defer cancel()

	if _, err := session.WaitReady(helloCtx); err != nil {
		if ctx.Err() == nil {
			h.logger.Warn("Browser did not announce itself", zap.String("session", session.ID().String()), zap.Error(err))
			_ = session.Close()
		}
		out <- nil
		return
	}
	out <- h.components.Attach(session)
}

func (h *Handler) newBreaker() *resilience.Breaker {
	if !h.opts.BreakerEnabled {
		return resilience.New("session", resilience.Settings{
			ReadyToTrip: func(resilience.Counts) bool { return false },
			IsFailure:   bridge.IsTransportFailure,
		})
	}
	maxFailures := h.opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	return resilience.New("session", resilience.Settings{
		Timeout: h.opts.OpenTimeout,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsFailure: bridge.IsTransportFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			h.logger.Warn("Circuit breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
}

func (h *Handler) track(s *bridge.Session, live bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if live {
		h.sessions[s] = struct{}{}
	} else {
		delete(h.sessions, s)
	}
}

// Active returns the number of open connections.
func (h *Handler) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close closes every open connection.
func (h *Handler) Close() {
	h.mu.Lock()
	sessions := make([]*bridge.Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}
}
