package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
	"github.com/GriffinCanCode/webinterop/internal/modules/jslogger"
)

// Version is reported by the root endpoint.
const Version = "1.0.0"

// ConnectionCounter reports open browser connections.
type ConnectionCounter interface {
	Active() int
}

// Handlers contains all HTTP handlers
type Handlers struct {
	components  *component.Manager
	connections ConnectionCounter
	metrics     *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(components *component.Manager, connections ConnectionCounter, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		components:  components,
		connections: connections,
		metrics:     metrics,
	}
}

// Register adds the routes to r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)

	r.GET("/components", h.ListComponents)
	c := r.Group("/components/:id")
	c.GET("", h.GetComponent)
	c.GET("/events", h.Events)

	c.PUT("/:module/log-level", h.SetLogLevel)

	c.POST("/geolocation/location", h.GetLocation)
	c.GET("/geolocation/watches/:key", h.IsWatched)
	c.POST("/geolocation/watches/:key", h.WatchPosition)
	c.DELETE("/geolocation/watches/:key", h.ClearWatch)
	c.DELETE("/geolocation/watches", h.ClearWatches)

	c.POST("/observer/resizers", h.AddResizers)
	c.DELETE("/observer/resizers", h.RemoveResizers)
	c.POST("/observer/disconnect", h.DisconnectResizers)

	c.GET("/logger/config", h.GetLoggerConfig)
	c.PUT("/logger/config", h.SetLoggerConfig)
	c.POST("/logger/log", h.Log)
	c.POST("/logger/raw", h.LogRaw)
	c.POST("/logger/test", h.LogTest)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "webinterop",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":     "healthy",
		"components": h.components.Count(),
	}
	if h.connections != nil {
		body["connections"] = h.connections.Active()
	}
	c.JSON(http.StatusOK, body)
}

// Status returns the metric counters and the attached components.
func (h *Handlers) Status(c *gin.Context) {
	body := gin.H{"components": h.components.List()}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}

// ListComponents lists the attached browser contexts.
func (h *Handlers) ListComponents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"components": h.components.List()})
}

// GetComponent describes one browser context.
func (h *Handlers) GetComponent(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, comp.Info())
}

// Events pages through the notifications of a component.
func (h *Handlers) Events(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	since, err := strconv.ParseUint(c.DefaultQuery("since", "0"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "since must be a sequence number"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": comp.Events(since)})
}

type levelRequest struct {
	Level interop.LogLevel `json:"level"`
}

// SetLogLevel sets the browser module log level of geolocation or observer.
func (h *Handlers) SetLogLevel(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var req levelRequest
	if !bind(c, &req) {
		return
	}

	ctx := c.Request.Context()
	var err error
	switch module := c.Param("module"); module {
	case "geolocation":
		err = comp.Geolocation.SetLogLevel(ctx, req.Level)
	case "observer":
		err = comp.Observer.SetLogLevel(ctx, req.Level)
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown module " + module})
		return
	}
	respond(c, gin.H{"level": req.Level}, err)
}

// GetLocation fetches the current position once.
func (h *Handlers) GetLocation(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var opts *geolocation.WireOptions
	if c.Request.ContentLength != 0 && !bind(c, &opts) {
		return
	}
	result, err := comp.Geolocation.GetLocation(c.Request.Context(), opts.Options())
	respond(c, result, err)
}

// WatchPosition starts a watch under the key in the path.
func (h *Handlers) WatchPosition(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var opts *geolocation.WireOptions
	if c.Request.ContentLength != 0 && !bind(c, &opts) {
		return
	}
	id, created, err := comp.Geolocation.WatchPosition(c.Request.Context(), c.Param("key"), opts.Options())
	if err != nil {
		fail(c, err)
		return
	}
	body := gin.H{"key": c.Param("key"), "created": created}
	if created {
		body["watchId"] = id
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, body)
}

// IsWatched reports whether a watch is active under the key.
func (h *Handlers) IsWatched(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	watched, err := comp.Geolocation.IsWatched(c.Request.Context(), c.Param("key"))
	respond(c, gin.H{"key": c.Param("key"), "watched": watched}, err)
}

// ClearWatch stops the watch under the key. Unknown keys are not an error.
func (h *Handlers) ClearWatch(c *gin.Context) {
	h.do(c, func(ctx context.Context, comp *component.Component) error {
		return comp.Geolocation.ClearWatch(ctx, c.Param("key"))
	})
}

// ClearWatches stops every watch.
func (h *Handlers) ClearWatches(c *gin.Context) {
	h.do(c, func(ctx context.Context, comp *component.Component) error {
		return comp.Geolocation.ClearWatches(ctx)
	})
}

type resizersRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// AddResizers observes the elements in the body.
func (h *Handlers) AddResizers(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var req resizersRequest
	if !bind(c, &req) {
		return
	}
	err := comp.Observer.AddResizers(c.Request.Context(), req.IDs)
	respond(c, gin.H{"ids": req.IDs}, err)
}

// RemoveResizers stops observing the elements named by the id query values.
func (h *Handlers) RemoveResizers(c *gin.Context) {
	ids := c.QueryArray("id")
	if len(ids) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one id query parameter is required"})
		return
	}
	h.do(c, func(ctx context.Context, comp *component.Component) error {
		return comp.Observer.RemoveResizers(ctx, ids)
	})
}

// DisconnectResizers stops observing every element.
func (h *Handlers) DisconnectResizers(c *gin.Context) {
	h.do(c, func(ctx context.Context, comp *component.Component) error {
		return comp.Observer.DisconnectResizers(ctx)
	})
}

// GetLoggerConfig returns the logger configuration of a component.
func (h *Handlers) GetLoggerConfig(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, loggerConfigBody(comp.Logger.Config()))
}

type loggerConfigRequest struct {
	Category string           `json:"category"`
	MinLevel interop.LogLevel `json:"minLevel"`
	MaxLevel interop.LogLevel `json:"maxLevel"`
	Template string           `json:"template"`
}

// SetLoggerConfig replaces the logger configuration.
func (h *Handlers) SetLoggerConfig(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var req loggerConfigRequest
	if !bind(c, &req) {
		return
	}
	cfg, err := jslogger.NewConfig(req.Category, req.MinLevel, req.MaxLevel, req.Template)
	if err == nil {
		err = comp.Logger.SetConfig(cfg)
	}
	respond(c, loggerConfigBody(cfg), err)
}

func loggerConfigBody(cfg *jslogger.Config) gin.H {
	if cfg == nil {
		return nil
	}
	return gin.H{
		"category": cfg.Category(),
		"minLevel": cfg.MinLevel(),
		"maxLevel": cfg.MaxLevel(),
		"template": cfg.Template(),
	}
}

type logRequest struct {
	Level   interop.LogLevel `json:"level"`
	Message string           `json:"message"`
	Event   string           `json:"event"`
}

// Log writes one message to the browser console.
func (h *Handlers) Log(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var req logRequest
	if !bind(c, &req) {
		return
	}
	enabled := comp.Logger.IsEnabled(req.Level)
	err := comp.Logger.Log(c.Request.Context(), req.Level, req.Message, req.Event)
	respond(c, gin.H{"logged": enabled}, err)
}

type rawRequest struct {
	Message string `json:"message"`
	Style   string `json:"style"`
}

// LogRaw writes a styled message without the template.
func (h *Handlers) LogRaw(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var req rawRequest
	if !bind(c, &req) {
		return
	}
	err := comp.Logger.LogRaw(c.Request.Context(), req.Message, req.Style)
	respond(c, gin.H{"logged": true}, err)
}

type testRequest struct {
	Message string `json:"message"`
}

// LogTest writes a sample message at every level.
func (h *Handlers) LogTest(c *gin.Context) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	var req testRequest
	if c.Request.ContentLength != 0 && !bind(c, &req) {
		return
	}
	err := comp.Logger.Test(c.Request.Context(), req.Message)
	respond(c, gin.H{"logged": true}, err)
}

func (h *Handlers) component(c *gin.Context) (*component.Component, bool) {
	comp, ok := h.components.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "component not found"})
		return nil, false
	}
	return comp, true
}

// do runs fn against the component and answers 204 on success.
func (h *Handlers) do(c *gin.Context, fn func(ctx context.Context, comp *component.Component) error) {
	comp, ok := h.component(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), comp); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}

func respond(c *gin.Context, body any, err error) {
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func fail(c *gin.Context, err error) {
	c.JSON(statusOf(err), gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	var remote *interop.RemoteError
	switch {
	case errors.Is(err, interop.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, interop.ErrDisposed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, interop.ErrNotConnected),
		errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrTooManyRequests):
		return http.StatusServiceUnavailable
	case errors.As(err, &remote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
