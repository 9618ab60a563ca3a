package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/webinterop/internal/api/http"
	"github.com/GriffinCanCode/webinterop/internal/api/middleware"
	"github.com/GriffinCanCode/webinterop/internal/api/static"
	"github.com/GriffinCanCode/webinterop/internal/api/ws"
	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router     *gin.Engine
	components *component.Manager
	ws         *ws.Handler
	tracer     *tracing.Tracer
	logger     *logging.Logger
	config     *config.Config
	metrics    *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return New(cfg, logger)
}

// New creates a server that logs to logger.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	codec, err := wire.CodecByName(cfg.Interop.Codec)
	if err != nil {
		return nil, err
	}

	logger.Info("Initializing interop server",
		zap.String("addr", cfg.Addr()),
		zap.String("interop_path", cfg.Interop.Path),
		zap.String("codec", codec.Name()),
	)

	metrics := monitoring.NewMetrics()
	tracer := tracing.New("webinterop", logger.Logger)
	components := component.NewManager(logger.Logger)

	wsHandler := ws.NewHandler(components, logger.Logger, metrics, ws.Options{
		Codec:          codec,
		PingInterval:   cfg.Interop.PingInterval.Std(),
		CallTimeout:    cfg.Interop.CallTimeout.Std(),
		BreakerEnabled: cfg.Breaker.Enabled,
		MaxFailures:    cfg.Breaker.MaxFailures,
		OpenTimeout:    cfg.Breaker.OpenTimeout.Std(),
	})

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.Server.CORSOrigins...)))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	apihttp.NewHandlers(components, wsHandler, metrics).Register(router)
	router.GET(cfg.Interop.Path, wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Assets.Dir != "" {
		catalog, err := static.Load(context.Background(), cfg.Assets.Dir, cfg.Assets.Include)
		if err != nil {
			tracer.Close()
			return nil, fmt.Errorf("failed to load assets: %w", err)
		}
		router.GET(cfg.Assets.Prefix+"/*path", gin.WrapH(catalog.Handler(cfg.Assets.Prefix)))
		logger.Info("Serving browser assets",
			zap.String("dir", cfg.Assets.Dir),
			zap.String("prefix", cfg.Assets.Prefix),
			zap.Int("files", len(catalog.Paths())),
		)
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router:     router,
		components: components,
		ws:         wsHandler,
		tracer:     tracer,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
	}, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Components returns the attached browser contexts.
func (s *Server) Components() *component.Manager {
	return s.components
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	// Hijacked websocket connections are not tracked by Shutdown.
	s.ws.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.ws.Close()
	s.components.DetachAll(ctx)
	s.tracer.Close()

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}
