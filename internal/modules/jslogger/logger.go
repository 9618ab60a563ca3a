package jslogger

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/interop"
)

// ModulePath is where the browser logger module is published.
const ModulePath = interop.ContentPrefix + "jslogger.js"

func method(name string) string {
	return interop.MethodName(interop.NamespaceJsLogger, name)
}

// Option configures a Logger.
type Option func(*Logger)

// WithConfig starts the logger with a copy of cfg.
func WithConfig(cfg *Config) Option {
	return func(l *Logger) {
		if cfg != nil {
			l.config = cfg.Clone()
		}
	}
}

// WithDetailedErrors controls whether LogErr appends the %+v form of the
// error. It is on by default.
func WithDetailedErrors(enabled bool) Option {
	return func(l *Logger) { l.detailedErrors = enabled }
}

// Logger writes messages to the browser console. It is safe for concurrent
// use.
type Logger struct {
	module *interop.LazyModule
	logger *zap.Logger

	mu             sync.RWMutex
	config         *Config
	detailedErrors bool
	disposed       bool
}

// New creates a logger bound to rt.
func New(rt interop.Runtime, logger *zap.Logger, opts ...Option) *Logger {
	l := &Logger{
		module:         interop.NewLazyModule(rt, ModulePath),
		logger:         logging.OrNop(logger).With(zap.String("module", "jslogger")),
		config:         DefaultConfig(),
		detailedErrors: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// For creates a logger whose category is the name of T.
func For[T any](rt interop.Runtime, logger *zap.Logger, opts ...Option) *Logger {
	l := New(rt, logger, opts...)
	l.config.category = typeName[T]()
	return l
}

func typeName[T any]() string {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

// Config returns a copy of the current configuration.
func (l *Logger) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.Clone()
}

// SetConfig replaces the configuration with a copy of cfg.
func (l *Logger) SetConfig(cfg *Config) error {
	if cfg == nil {
		return interop.InvalidArgument("config must not be nil")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config = cfg.Clone()
	return nil
}

// SetDetailedErrors toggles the detailed form in LogErr.
func (l *Logger) SetDetailedErrors(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detailedErrors = enabled
}

// IsEnabled reports whether level passes the configuration.
func (l *Logger) IsEnabled(level interop.LogLevel) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.config.IsEnabled(level)
}

// Log writes message at level. Disabled levels never reach the browser.
func (l *Logger) Log(ctx context.Context, level interop.LogLevel, message, eventID string) error {
	l.mu.RLock()
	cfg := l.config.Clone()
	l.mu.RUnlock()

	if !cfg.IsEnabled(level) {
		return nil
	}
	m, err := l.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("Log"+level.String()), cfg, message, eventID)
}

func (l *Logger) LogTrace(ctx context.Context, message, eventID string) error {
	return l.Log(ctx, interop.LevelTrace, message, eventID)
}

func (l *Logger) LogDebug(ctx context.Context, message, eventID string) error {
	return l.Log(ctx, interop.LevelDebug, message, eventID)
}

func (l *Logger) LogInformation(ctx context.Context, message, eventID string) error {
	return l.Log(ctx, interop.LevelInformation, message, eventID)
}

func (l *Logger) LogWarning(ctx context.Context, message, eventID string) error {
	return l.Log(ctx, interop.LevelWarning, message, eventID)
}

func (l *Logger) LogError(ctx context.Context, message, eventID string) error {
	return l.Log(ctx, interop.LevelError, message, eventID)
}

func (l *Logger) LogCritical(ctx context.Context, message, eventID string) error {
	return l.Log(ctx, interop.LevelCritical, message, eventID)
}

// LogErr writes err at Error level, one line for its message followed by
// its %+v form when detailed errors are on. A nil err logs nothing.
func (l *Logger) LogErr(ctx context.Context, err error, eventID string) error {
	if err == nil {
		return nil
	}
	l.mu.RLock()
	detailed := l.detailedErrors
	l.mu.RUnlock()

	var b strings.Builder
	if msg := err.Error(); strings.TrimSpace(msg) != "" {
		b.WriteString(msg)
		b.WriteByte('\n')
	}
	if detailed {
		fmt.Fprintf(&b, "%+v\n", detail(err))
	}
	return l.Log(ctx, interop.LevelError, b.String(), eventID)
}

// detail lists the wrapped chain of err, outermost first.
func detail(err error) string {
	var parts []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		parts = append(parts, fmt.Sprintf("%T: %v", e, e))
	}
	return strings.Join(parts, "\n  caused by ")
}

// LogRaw writes message as is with a CSS style, bypassing the template and
// the level gate.
func (l *Logger) LogRaw(ctx context.Context, message, style string) error {
	m, err := l.load(ctx)
	if err != nil {
		return err
	}
	return m.InvokeVoid(ctx, method("LogRaw"), message, style)
}

// Test writes message once at every level with the current configuration.
// An empty message lets the browser use its own sample text.
func (l *Logger) Test(ctx context.Context, message string) error {
	m, err := l.load(ctx)
	if err != nil {
		return err
	}
	args := []any{l.Config()}
	if message != "" {
		args = append(args, message)
	}
	return m.InvokeVoid(ctx, method("Test"), args...)
}

// Dispose releases the browser module if it was loaded. It never fails and
// is safe to call more than once.
func (l *Logger) Dispose(ctx context.Context) error {
	l.mu.Lock()
	if l.disposed {
		l.mu.Unlock()
		return nil
	}
	l.disposed = true
	l.mu.Unlock()

	if m, ok := l.module.Loaded(ctx); ok {
		if err := m.Dispose(ctx); err != nil {
			l.logger.Debug("Failed to dispose module", zap.Error(err))
		}
	}
	return nil
}

func (l *Logger) load(ctx context.Context) (*interop.Module, error) {
	l.mu.RLock()
	disposed := l.disposed
	l.mu.RUnlock()
	if disposed {
		return nil, interop.ErrDisposed
	}
	return l.module.Get(ctx)
}
