package jslogger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/webinterop/internal/interop"
)

// DefaultWriteTimeout bounds one console write made through a Core.
const DefaultWriteTimeout = 5 * time.Second

// FromZapLevel maps a zap level to the console level it is written at.
func FromZapLevel(l zapcore.Level) interop.LogLevel {
	switch {
	case l < zapcore.DebugLevel:
		return interop.LevelTrace
	case l == zapcore.DebugLevel:
		return interop.LevelDebug
	case l == zapcore.InfoLevel:
		return interop.LevelInformation
	case l == zapcore.WarnLevel:
		return interop.LevelWarning
	case l == zapcore.ErrorLevel:
		return interop.LevelError
	default:
		return interop.LevelCritical
	}
}

type core struct {
	logger  *Logger
	fields  []zapcore.Field
	timeout time.Duration
}

// NewCore returns a zapcore.Core that writes entries to the browser console
// through l. The logger name becomes the event id and fields are appended
// to the message as key=value pairs.
func NewCore(l *Logger) zapcore.Core {
	return &core{logger: l, timeout: DefaultWriteTimeout}
}

func (c *core) Enabled(l zapcore.Level) bool {
	return c.logger.IsEnabled(FromZapLevel(l))
}

func (c *core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append(slices.Clip(c.fields), fields...)
	return &clone
}

func (c *core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	var b strings.Builder
	b.WriteString(ent.Message)
	for _, k := range slices.Sorted(maps.Keys(enc.Fields)) {
		fmt.Fprintf(&b, " %s=%v", k, enc.Fields[k])
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	return c.logger.Log(ctx, FromZapLevel(ent.Level), b.String(), ent.LoggerName)
}

func (c *core) Sync() error { return nil }
