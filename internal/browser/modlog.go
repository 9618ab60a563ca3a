package browser

import (
	"strings"
	"sync"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// moduleLogger is the diagnostic log of one browser module, written to the
// console as "[Level] message".
type moduleLogger struct {
	console Console

	mu    sync.RWMutex
	level interop.LogLevel
}

func newModuleLogger(console Console) *moduleLogger {
	return &moduleLogger{console: console, level: interop.LevelInformation}
}

func (l *moduleLogger) setLevel(level interop.LogLevel) {
	if !level.Valid() {
		level = interop.LevelInformation
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
	l.log(interop.LevelInformation, "LogLevel has been set to: '"+level.String()+"'")
}

// log writes message when level is at or above the module level. Values
// are appended in their JSON form.
func (l *moduleLogger) log(level interop.LogLevel, message string, values ...any) {
	l.mu.RLock()
	min := l.level
	l.mu.RUnlock()
	if level < min || l.console == nil {
		return
	}

	var b strings.Builder
	b.WriteString("[")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(message)
	for _, v := range values {
		data, err := wire.JSON.Marshal(v)
		if err != nil {
			continue
		}
		b.WriteByte(' ')
		b.Write(data)
	}
	writeLevel(l.console, level, b.String())
}

// writeLevel sends msg to the console channel of level. Critical goes to
// the error channel with a CRITICAL prefix; None writes nothing.
func writeLevel(c Console, level interop.LogLevel, msg string) {
	switch level {
	case interop.LevelTrace:
		c.Trace(msg)
	case interop.LevelDebug:
		c.Debug(msg)
	case interop.LevelInformation:
		c.Info(msg)
	case interop.LevelWarning:
		c.Warn(msg)
	case interop.LevelError:
		c.Error(msg)
	case interop.LevelCritical:
		c.Error("CRITICAL: " + msg)
	}
}
