package headless

import (
	"strings"
	"sync"
	"time"
)

// Console levels as recorded in LogEntry.
const (
	LevelTrace = "trace"
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelLog   = "log"
)

// LogEntry is one console call.
type LogEntry struct {
	Level   string
	Message string
	Style   string
	Time    time.Time
}

// Console records console output.
type Console struct {
	now func() time.Time

	mu      sync.Mutex
	entries []LogEntry
}

// NewConsole creates an empty console.
func NewConsole(now func() time.Time) *Console {
	if now == nil {
		now = time.Now
	}
	return &Console{now: now}
}

func (c *Console) Trace(msg string)      { c.add(LevelTrace, msg, "") }
func (c *Console) Debug(msg string)      { c.add(LevelDebug, msg, "") }
func (c *Console) Info(msg string)       { c.add(LevelInfo, msg, "") }
func (c *Console) Warn(msg string)       { c.add(LevelWarn, msg, "") }
func (c *Console) Error(msg string)      { c.add(LevelError, msg, "") }
func (c *Console) Log(msg, style string) { c.add(LevelLog, msg, style) }

func (c *Console) add(level, msg, style string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, LogEntry{Level: level, Message: msg, Style: style, Time: c.now()})
}

// Entries returns everything logged so far.
func (c *Console) Entries() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LogEntry(nil), c.entries...)
}

// Messages returns the messages logged at level.
func (c *Console) Messages(level string) []string {
	var out []string
	for _, e := range c.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

// Contains reports whether any message at level contains substr.
func (c *Console) Contains(level, substr string) bool {
	for _, m := range c.Messages(level) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// Reset drops the recorded entries.
func (c *Console) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
}
