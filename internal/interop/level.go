package interop

import (
	"fmt"
	"strings"
)

// LogLevel is the severity of a browser console message. Levels are
// ordered; None always suppresses output.
type LogLevel int

const (
	LevelTrace LogLevel = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
	LevelNone
)

var levelNames = [...]string{
	LevelTrace:       "Trace",
	LevelDebug:       "Debug",
	LevelInformation: "Information",
	LevelWarning:     "Warning",
	LevelError:       "Error",
	LevelCritical:    "Critical",
	LevelNone:        "None",
}

func (l LogLevel) String() string {
	if l.Valid() {
		return levelNames[l]
	}
	return fmt.Sprintf("LogLevel(%d)", int(l))
}

// Valid reports whether l is one of the defined levels.
func (l LogLevel) Valid() bool {
	return l >= LevelTrace && l <= LevelNone
}

// ParseLogLevel accepts a level name (case-insensitive, "warn" and "info"
// included) and returns the matching level.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "information", "info":
		return LevelInformation, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical":
		return LevelCritical, nil
	case "none":
		return LevelNone, nil
	}
	return LevelNone, InvalidArgument("unknown log level %q", s)
}

// MarshalText encodes the level by name, used by configuration files.
func (l LogLevel) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, InvalidArgument("unknown log level %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText parses a level name.
func (l *LogLevel) UnmarshalText(text []byte) error {
	parsed, err := ParseLogLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
