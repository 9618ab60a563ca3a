package sandbox

import (
	"errors"
	"time"
)

// ErrTimeout is returned when a scenario runs longer than Config.Timeout.
var ErrTimeout = errors.New("scenario timeout exceeded")

// Config defines sandbox configuration
type Config struct {
	Timeout       time.Duration // Execution timeout
	EnableConsole bool          // Allow console.log/warn/error
	EnableDOM     bool          // Expose document and dom
	MaxCallStack  int           // Maximum JavaScript call stack depth
}

// Result holds execution result
type Result struct {
	Value    any           // Return value
	Console  []LogEntry    // Script console output
	Duration time.Duration // Execution time
	Error    error         // Execution error
}

// LogEntry is one console call made by the script.
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}

// DefaultConfig returns the configuration used by the CLI.
func DefaultConfig() Config {
	return Config{
		Timeout:       30 * time.Second,
		EnableConsole: true,
		EnableDOM:     true,
		MaxCallStack:  1024,
	}
}
