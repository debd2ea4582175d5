package runtime

import (
	"time"
)

// Config defines sandbox configuration
type Config struct {
	Timeout          time.Duration // Execution timeout, zero disables it
	MaxCallStackSize int           // Maximum JS call depth, zero keeps goja's default
	EnableConsole    bool          // Expose a capturing console object
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    `json:"level"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// DefaultConfig has no timeout and no console
func DefaultConfig() Config {
	return Config{
		MaxCallStackSize: 2048,
	}
}
