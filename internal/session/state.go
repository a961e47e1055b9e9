package session

import (
	"fmt"
	"time"
)

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateCancelled // cancellation observed, report still pending
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCancelled:
		return "cancelled"
	case StateCompleted:
		return "completed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Config holds the session parameters.
type Config struct {
	Duration time.Duration // total session length (default: 300s)
	Interval time.Duration // sampling period (default: 1s)
}

func DefaultConfig() Config {
	return Config{
		Duration: 300 * time.Second,
		Interval: time.Second,
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c Config) Validate() error {
	if c.Duration <= 0 {
		return &ConfigError{Field: "Duration", Message: "must be positive"}
	}
	if c.Interval <= 0 {
		return &ConfigError{Field: "Interval", Message: "must be positive"}
	}
	if c.Interval > c.Duration {
		return &ConfigError{Field: "Interval", Message: "must not exceed Duration"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "session config error: " + e.Field + " " + e.Message
}
