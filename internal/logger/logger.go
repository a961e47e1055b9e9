package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log = zerolog.Nop()

// Options configures the process-wide logger.
type Options struct {
	Level  string    // debug, info, warn, error; empty means info
	Output io.Writer // defaults to os.Stderr
	Pretty bool      // human-readable console output instead of JSON lines
}

type LogEvent struct {
	*zerolog.Event
}

// Init initializes the logger. An unknown level is an error and leaves the
// previous logger in place.
func Init(opts Options) error {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return nil
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// Debug logs a debug message
func Debug() *LogEvent {
	return &LogEvent{log.Debug()}
}

// Info logs an info message
func Info() *LogEvent {
	return &LogEvent{log.Info()}
}

// Warn logs a warning message
func Warn() *LogEvent {
	return &LogEvent{log.Warn()}
}

// Error logs an error message
func Error() *LogEvent {
	return &LogEvent{log.Error()}
}

// Fatal logs a fatal message and exits the program
func Fatal() *LogEvent {
	return &LogEvent{log.Fatal()}
}
