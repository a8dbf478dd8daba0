// Package logging configures the zerolog logger shared by the CLI and the chat core.
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.Nop()
)

// Options controls logger construction
type Options struct {
	Level   string    // "debug", "info", "warn", "error", "disabled"
	Verbose bool      // forces debug level
	Output  io.Writer // defaults to os.Stderr
	JSON    bool      // raw JSON lines instead of the console writer
}

// ParseLevel converts a level name into a zerolog level, defaulting to info
func ParseLevel(name string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "trace":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off", "none":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// New builds a logger without touching the package default
func New(opts Options) zerolog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	if !opts.JSON {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	level := ParseLevel(opts.Level)
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Setup builds a logger and installs it as the package default
func Setup(opts Options) zerolog.Logger {
	l := New(opts)
	mu.Lock()
	logger = l
	mu.Unlock()
	return l
}

// L returns the package default logger (a no-op logger until Setup is called)
func L() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Component returns the default logger tagged with a component name
func Component(name string) zerolog.Logger {
	return L().With().Str("component", name).Logger()
}
