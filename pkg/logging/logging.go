// Package logging configures the process-wide structured logger.
package logging

import (
	"log/slog"
	"os"
)

// Options control logger construction.
type Options struct {
	// Debug forces level debug regardless of LOG_LEVEL.
	Debug bool

	// JSON emits machine-readable JSON records instead of text.
	JSON bool
}

// Setup installs the default slog logger on stderr, leaving stdout free for
// report output. The level comes from LOG_LEVEL (debug, info, warn, error)
// and defaults to info.
func Setup(opts Options) {
	level := slog.LevelInfo

	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = slog.LevelInfo
		}
	}
	if opts.Debug {
		level = slog.LevelDebug
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	slog.SetDefault(slog.New(handler))
}
