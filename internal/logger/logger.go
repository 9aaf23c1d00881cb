package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// ContextKey is the type for context keys used by the logger
type ContextKey string

const (
	// LoggerKey is the context key for the logger instance
	LoggerKey ContextKey = "logger"
)

// Option configures a logger built by New.
type Option func(*settings)

type settings struct {
	out   io.Writer
	level zerolog.Level
}

// WithLevel sets the minimum level the logger emits.
func WithLevel(level zerolog.Level) Option {
	return func(s *settings) { s.level = level }
}

// WithOutput redirects the console output away from stderr.
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.out = w }
}

// New creates a new structured logger with default configuration
func New(opts ...Option) zerolog.Logger {
	s := settings{out: os.Stderr, level: zerolog.TraceLevel}
	for _, opt := range opts {
		opt(&s)
	}
	output := zerolog.ConsoleWriter{
		Out:        s.out,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(s.level).With().Timestamp().Logger()
}

// NewWithWriter creates a new structured logger with a custom writer
func NewWithWriter(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from the context or returns a default logger
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(LoggerKey).(zerolog.Logger); ok {
		return logger
	}
	return New()
}
