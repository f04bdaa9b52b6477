// Package logging wraps a process-wide zerolog logger.
//
// Call Init once from main; before that the package logs JSON at info level to stderr.
//
//	logging.Info().Str("addr", addr).Msg("server starting")
//	logging.Ctx(ctx).Error().Err(err).Msg("query failed")
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Config holds logging configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn, error.
	Level string
	// Format is json or console.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

type contextKey string

const requestIDKey contextKey = "request_id"

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	initLogger(Config{})
}

// Init reconfigures the global logger.
func Init(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	initLogger(cfg)
}

func initLogger(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	out := cfg.Output
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Logger returns a copy of the global logger.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

func Debug() *zerolog.Event {
	l := Logger()
	return l.Debug()
}

func Info() *zerolog.Event {
	l := Logger()
	return l.Info()
}

func Warn() *zerolog.Event {
	l := Logger()
	return l.Warn()
}

func Error() *zerolog.Event {
	l := Logger()
	return l.Error()
}

// Fatal logs and exits the process.
func Fatal() *zerolog.Event {
	l := Logger()
	return l.Fatal()
}

// NewRequestID returns a fresh request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// ContextWithRequestID stores the request ID for later log lines.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the request ID or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger annotated with the request ID carried by ctx.
func Ctx(ctx context.Context) *zerolog.Logger {
	l := Logger()
	if ctx != nil {
		if id := RequestIDFromContext(ctx); id != "" {
			l = l.With().Str("request_id", id).Logger()
		}
	}
	return &l
}
