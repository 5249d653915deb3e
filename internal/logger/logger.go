package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

type contextKey string

const (
	// ContextKeyRequestID carries the id of one user action through its chain.
	ContextKeyRequestID contextKey = "request_id"
	// ContextKeyOperation names the user action.
	ContextKeyOperation contextKey = "operation"
)

type Config struct {
	Level  slog.Level
	Format string
	Output io.Writer
}

// Logger wraps slog.Logger.
type Logger struct {
	*slog.Logger
}

func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	if config.Format == "json" {
		opts := &slog.HandlerOptions{
			Level: config.Level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String(a.Key, a.Value.Time().Format(time.RFC3339))
				}
				return a
			},
		}
		return &Logger{Logger: slog.New(slog.NewJSONHandler(out, opts))}
	}

	opts := &tint.Options{
		Level:      config.Level,
		TimeFormat: time.Kitchen,
	}
	return &Logger{Logger: slog.New(tint.NewHandler(out, opts))}
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func FromConfig(logLevel, logFormat string) Config {
	config := Config{
		Level:  slog.LevelInfo,
		Format: "text",
	}

	switch logLevel {
	case "debug":
		config.Level = slog.LevelDebug
	case "info":
		config.Level = slog.LevelInfo
	case "warn":
		config.Level = slog.LevelWarn
	case "error":
		config.Level = slog.LevelError
	}

	if logFormat != "" {
		config.Format = logFormat
	}
	return config
}

// NewRequest starts a user action: the returned context carries a fresh request id and the
// operation name.
func NewRequest(ctx context.Context, operation string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyRequestID, uuid.NewString())
	return context.WithValue(ctx, ContextKeyOperation, operation)
}

func (l *Logger) WithContext(ctx context.Context) *Logger {
	logger := l.Logger

	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok && requestID != "" {
		logger = logger.With(slog.String("request_id", requestID))
	}
	if operation, ok := ctx.Value(ContextKeyOperation).(string); ok && operation != "" {
		logger = logger.With(slog.String("operation", operation))
	}

	return &Logger{Logger: logger}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.With(slog.String("component", component))}
}

func (l *Logger) LogError(ctx context.Context, err error, msg string, args ...any) {
	allArgs := append([]any{"error", err}, args...)
	l.WithContext(ctx).Error(msg, allArgs...)
}
