package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const EnvProduction = "production"

// New builds the process logger: JSON lines in production, logfmt-style text
// everywhere else.
func New(env, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, env, level)
}

func NewWithWriter(w io.Writer, env, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if env == EnvProduction {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", "metadata-api"))
}

// ParseLevel accepts debug, info, warn/warning and error in any case and
// falls back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DefaultLevel is debug outside production.
func DefaultLevel(env string) string {
	if env == EnvProduction {
		return "info"
	}
	return "debug"
}
