// Package logging defines the structured logging interface used across reqgate.
//
// Library packages accept a [Logger] and default to [NopLogger], so nothing is
// written unless the caller opts in. Binaries build one with [New]:
//
//	logger := logging.New(os.Stderr, slog.LevelDebug, logging.FormatJSON)
//	m, err := materialize.New(materialize.WithLogger(logger))
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Logger is the subset of *slog.Logger that reqgate packages log through.
// Attributes are alternating key-value pairs:
//
//	logger.Debug("schema cache miss", "model", "User", "size", 12)
//
// zap's SugaredLogger and zerolog can satisfy it with a thin wrapper.
type Logger interface {
	Debug(msg string, attrs ...any)
	Info(msg string, attrs ...any)
	Warn(msg string, attrs ...any)
	Error(msg string, attrs ...any)

	// With returns a Logger that prepends attrs to every record.
	With(attrs ...any) Logger
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any) {}
func (NopLogger) Info(string, ...any) {}
func (NopLogger) Warn(string, ...any) {}
func (NopLogger) Error(string, ...any) {}
func (n NopLogger) With(...any) Logger { return n }

// OrNop returns l, or a NopLogger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}

// SlogAdapter exposes a *slog.Logger as a Logger. The leveled methods come
// straight from the embedded logger; only With needs rewrapping.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter wraps l, falling back to slog.Default() when l is nil.
func NewSlogAdapter(l *slog.Logger) SlogAdapter {
	if l == nil {
		l = slog.Default()
	}
	return SlogAdapter{Logger: l}
}

// With implements Logger.
func (s SlogAdapter) With(attrs ...any) Logger {
	return SlogAdapter{Logger: s.Logger.With(attrs...)}
}

var (
	_ Logger = NopLogger{}
	_ Logger = SlogAdapter{}
)

// Format selects the slog handler used by New.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts "text" or "json", case-insensitively. An empty name is text.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON:
		return f, nil
	default:
		return FormatText, fmt.Errorf("unknown log format %q", name)
	}
}

// New returns a Logger writing records at or above level to w.
func New(w io.Writer, level slog.Level, format Format) Logger {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return SlogAdapter{Logger: slog.New(h)}
}

// ParseLevel converts a level name ("debug", "info", "warn", "error") to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}
