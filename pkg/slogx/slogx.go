package slogx

import (
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
)

// Redacted replaces the value of any attribute whose key is in the redact
// list.
const Redacted = "[REDACTED]"

// DefaultRedactKeys are attribute keys that never reach the log output as is.
var DefaultRedactKeys = []string{
	"password",
	"currentPassword",
	"newPassword",
	"token",
	"authorization",
	"jwt_secret",
	"pepper",
}

type Config struct {
	Service string
	Version string
	Env     string // "dev" adds source locations and defaults Format to text
	Level   string // debug, info, warn, error
	Format  string // json or text

	// RedactKeys overrides DefaultRedactKeys. Matching is case-insensitive
	// and applies at any group depth.
	RedactKeys []string

	// Output defaults to os.Stdout.
	Output io.Writer
}

// New returns a configured slog.Logger and installs it as the default.
func New(cfg Config) *slog.Logger {
	logger := NewWithoutDefault(cfg)
	slog.SetDefault(logger)
	return logger
}

// NewWithoutDefault builds the same logger as New but leaves slog's default
// alone. Tests use it so parallel cases don't fight over the global.
func NewWithoutDefault(cfg Config) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	redact := cfg.RedactKeys
	if redact == nil {
		redact = DefaultRedactKeys
	}

	opts := &slog.HandlerOptions{
		AddSource:   cfg.Env == "dev",
		Level:       parseLevel(cfg.Level),
		ReplaceAttr: redactor(redact),
	}

	var handler slog.Handler
	if useText(cfg) {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}

	var attrs []any
	for _, kv := range [][2]string{
		{"service", cfg.Service},
		{"version", cfg.Version},
		{"env", cfg.Env},
	} {
		if kv[1] != "" {
			attrs = append(attrs, kv[0], kv[1])
		}
	}
	return slog.New(handler).With(attrs...)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func useText(cfg Config) bool {
	switch strings.ToLower(cfg.Format) {
	case "text":
		return true
	case "json":
		return false
	default:
		return cfg.Env == "dev"
	}
}

func redactor(keys []string) func(groups []string, a slog.Attr) slog.Attr {
	if len(keys) == 0 {
		return nil
	}
	lower := make([]string, len(keys))
	for i, k := range keys {
		lower[i] = strings.ToLower(k)
	}

	return func(_ []string, a slog.Attr) slog.Attr {
		if slices.Contains(lower, strings.ToLower(a.Key)) {
			return slog.String(a.Key, Redacted)
		}
		return a
	}
}

// parseLevel maps a string to slog.Level.
func parseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
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
