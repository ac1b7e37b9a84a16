// Package logging builds the slog loggers used by kvwire binaries and tests.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

const (
	EnvLogLevel     = "KVWIRE_LOG_LEVEL"
	EnvLogTimestamp = "KVWIRE_LOG_TIMESTAMP"
	EnvLogNoColor   = "KVWIRE_LOG_NOCOLOR"
)

// Options controls the console handler.
type Options struct {
	Level     slog.Level
	NoColor   bool
	Timestamp bool
}

// DefaultOptions logs at info with timestamps, in colour when stderr is a terminal.
func DefaultOptions() Options {
	return Options{
		Level:     slog.LevelInfo,
		NoColor:   !isatty.IsTerminal(os.Stderr.Fd()),
		Timestamp: true,
	}
}

// ApplyEnv overrides opts from KVWIRE_LOG_* environment variables.
func ApplyEnv(opts *Options) {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		opts.Level = lvl
	}
	if v, ok := parseBool(os.Getenv(EnvLogTimestamp)); ok {
		opts.Timestamp = v
	}
	if v, ok := parseBool(os.Getenv(EnvLogNoColor)); ok {
		opts.NoColor = v
	}
}

// New returns a logger writing tinted console output to w.
func New(w io.Writer, opts Options) *slog.Logger {
	if f, ok := w.(*os.File); ok {
		w = colorable.NewColorable(f)
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      opts.Level,
		TimeFormat: "15:04:05.000",
		NoColor:    opts.NoColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if !opts.Timestamp && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name to a slog level. It returns false for empty or
// unknown names.
func ParseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

func parseBool(raw string) (bool, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
