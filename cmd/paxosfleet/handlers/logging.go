package handlers

import (
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

// Log formats accepted by --log-format.
const (
	LogFormatAuto    = "auto"
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// LogOptions are the global logging flags.
type LogOptions struct {
	Level  string
	Format string
}

// newLogger builds the zap-backed logr.Logger every handler logs through.
// The returned func flushes buffered entries.
func newLogger(opts LogOptions) (logr.Logger, func(), error) {
	level := opts.Level
	if level == "" {
		level = "info"
	}
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var cfg zap.Config
	switch resolveFormat(opts.Format) {
	case LogFormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	case LogFormatJSON:
		cfg = zap.NewProductionConfig()
	default:
		return logr.Discard(), func() {}, fmt.Errorf("invalid log format %q (expected auto, console or json)", opts.Format)
	}
	cfg.Level = atomic

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(zl), func() { _ = zl.Sync() }, nil
}

func resolveFormat(format string) string {
	if format == "" || format == LogFormatAuto {
		if isInteractiveTTY() {
			return LogFormatConsole
		}
		return LogFormatJSON
	}
	return format
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}
