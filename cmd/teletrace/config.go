package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Output kinds
const (
	outputWindow   = "window"
	outputTerminal = "terminal"
	outputHeadless = "headless"
)

// flags is the command line, the overlay settings live in the config file
type flags struct {
	// backend is the source name from list-sources
	backend string
	// file is the recording played by file backed sources
	file string
	// loop restarts a recording when it ends
	loop bool
	// configPath is the YAML config file
	configPath string
	// output is where frames are shown
	output string
	// geometry draws traces without the scroll compositor
	geometry bool
	// ticks is the number of host ticks a headless run lasts
	ticks int
	// tickRate is the host tick rate, in Hz
	tickRate int
	// png is the file the last headless frame is written to
	png string
	// logLevel is one of error, warn, info or debug
	logLevel string
}

func newZeroFlags() flags {
	return flags{
		backend:    "synthetic",
		configPath: defaultConfigPath(),
		output:     outputWindow,
		ticks:      600,
		tickRate:   60,
		logLevel:   "info",
	}
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "teletrace.yaml"
	}

	return filepath.Join(dir, AppName, "config.yaml")
}

func (f *flags) validate() error {
	switch f.output {
	case outputWindow, outputTerminal, outputHeadless:
	default:
		return errors.Errorf("unknown output %q (window, terminal or headless)", f.output)
	}

	if f.tickRate < 1 {
		return errors.New("tick rate too low (1 min)")
	}

	if f.output == outputHeadless && f.ticks < 1 {
		return errors.New("headless run needs at least one tick")
	}

	return nil
}

// parseLogLevel reads error, warn, info or debug.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	default:
		return 0, errors.Errorf("invalid log level: %s (must be error, warn, info, or debug)", level)
	}
}

func setupLogger(w io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
