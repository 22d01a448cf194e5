// Package logging builds the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tmorel/voyago/internal/config"
)

// Setup creates the voyago logger from the loaded configuration:
// JSON records tagged with an "app" attribute, written to stderr and,
// when cfg.LogFile is set, appended to that file as well. The logger
// is installed as the slog default. Callers must defer the returned
// close func; it is a no-op unless a log file was opened.
func Setup(cfg *config.Config) (*slog.Logger, func() error, error) {
	out := io.Writer(os.Stderr)
	closeFn := func() error { return nil }

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = io.MultiWriter(os.Stderr, f)
		closeFn = f.Close
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)})
	logger := slog.New(handler).With("app", "voyago")
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// parseLevel accepts the four slog level names, case-insensitively.
// Anything unrecognized falls back to info rather than failing startup.
func parseLevel(s string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
