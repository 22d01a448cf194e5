package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmorel/voyago/internal/config"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestSetupWritesToFileWithAppAttr(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "voyago.log")
	logger, closeFn, err := Setup(&config.Config{LogLevel: "info", LogFile: logFile})
	require.NoError(t, err)

	logger.Info("hello")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"app":"voyago"`)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestSetupLevelFiltersDebug(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "voyago.log")
	logger, closeFn, err := Setup(&config.Config{LogLevel: "warn", LogFile: logFile})
	require.NoError(t, err)

	logger.Debug("quiet")
	logger.Warn("loud")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "quiet")
	assert.Contains(t, string(data), "loud")
}

func TestSetupBadLogFile(t *testing.T) {
	// A directory path cannot be opened for appending
	_, _, err := Setup(&config.Config{LogLevel: "info", LogFile: t.TempDir()})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "log file"))
}
