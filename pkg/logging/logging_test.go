package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NextNodeSolutions/project-generator/pkg/paths"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			t.Setenv(paths.EnvStateDir, tempDir)

			SetupLogger(tt.verbosity)
			t.Cleanup(func() { Setup(Options{LogFile: NoFile}) })

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())

			logPath := filepath.Join(tempDir, paths.LogFileName)
			_, err := os.Stat(logPath)
			assert.NoError(t, err, "log file should be created at %s", logPath)
		})
	}
}

func TestSetupWritesConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "logs", "run.log")

	got := Setup(Options{Verbosity: 2, Console: &console, LogFile: logPath})
	t.Cleanup(func() { Setup(Options{LogFile: NoFile}) })
	assert.Equal(t, logPath, got)

	logger := GetLogger("resolver")
	logger.Info().Str("template", "packages/library").Msg("Resolved generation context")

	assert.Contains(t, console.String(), "Resolved generation context")
	assert.NotContains(t, console.String(), "\x1b[", "a buffer is not a terminal")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"resolver"`)
	assert.Contains(t, string(data), `"template":"packages/library"`)
	assert.Contains(t, string(data), `"caller":`)
}

func TestSetupSwitchesLogFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	Setup(Options{Verbosity: 1, Console: &bytes.Buffer{}, LogFile: first})
	log.Info().Msg("one")
	Setup(Options{Verbosity: 1, Console: &bytes.Buffer{}, LogFile: second})
	log.Info().Msg("two")
	t.Cleanup(func() { Setup(Options{LogFile: NoFile}) })

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Contains(t, string(a), "one")
	assert.NotContains(t, string(a), "two")
	assert.Contains(t, string(b), "two")
}

func TestSetupWithoutFile(t *testing.T) {
	var console bytes.Buffer
	got := Setup(Options{Console: &console, LogFile: NoFile})
	assert.Empty(t, got)

	log.Warn().Msg("console only")
	assert.Contains(t, console.String(), "console only")
}

func TestSetupUnwritableFileFallsBackToConsole(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	var console bytes.Buffer
	got := Setup(Options{Console: &console, LogFile: filepath.Join(blocker, "run.log")})
	t.Cleanup(func() { Setup(Options{LogFile: NoFile}) })

	assert.Empty(t, got)
	assert.Contains(t, console.String(), "Failed to open log file")
}

func TestLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, Level(-1))
	assert.Equal(t, zerolog.InfoLevel, Level(1))
	assert.Equal(t, zerolog.TraceLevel, Level(9))
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	logger := GetLogger("resolver")
	logger.Info().Msg("test message")

	assert.Contains(t, buf.String(), `"component":"resolver"`)
	assert.Contains(t, buf.String(), "test message")
}

func TestLogOperationStart(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	done := LogOperationStart(logger, "substitute")
	done()

	output := buf.String()
	assert.Equal(t, 2, strings.Count(output, `"operation":"substitute"`))
	assert.Contains(t, output, "Operation completed")
}
