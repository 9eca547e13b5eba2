// Package logging configures the global zerolog logger: human readable
// lines on the console and JSON lines appended to a log file in the XDG
// state directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/NextNodeSolutions/project-generator/pkg/paths"
)

// NoFile disables the log file when used as Options.LogFile
const NoFile = "-"

// Options configures Setup
type Options struct {
	// Verbosity counts -v flags: 0 warn, 1 info, 2 debug, 3+ trace
	Verbosity int
	// Console receives the readable output; defaults to os.Stderr
	Console io.Writer
	// LogFile is appended to; defaults to the state dir log, NoFile disables it
	LogFile string
}

var (
	mu      sync.Mutex
	logFile *os.File
)

// SetupLogger configures the global logger for a CLI run at verbosity
func SetupLogger(verbosity int) {
	Setup(Options{Verbosity: verbosity})
}

// Setup replaces the global logger and returns the log file in use, or ""
// when logging to the console only. A log file opened by an earlier call is
// closed.
func Setup(opts Options) string {
	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(Level(opts.Verbosity))

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    noColor(console),
	}}

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}

	path := opts.LogFile
	if path == "" {
		path = defaultLogFile()
	}
	var fileErr error
	if path != NoFile {
		logFile, fileErr = openLogFile(path)
		if fileErr == nil {
			writers = append(writers, logFile)
		}
	}

	ctx := zerolog.New(io.MultiWriter(writers...)).With().Timestamp()
	if opts.Verbosity >= 2 {
		ctx = ctx.Caller()
	}
	log.Logger = ctx.Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", path).Msg("Failed to open log file, logging to console only")
		path = ""
	}
	if path == NoFile {
		path = ""
	}

	log.Debug().Int("verbosity", opts.Verbosity).Str("logFile", path).Msg("Logger initialized")
	return path
}

// Level maps a -v count to a zerolog level
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}

// GetLogger returns a logger tagged with the component name
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// LogOperationStart logs the start of an operation and returns a function to log its completion
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().
		Str("operation", operation).
		Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}

// noColor is true when w is not a terminal or NO_COLOR is set
func noColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	f, ok := w.(*os.File)
	if !ok {
		return true
	}
	return !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
}

func defaultLogFile() string {
	p, err := paths.New("")
	if err != nil {
		return paths.LogFileName
	}
	return p.LogFilePath()
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
