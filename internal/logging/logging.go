// Package logging configures the global zerolog logger: a console writer on
// stderr plus an append-only log file under the XDG state directory.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logFile is kept open for the lifetime of the process.
var logFile *os.File

// SetupLogger configures the global logger based on verbosity
// (0 warn, 1 info, 2 debug, 3+ trace).
func SetupLogger(verbosity int) {
	SetupLoggerTo(os.Stderr, LogFilePath(), verbosity)
}

// SetupLoggerTo is SetupLogger with explicit console and file targets.
// An empty filePath disables file logging.
func SetupLoggerTo(console io.Writer, filePath string, verbosity int) {
	zerolog.SetGlobalLevel(levelFor(verbosity))

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
	}}

	var fileErr error
	if filePath != "" {
		if logFile != nil {
			logFile.Close()
			logFile = nil
		}
		logFile, fileErr = openLogFile(filePath)
		if fileErr == nil {
			writers = append(writers, logFile)
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()

	if fileErr != nil {
		log.Warn().Err(fileErr).Str("path", filePath).Msg("Failed to open log file, logging to console only")
	}

	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}

	log.Debug().Int("verbosity", verbosity).Str("logFile", filePath).Msg("Logger initialized")
}

func levelFor(verbosity int) zerolog.Level {
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

// LogFilePath returns $XDG_STATE_HOME/modkit/modkit.log.
func LogFilePath() string {
	return filepath.Join(xdg.StateHome, "modkit", "modkit.log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// GetLogger returns a logger tagged with component=name.
func GetLogger(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// DebugPrintf adapts the global logger to printf-style debug hooks.
func DebugPrintf(component string) func(format string, args ...any) {
	return func(format string, args ...any) {
		log.Debug().Str("component", component).Msgf(format, args...)
	}
}

// LogOperationStart logs the start of an operation and returns a function
// that logs its completion with the elapsed time.
func LogOperationStart(logger zerolog.Logger, operation string) func() {
	start := time.Now()
	logger.Debug().Str("operation", operation).Msg("Operation started")

	return func() {
		logger.Debug().
			Str("operation", operation).
			Dur("duration", time.Since(start)).
			Msg("Operation completed")
	}
}
