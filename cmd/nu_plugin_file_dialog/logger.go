package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ldelacroix/nu_plugin_file_dialog/src/config"
	"github.com/lmittmann/tint"
)

// createServeLogger creates a logger that doesn't interfere with the plugin
// protocol by writing to a file instead of stdout/stderr
func createServeLogger(cfg *config.Config) *slog.Logger {
	logFile := cfg.LogFile
	if logFile == "" {
		logFile = config.DefaultLogPath()
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		// If we can't create log directory, use discard logger
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError, // Only show errors
		}))
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// If we can't open log file, use discard logger
		return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	return slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}))
}

// createCLILogger creates a logger for CLI commands that can write to stderr
func createCLILogger(logLevel string) *slog.Logger {
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level: parseLogLevel(logLevel),
	}))
}

// parseLogLevel converts string log level to slog.Level
func parseLogLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
