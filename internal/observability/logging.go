// Package observability provides structured logging and optional tracing
// for the Nautex CLI. Log sinks are stderr and/or a file, never stdout:
// when the MCP server runs, stdout belongs to the protocol stream.
package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

const redactedValue = "[REDACTED]"

// Config describes the logger for one CLI invocation.
type Config struct {
	Level          string
	Format         string
	LogFile        string
	StderrMode     string
	InteractiveTTY bool
	SessionID      string
	CommandPath    string
	Version        string
	Commit         string
}

type contextKey struct{}

// WithLogger returns a context carrying the given logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger from ctx, falling back to slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// NewLogger builds a structured logger from cfg. The returned cleanup
// closes any opened log file and must be called on command exit.
func NewLogger(cfg *Config) (*slog.Logger, func() error, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}

	stderrEnabled, err := shouldEnableStderr(cfg.StderrMode, cfg.InteractiveTTY)
	if err != nil {
		return nil, nil, err
	}

	filePath := strings.TrimSpace(cfg.LogFile)
	if !stderrEnabled && filePath == "" {
		return nil, nil, fmt.Errorf("no log sinks configured: set --log-file or enable --log-stderr")
	}

	var sinks []io.Writer
	var logFile *os.File

	if stderrEnabled {
		sinks = append(sinks, os.Stderr)
	}
	if filePath != "" {
		logFile, err = openLogFile(filePath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, logFile)
	}

	cleanup := func() error {
		if logFile == nil {
			return nil
		}
		return logFile.Close()
	}

	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: redactAttr}
	dst := io.MultiWriter(sinks...)

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "json":
		handler = slog.NewJSONHandler(dst, opts)
	case "text":
		handler = slog.NewTextHandler(dst, opts)
	default:
		_ = cleanup()
		return nil, nil, fmt.Errorf("invalid log format: %q (allowed: json, text)", cfg.Format)
	}

	logger := slog.New(handler).With(
		slog.String("session.id", cfg.SessionID),
		slog.String("command.path", cfg.CommandPath),
		slog.String("cli.version", cfg.Version),
		slog.String("cli.commit", cfg.Commit),
	)

	return logger, cleanup, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create log file directory: %w", err)
	}

	file, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// shouldEnableStderr resolves the --log-stderr mode. "auto" keeps stderr
// quiet for interactive commands, where it belongs to prompts.
func shouldEnableStderr(mode string, interactiveTTY bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return !interactiveTTY, nil
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --log-stderr value %q (allowed: auto, on, off)", mode)
	}
}

func parseLevel(level string) (slog.Leveler, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return nil, fmt.Errorf("invalid log level: %q (allowed: error, warn, info, debug)", level)
	}
}

// redactAttr blanks values under sensitive keys so the API token can never
// reach a sink, regardless of call site.
func redactAttr(_ []string, attr slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(attr.Key)) {
		return slog.String(attr.Key, redactedValue)
	}
	return attr
}

var sensitiveFragments = []string{"token", "api_key", "apikey", "secret", "credential", "password"}

func isSensitiveKey(key string) bool {
	if key == "authorization" {
		return true
	}
	for _, fragment := range sensitiveFragments {
		if strings.Contains(key, fragment) {
			return true
		}
	}
	return false
}
