package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config contains logging configuration.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string
	// FilePath is the path to the log file. Setup always logs to a file, so
	// an empty path makes Setup fail.
	FilePath string
	// MaxSizeMB is the maximum size in MB before rotation (default: 10).
	MaxSizeMB int
	// MaxFiles is the maximum number of rotated files to keep (default: 3).
	MaxFiles int
	// WriteToStderr whether to also write to stderr (default: true).
	WriteToStderr bool
	// Operation tags every record from this logger with an "op" attribute
	// (e.g. "build", "query", "verify", "tombstone"). corpuskit is a
	// one-shot CLI invoked repeatedly against the same log file rather
	// than a single long-running process, so without this tag the file
	// can't tell which invocation a given line belongs to. Empty means
	// no tag is added.
	Operation string
}

// DefaultConfig returns sensible defaults for file logging.
func DefaultConfig() Config {
	return Config{
		Level:     "info",
		FilePath:  DefaultLogPath(),
		MaxSizeMB: 10,
		// A corpuskit invocation is a single bounded build/query/verify
		// run, not a daemon; keeping the last 3 rotated files (matching
		// internal/config's own MaxBackups) covers the handful of recent
		// runs an operator would actually want to diff, not an
		// open-ended history.
		MaxFiles:      3,
		WriteToStderr: true,
	}
}

// DebugConfig returns configuration for debug mode.
func DebugConfig() Config {
	cfg := DefaultConfig()
	cfg.Level = "debug"
	return cfg
}

// Setup initializes file-based logging and returns a cleanup function.
// The cleanup function should be called to close the log file.
// Returns the configured logger and cleanup function.
func Setup(cfg Config) (*slog.Logger, func(), error) {
	// Ensure log directory exists
	if err := EnsureLogDir(); err != nil {
		return nil, nil, err
	}

	// Create rotating writer
	writer, err := NewRotatingWriter(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxFiles)
	if err != nil {
		return nil, nil, err
	}

	// Build multi-writer if stderr is enabled
	var output io.Writer = writer
	if cfg.WriteToStderr {
		output = io.MultiWriter(writer, os.Stderr)
	}

	// Parse log level
	level := parseLevel(cfg.Level)

	// Create JSON handler for structured logging
	var handler slog.Handler = slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: level,
	})
	if cfg.Operation != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("op", cfg.Operation)})
	}

	logger := slog.New(handler)

	// Cleanup function
	cleanup := func() {
		_ = writer.Sync()
		_ = writer.Close()
	}

	return logger, cleanup, nil
}

// SetupDefault sets up debug-level logging (DebugConfig) with no op tag and sets it as default logger.
// Returns cleanup function.
func SetupDefault() (func(), error) {
	return SetupForOperation(DebugConfig(), "")
}

// SetupForOperation sets up logging tagged with the given corpuskit
// subcommand name (build/query/verify/tombstone) and installs it as the
// default logger, so a single shared log file can be split back out by
// operation later. An empty op adds no "op" attribute.
func SetupForOperation(cfg Config, op string) (func(), error) {
	cfg.Operation = op
	logger, cleanup, err := Setup(cfg)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return cleanup, nil
}

// parseLevel converts string level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LevelFromString converts string level to slog.Level (exported for use by log viewer).
func LevelFromString(level string) slog.Level {
	return parseLevel(level)
}
