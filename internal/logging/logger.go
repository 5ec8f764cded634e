package logging

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config captures the settings needed to configure a slog logger.
type Config struct {
	// Level is the textual log level (debug, info, warn, error).
	Level string
	// Format is json or text.
	Format string
	// AddSource toggles slog's source attribution.
	AddSource bool
}

// ParseLevel converts textual levels into slog levels, defaulting to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a slog.Logger for w.
func New(w io.Writer, cfg Config) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level), AddSource: cfg.AddSource}
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Setup opens a dated log file in dir and returns a logger writing to both
// stdout and that file.  The standard library logger is redirected as well so
// echo's startup banner and third-party log calls end up in the same place.
// The caller owns the returned file.
func Setup(dir string, cfg Config) (*os.File, *slog.Logger, error) {
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	name := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	w := io.MultiWriter(os.Stdout, f)
	log.SetOutput(w)
	log.SetFlags(0)
	return f, New(w, cfg), nil
}
