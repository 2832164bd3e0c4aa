// Package logging builds the CLI logger: a text handler on the terminal and,
// when a file path is configured, a JSON handler on that file, fanned out with
// slog-multi.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures New.
type Options struct {
	Writer   io.Writer
	Level    string
	FilePath string
}

// ParseLevel maps debug/info/warn/error to a slog level. Unknown values
// default to info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns the logger and a closer for any opened log file.
func New(opts Options) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(ParseLevel(opts.Level))

	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}),
	}
	closer := func() error { return nil }

	if path := strings.TrimSpace(opts.FilePath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("logging: create log dir: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
		closer = file.Close
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
