// Package logging configures the logrus logger. The TUI owns the terminal,
// so log output goes to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/mathdrill/internal/config"
)

// Setup opens the configured log file and returns a logger writing to it
// along with a function that closes the file.
func Setup(cfg config.LogConfig) (*logrus.Logger, func() error, error) {
	level := cfg.Level
	if level == "" {
		level = config.DefaultLogLevel
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	path := cfg.File
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return nil, nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	log := New(f, lvl)
	return log, f.Close, nil
}

// New returns a text-formatted logger writing to w.
func New(w io.Writer, lvl logrus.Level) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	return log
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	return New(io.Discard, logrus.PanicLevel)
}

// DefaultPath returns <UserCacheDir>/mathdrill/mathdrill.log.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(dir, "mathdrill", "mathdrill.log"), nil
}
