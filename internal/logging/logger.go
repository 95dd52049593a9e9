// Package logging wraps logrus construction for cmd/homer. Core
// packages never reach for a package-level logger; they accept a
// *logrus.Logger via their constructors, matching the teacher's
// internal/storage and internal/risk packages.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Config controls how the process-wide CLI logger is built.
type Config struct {
	Debug      bool
	JSONFormat bool
	OutputFile string
}

// New builds a *logrus.Logger from Config. Output always includes
// stdout; OutputFile, if set, adds a second writer.
func New(cfg Config) (*logrus.Logger, error) {
	logger := logrus.New()

	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.JSONFormat {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	writers := []io.Writer{os.Stdout}
	if cfg.OutputFile != "" {
		dir := filepath.Dir(cfg.OutputFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	logger.SetOutput(io.MultiWriter(writers...))

	return logger, nil
}

// Default returns a logger suitable for library/test use: info level,
// text format, stdout only.
func Default() *logrus.Logger {
	l, _ := New(Config{})
	return l
}
