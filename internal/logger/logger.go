// internal/logger/logger.go
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Config selects the log destinations.
type Config struct {
	File       string // empty = console only
	MaxSizeMB  int
	MaxBackups int
	Verbose    bool
}

// Logger writes "<time> - <LEVEL> - <message>" lines.
// A nil *Logger discards everything.
type Logger struct {
	out     *log.Logger
	verbose bool
	now     func() time.Time
}

// New creates a logger writing to w.
func New(w io.Writer, verbose bool) *Logger {
	return &Logger{
		out:     log.New(w, "", 0),
		verbose: verbose,
		now:     time.Now,
	}
}

// Open builds a console logger, tee'd into a rotating file when cfg.File is set.
// The returned closer releases the file.
func Open(cfg Config) (*Logger, io.Closer, error) {
	if cfg.File == "" {
		return New(os.Stderr, cfg.Verbose), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logger: create log dir: %w", err)
	}

	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 10
	}
	backups := cfg.MaxBackups
	if backups <= 0 {
		backups = 5
	}

	rot := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: backups,
	}

	l := New(io.MultiWriter(os.Stderr, rot), cfg.Verbose)
	l.Infof("Logging to file: %s", cfg.File)
	return l, rot, nil
}

// Discard returns a logger that drops every line.
func Discard() *Logger {
	return New(io.Discard, false)
}

func (l *Logger) Debugf(format string, args ...any) {
	if l == nil || !l.verbose {
		return
	}
	l.write("DEBUG", format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.write("INFO", format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.write("WARNING", format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.write("ERROR", format, args...)
}

// Verbose reports whether debug lines are emitted.
func (l *Logger) Verbose() bool {
	return l != nil && l.verbose
}

func (l *Logger) write(level, format string, args ...any) {
	if l == nil {
		return
	}
	l.out.Printf("%s - %s - %s", l.now().Format(timeLayout), level, fmt.Sprintf(format, args...))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
