package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Logger defines the sensordb logging contract.
// Implementations should support standard log levels and be safe for concurrent use.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Debug(msg string, args ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts debug, info, warn (or warning) and error.
// An empty string is info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// StdLogger wraps Go's standard logger and drops messages below its level.
type StdLogger struct {
	logger *log.Logger
	level  Level
}

// NewStdLogger creates a new StdLogger writing to stderr at LevelInfo.
func NewStdLogger() *StdLogger {
	return New(os.Stderr, LevelInfo)
}

// New creates a StdLogger writing to w.
func New(w io.Writer, level Level) *StdLogger {
	return &StdLogger{
		logger: log.New(w, "", log.LstdFlags),
		level:  level,
	}
}

// SetLevel changes the minimum level that is written.
func (l *StdLogger) SetLevel(level Level) {
	l.level = level
}

func (l *StdLogger) Info(msg string, args ...any) {
	l.printf(LevelInfo, "[INFO] "+msg, args...)
}

func (l *StdLogger) Warn(msg string, args ...any) {
	l.printf(LevelWarn, "[WARN] "+msg, args...)
}

func (l *StdLogger) Error(msg string, args ...any) {
	l.printf(LevelError, "[ERROR] "+msg, args...)
}

func (l *StdLogger) Debug(msg string, args ...any) {
	l.printf(LevelDebug, "[DEBUG] "+msg, args...)
}

func (l *StdLogger) printf(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	l.logger.Printf(format, args...)
}

// Default provides a global default logger instance using Go's standard logger.
var Default Logger = NewStdLogger()
