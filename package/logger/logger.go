package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel type
type LogLevel int

// Log levels
const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
)

// ParseLogLevel parses a string into a LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l LogLevel) zerolog() zerolog.Level {
	switch l {
	case DEBUG:
		return zerolog.DebugLevel
	case WARNING:
		return zerolog.WarnLevel
	case ERROR:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Logger struct
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(level string) *Logger {
	return NewConsoleLogger(os.Stdout, level)
}

// NewConsoleLogger creates a human-readable logger writing to w
func NewConsoleLogger(w io.Writer, level string) *Logger {
	return NewLoggerWithWriter(zerolog.ConsoleWriter{Out: w, TimeFormat: time.DateTime}, level)
}

// NewLoggerWithWriter creates a JSON logger writing to w
func NewLoggerWithWriter(w io.Writer, level string) *Logger {
	return &Logger{
		logger: zerolog.New(w).Level(ParseLogLevel(level).zerolog()).With().Timestamp().Logger(),
	}
}

// With returns a child logger carrying an extra field
func (l *Logger) With(key, value string) *Logger {
	return &Logger{
		logger: l.logger.With().Str(key, value).Logger(),
	}
}

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info().Msg(msg)
}

// Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.logger.Warn().Msg(msg)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug().Msg(msg)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.logger.Error().Msg(msg)
}
