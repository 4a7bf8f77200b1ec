// Package logging provides structured logging for both CLI and GUI modes.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const timeFormat = "15:04:05"

// Logger wraps zerolog so that the output can be redirected at runtime (the
// GUI tees it into its log panel).
type Logger struct {
	mu     sync.RWMutex
	zlog   zerolog.Logger
	output io.Writer
	level  zerolog.Level
}

// New creates a logger writing human readable lines to w. A nil w means
// stderr.
func New(w io.Writer, level zerolog.Level) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := &Logger{level: level}
	l.SetOutput(w)
	return l
}

// NewDefault creates an info level logger on stderr.
func NewDefault() *Logger {
	return New(os.Stderr, zerolog.InfoLevel)
}

// ParseLevel accepts zerolog level names ("debug", "info", ...). Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// SetOutput changes the output writer, preserving formatting and level.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w

	out, color := w, false
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		out, color = colorable.NewColorable(f), true
	}
	l.zlog = zerolog.New(zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: timeFormat,
		NoColor:    !color,
	}).Level(l.level).With().Timestamp().Logger()
}

// Output returns the current output writer.
func (l *Logger) Output() io.Writer {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.output
}

// SetLevel changes the minimum level that is written.
func (l *Logger) SetLevel(level zerolog.Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.zlog = l.zlog.Level(level)
}

// Level returns the minimum level that is written.
func (l *Logger) Level() zerolog.Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

func (l *Logger) z() *zerolog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	z := l.zlog
	return &z
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event { return l.z().Info() }

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event { return l.z().Error() }

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event { return l.z().Debug() }

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event { return l.z().Warn() }

// Debugf logs a debug message with printf-style formatting.
// This is only shown when verbose mode is enabled.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.z().Debug().Msgf(format, args...)
}

// Infof logs an info message with printf-style formatting.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.z().Info().Msgf(format, args...)
}

// Warnf logs a warning message with printf-style formatting.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.z().Warn().Msgf(format, args...)
}

// Errorf logs an error message with printf-style formatting.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.z().Error().Msgf(format, args...)
}

// Func adapts the logger to the plain func(string) callbacks the internal
// packages accept. Messages are written at info level, or error level when
// they start with "Error" or "ERROR", tagged with component.
func (l *Logger) Func(component string) func(string) {
	return func(msg string) {
		z := l.z()
		ev := z.Info()
		if strings.HasPrefix(msg, "Error") || strings.HasPrefix(msg, "ERROR") {
			ev = z.Error()
		}
		if component != "" {
			ev = ev.Str("component", component)
		}
		ev.Msg(msg)
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
