// Package mdplog is a small leveled wrapper around the standard library's log
// package. The retrieval pack carries no structured-logging dependency in any
// example repo, so this stays on the standard library rather than reaching for
// an out-of-pack import (see DESIGN.md).
package mdplog

import (
	"io"
	"log"
	"os"
)

// Level controls which messages a Logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "SILENT"
	}
}

// Logger wraps a *log.Logger with a minimum emitted level.
type Logger struct {
	level Level
	std   *log.Logger
}

// New returns a Logger writing to w, prefixed with standard date/time flags,
// emitting only messages at or above level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{
		level: level,
		std:   log.New(w, "", log.LstdFlags),
	}
}

// Default returns a Logger writing to stderr at LevelInfo.
func Default() *Logger {
	return New(os.Stderr, LevelInfo)
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.std.Printf("["+level.String()+"] "+format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.log(LevelError, format, args...) }
