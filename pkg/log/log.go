// Package log wraps the standard library logger with named loggers, levels
// and key/value fields.
//
// Each component asks for its own logger:
//
//	l := log.ForService("api")
//	l.Infof("listening on %s", addr)
//	l.With("req", id).Debugf("upstream status %d", code)
//
// Lines are rendered as "LEVEL [name>] message" (or "LEVEL [name> k=v] message"
// when fields are attached). Debug lines are dropped unless debug is enabled
// globally (SetGlobalDebug) or for the logger's name (EnableDebugFor).
//
// The package name collides with stdlib "log"; alias one of them when both
// are needed.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level names.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelDebug = "DEBUG"
)

// Logger is a named logger. Loggers returned by With share the parent's
// output and debug switch.
type Logger struct {
	name   string
	fields string
	std    *log.Logger
}

// writerHolder keeps the concrete type stored in atomic.Value constant.
type writerHolder struct {
	w io.Writer
}

var (
	globalDebug  atomic.Bool
	serviceDebug sync.Map // map[string]*atomic.Bool
	loggers      sync.Map // map[string]*Logger
	outputWriter atomic.Value
)

func init() {
	outputWriter.Store(writerHolder{w: os.Stderr})
}

// ForService returns the memoized logger for name.
func ForService(name string) *Logger {
	if name == "" {
		name = "unknown"
	}
	if l, ok := loggers.Load(name); ok {
		return l.(*Logger)
	}
	current := outputWriter.Load().(writerHolder).w
	logger := &Logger{
		name: name,
		std:  log.New(current, "", log.LstdFlags|log.Lmicroseconds),
	}
	actual, _ := loggers.LoadOrStore(name, logger)
	return actual.(*Logger)
}

// With returns a child logger that prints key=value after the name.
// Values containing spaces are quoted.
func (l *Logger) With(key string, value any) *Logger {
	v := fmt.Sprint(value)
	if strings.ContainsAny(v, " \t\"") {
		v = fmt.Sprintf("%q", v)
	}
	fields := key + "=" + v
	if l.fields != "" {
		fields = l.fields + " " + fields
	}
	return &Logger{name: l.name, fields: fields, std: l.std}
}

// SetGlobalDebug enables or disables debug logging for every logger.
func SetGlobalDebug(enabled bool) {
	globalDebug.Store(enabled)
}

// GlobalDebug reports whether debug logging is enabled globally.
func GlobalDebug() bool {
	return globalDebug.Load()
}

// EnableDebugFor enables debug logging for one logger name.
func EnableDebugFor(name string) {
	if name == "" {
		return
	}
	val, _ := serviceDebug.LoadOrStore(name, &atomic.Bool{})
	val.(*atomic.Bool).Store(true)
}

// DisableDebugFor disables a per-name debug override.
func DisableDebugFor(name string) {
	if name == "" {
		return
	}
	if val, ok := serviceDebug.Load(name); ok {
		val.(*atomic.Bool).Store(false)
	}
}

// DebugEnabledFor reports whether debug lines for name are printed.
func DebugEnabledFor(name string) bool {
	if globalDebug.Load() {
		return true
	}
	if val, ok := serviceDebug.Load(name); ok {
		return val.(*atomic.Bool).Load()
	}
	return false
}

// SetOutput redirects all loggers, existing and future, to w.
func SetOutput(w io.Writer) {
	if w == nil {
		return
	}
	outputWriter.Store(writerHolder{w: w})
	loggers.Range(func(_, v any) bool {
		v.(*Logger).std.SetOutput(w)
		return true
	})
}

func (l *Logger) prefix() string {
	if l.fields == "" {
		return "[" + l.name + ">]"
	}
	return "[" + l.name + "> " + l.fields + "]"
}

func (l *Logger) output(level, msg string) {
	l.std.Println(level + " " + l.prefix() + " " + msg)
}

// Infof logs at INFO.
func (l *Logger) Infof(format string, args ...any) {
	l.output(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf logs at WARN.
func (l *Logger) Warnf(format string, args ...any) {
	l.output(LevelWarn, fmt.Sprintf(format, args...))
}

// Errorf logs at ERROR.
func (l *Logger) Errorf(format string, args ...any) {
	l.output(LevelError, fmt.Sprintf(format, args...))
}

// Debugf logs at DEBUG when debug is enabled for this logger's name.
func (l *Logger) Debugf(format string, args ...any) {
	if !DebugEnabledFor(l.name) {
		return
	}
	l.output(LevelDebug, fmt.Sprintf(format, args...))
}
