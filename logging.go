// Structured logging for the runtime. Adapted from the teacher's
// package-level Logger/LogEntry design (logging.go in go-eventloop), but
// the default implementation is backed by the real logiface/stumpy stack
// (github.com/joeycumines/logiface, github.com/joeycumines/stumpy) instead
// of a hand-rolled JSON/pretty formatter.
package tsruntime

import (
	"os"
	"time"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// LogLevel mirrors the teacher's four-level scheme, mapped onto logiface's
// syslog-derived [logiface.Level] by [stumpyLogger].
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
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
		return "UNKNOWN"
	}
}

// LogEntry is a structured log record. Category names the subsystem
// emitting it: "gc", "timer", "console", "runtime".
type LogEntry struct {
	Level     LogLevel
	Category  string
	RuntimeID uint64
	TimerID   uint64
	Message   string
	Err       error
	Fields    map[string]any
	Timestamp time.Time
}

// Logger is the structured logging interface consumed by the heap,
// collector, timer service, Console, and Runtime.Close. The promise engine
// and loader do not log.
type Logger interface {
	Log(entry LogEntry)
	IsEnabled(level LogLevel) bool
}

// noOpLogger discards everything; this is the default (matching the
// teacher's NewNoOpLogger).
type noOpLogger struct{}

// NewNoOpLogger returns a [Logger] that discards all entries.
func NewNoOpLogger() Logger { return noOpLogger{} }

func (noOpLogger) Log(LogEntry)          {}
func (noOpLogger) IsEnabled(LogLevel) bool { return false }

// stumpyLogger implements [Logger] over a logiface.Logger[*stumpy.Event],
// the pack's model structured-logging backend.
type stumpyLogger struct {
	min    LogLevel
	logger *logiface.Logger[*stumpy.Event]
}

// NewStumpyLogger returns a [Logger] that writes newline-delimited JSON to w
// via logiface/stumpy, logging at or above min.
func NewStumpyLogger(w *os.File, min LogLevel) Logger {
	if w == nil {
		w = os.Stderr
	}
	return &stumpyLogger{
		min:    min,
		logger: stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(w))),
	}
}

func (l *stumpyLogger) IsEnabled(level LogLevel) bool { return level >= l.min }

func (l *stumpyLogger) Log(entry LogEntry) {
	if !l.IsEnabled(entry.Level) {
		return
	}
	var b *logiface.Builder[*stumpy.Event]
	switch entry.Level {
	case LevelDebug:
		b = l.logger.Debug()
	case LevelInfo:
		b = l.logger.Info()
	case LevelWarn:
		b = l.logger.Warning()
	default:
		b = l.logger.Err()
	}
	b = b.Str("category", entry.Category)
	if entry.RuntimeID != 0 {
		b = b.Int("runtime", int(entry.RuntimeID))
	}
	if entry.TimerID != 0 {
		b = b.Int("timer", int(entry.TimerID))
	}
	for k, v := range entry.Fields {
		b = b.Any(k, v)
	}
	if entry.Err != nil {
		b = b.Err(entry.Err)
	}
	b.Log(entry.Message)
}
