package debuglog

import (
	"context"
	"log/slog"
)

// Logger records events at both sinks: synchronously to the ephemeral
// sink (the process slog logger) and asynchronously to the durable
// buffer. Each Logger carries fixed subsystem and category tags.
//
// A log call returns once the ephemeral write and the buffer enqueue
// have completed; it never waits for the durable append. When no
// buffer has been bound yet, the event is dropped from durable storage
// and only the ephemeral write happens. Logging surfaces no errors.
type Logger struct {
	eph       *slog.Logger
	subsystem string
	category  string
}

// New creates a dual-sink logger with the given ephemeral sink and tags.
func New(ephemeral *slog.Logger, subsystem, category string) *Logger {
	return &Logger{
		eph:       ephemeral,
		subsystem: subsystem,
		category:  category,
	}
}

// WithCategory returns a new Logger with the same subsystem and
// ephemeral sink but a different category tag.
func (l *Logger) WithCategory(category string) *Logger {
	return &Logger{
		eph:       l.eph,
		subsystem: l.subsystem,
		category:  category,
	}
}

// Debug records a debug-level event.
func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }

// Info records an info-level event.
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args) }

// Notice records a notice-level event.
func (l *Logger) Notice(msg string, args ...any) { l.log(LevelNotice, msg, args) }

// Warning records a warning-level event.
func (l *Logger) Warning(msg string, args ...any) { l.log(LevelWarning, msg, args) }

// Error records an error-level event.
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }

// Fault records a fault-level event.
func (l *Logger) Fault(msg string, args ...any) { l.log(LevelFault, msg, args) }

// Warn records a warning-level event. Alias for Warning, matching the
// logging interfaces used elsewhere in the codebase.
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarning, msg, args) }

// log writes to the ephemeral sink, then hands the event to the shared
// buffer if one is bound.
func (l *Logger) log(level Level, msg string, args []any) {
	if l.eph != nil {
		ephArgs := make([]any, 0, len(args)+4)
		ephArgs = append(ephArgs, "subsystem", l.subsystem, "category", l.category)
		ephArgs = append(ephArgs, args...)
		l.eph.Log(context.Background(), level.SlogLevel(), msg, ephArgs...)
	}

	if b := Shared(); b != nil {
		b.Append(NewEvent(level, l.subsystem, l.category, msg))
	}
}
