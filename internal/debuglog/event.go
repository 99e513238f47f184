package debuglog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Level is the severity of a debug log event. Levels form a fixed
// ordered set: debug < info < notice < warning < error < fault.
type Level int

// Severity levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelNotice
	LevelWarning
	LevelError
	LevelFault
)

// slog has no notice or fault levels; these custom values slot into
// its numeric scale (info=0, warn=4, error=8).
const (
	slogLevelNotice = slog.Level(2)
	slogLevelFault  = slog.Level(12)
)

// String returns the lowercase name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelNotice:
		return "notice"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelFault:
		return "fault"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// SlogLevel maps the level onto slog's numeric scale for the ephemeral sink.
func (l Level) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelNotice:
		return slogLevelNotice
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	case LevelFault:
		return slogLevelFault
	default:
		return slog.LevelInfo
	}
}

// MarshalJSON emits the level name, matching the stored form and the
// min_level query parameter.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a level name.
func (l *Level) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	level, ok := ParseLevel(name)
	if !ok {
		return fmt.Errorf("unknown level %q", name)
	}
	*l = level
	return nil
}

// ParseLevel converts a level name to a Level.
// Returns false if the name is not recognised.
func ParseLevel(name string) (Level, bool) {
	switch name {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "notice":
		return LevelNotice, true
	case "warning", "warn":
		return LevelWarning, true
	case "error":
		return LevelError, true
	case "fault":
		return LevelFault, true
	default:
		return LevelInfo, false
	}
}

// Event is a single debug log entry. It is an immutable value: once
// constructed it is either discarded (ephemeral sink only) or appended
// to the durable log, never mutated.
type Event struct {
	// ID is the auto-incremented primary key, set by the store on append.
	ID int64 `json:"id,omitempty"`

	// Time is the timestamp assigned when the event was created (UTC).
	Time time.Time `json:"time"`

	// Level is the event severity.
	Level Level `json:"level"`

	// Subsystem identifies the component that produced the event.
	Subsystem string `json:"subsystem"`

	// Category is a finer-grained tag within the subsystem.
	Category string `json:"category"`

	// Message is the event text.
	Message string `json:"message"`
}

// NewEvent constructs an event stamped with the current time.
func NewEvent(level Level, subsystem, category, message string) Event {
	return Event{
		Time:      time.Now().UTC(),
		Level:     level,
		Subsystem: subsystem,
		Category:  category,
		Message:   message,
	}
}
