package debuglog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	defaultRecentLimit = 50
	maxRecentLimit     = 200
)

// Filter controls which debug log events Recent returns.
type Filter struct {
	Subsystem string // optional: filter by producing subsystem
	Category  string // optional: filter by category tag
	MinLevel  *Level // optional: only events at or above this level
	Limit     int    // default 50, max 200
}

// Repository stores and retrieves debug log events.
//
// The debug log is append-only: rows are inserted in submission order
// and never updated. Implementations must be thread-safe and use UTC
// timestamps.
type Repository interface {
	// Append inserts a single event.
	Append(ctx context.Context, e Event) error

	// AppendBatch inserts events in order within one transaction.
	AppendBatch(ctx context.Context, events []Event) error

	// Recent returns events matching the filter, newest first.
	Recent(ctx context.Context, filter Filter) ([]Event, error)

	// Prune deletes events older than the given duration and returns
	// the number of rows removed.
	Prune(ctx context.Context, olderThan time.Duration) (int64, error)
}

// SQLiteRepository implements Repository using the debug_log table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite debug log repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Append inserts a single event.
func (r *SQLiteRepository) Append(ctx context.Context, e Event) error {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO debug_log (ts, level, subsystem, category, message) VALUES (?, ?, ?, ?, ?)",
		ts.UTC().Format(time.RFC3339Nano),
		e.Level.String(),
		e.Subsystem,
		e.Category,
		e.Message,
	)
	if err != nil {
		return fmt.Errorf("inserting debug log event: %w", err)
	}

	return nil
}

// AppendBatch inserts events in submission order within one transaction,
// so a batch is either fully persisted or not at all.
func (r *SQLiteRepository) AppendBatch(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting debug log transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op if committed

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO debug_log (ts, level, subsystem, category, message) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing debug log insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		ts := e.Time
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		if _, err := stmt.ExecContext(ctx,
			ts.UTC().Format(time.RFC3339Nano),
			e.Level.String(),
			e.Subsystem,
			e.Category,
			e.Message,
		); err != nil {
			return fmt.Errorf("inserting debug log event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing debug log batch: %w", err)
	}

	return nil
}

// Recent returns events matching the filter, ordered newest first.
func (r *SQLiteRepository) Recent(ctx context.Context, filter Filter) ([]Event, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	// Build WHERE clause dynamically from parameterised conditions.
	var conditions []string
	var args []any

	if filter.Subsystem != "" {
		conditions = append(conditions, "subsystem = ?")
		args = append(args, filter.Subsystem)
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.MinLevel != nil {
		levels := levelNamesFrom(*filter.MinLevel)
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(levels)), ",")
		conditions = append(conditions, "level IN ("+placeholders+")")
		for _, name := range levels {
			args = append(args, name)
		}
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf( //nolint:gosec // WHERE built from parameterised conditions, not user input
		"SELECT id, ts, level, subsystem, category, message FROM debug_log %s ORDER BY id DESC LIMIT ?",
		where,
	)
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying debug log: %w", err)
	}
	defer rows.Close()

	events := make([]Event, 0, limit)
	for rows.Next() {
		var e Event
		var ts, levelName string

		if err := rows.Scan(&e.ID, &ts, &levelName, &e.Subsystem, &e.Category, &e.Message); err != nil {
			return nil, fmt.Errorf("scanning debug log event: %w", err)
		}

		level, ok := ParseLevel(levelName)
		if !ok {
			return nil, fmt.Errorf("unknown debug log level %q", levelName)
		}
		e.Level = level

		timestamp, err := parseEventTimestamp(ts)
		if err != nil {
			return nil, err
		}
		e.Time = timestamp

		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating debug log: %w", err)
	}

	return events, nil
}

// Prune deletes events older than the given duration.
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM debug_log WHERE ts < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting debug log events: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// levelNamesFrom returns the names of all levels at or above min.
func levelNamesFrom(min Level) []string {
	var names []string
	for l := min; l <= LevelFault; l++ {
		names = append(names, l.String())
	}
	return names
}

// parseEventTimestamp parses a timestamp stored in SQLite.
func parseEventTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("ts is empty")
	}

	timestamp, err := time.Parse(time.RFC3339Nano, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing ts: %w", err)
}
