package node

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store defines the interface for node configuration persistence.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Store interface {
	// GetByID retrieves a node configuration by its unique identifier.
	// Returns ErrNodeNotFound if the node does not exist.
	GetByID(ctx context.Context, id string) (*Config, error)

	// List retrieves all node configurations, ordered by name.
	List(ctx context.Context) ([]Config, error)

	// Create inserts a new node configuration.
	// Returns ErrNodeExists if a node with the same ID already exists.
	Create(ctx context.Context, cfg *Config) error

	// Update atomically replaces the stored record for cfg's identifier.
	// A failed update leaves the prior record intact.
	// Returns ErrNodeNotFound if the node does not exist.
	Update(ctx context.Context, cfg *Config) error

	// Delete removes a node configuration by ID.
	// Returns ErrNodeNotFound if the node does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed store.
// The db parameter should be an open SQLite connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const configColumns = `id, name, short_name, public_key, region, frequency_mhz,
	bandwidth_khz, spreading_factor, coding_rate, tx_power_dbm,
	battery_preset, battery_curve, settings, firmware_version,
	created_at, updated_at`

// GetByID retrieves a node configuration by its unique identifier.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Config, error) {
	query := fmt.Sprintf("SELECT %s FROM nodes WHERE id = ?", configColumns)

	row := s.db.QueryRowContext(ctx, query, id)
	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNodeNotFound
		}
		return nil, fmt.Errorf("querying node by id: %w", err)
	}
	return cfg, nil
}

// List retrieves all node configurations.
func (s *SQLiteStore) List(ctx context.Context) ([]Config, error) {
	query := fmt.Sprintf("SELECT %s FROM nodes ORDER BY name", configColumns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying nodes: %w", err)
	}
	defer rows.Close()

	var configs []Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning node: %w", err)
		}
		configs = append(configs, *cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating nodes: %w", err)
	}

	return configs, nil
}

// Create inserts a new node configuration.
func (s *SQLiteStore) Create(ctx context.Context, cfg *Config) error {
	settingsJSON, err := json.Marshal(orEmptySettings(cfg.Settings))
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}

	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO nodes (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		configColumns)

	_, err = s.db.ExecContext(ctx, query,
		cfg.ID,
		cfg.Name,
		cfg.ShortName,
		nullableString(cfg.PublicKey),
		string(cfg.Region),
		cfg.FrequencyMHz,
		cfg.BandwidthKHz,
		cfg.SpreadingFactor,
		cfg.CodingRate,
		cfg.TxPowerDBm,
		string(cfg.BatteryPreset),
		nullableStringPtr(cfg.BatteryCurve),
		string(settingsJSON),
		nullableStringPtr(cfg.FirmwareVersion),
		cfg.CreatedAt.Format(time.RFC3339),
		cfg.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrNodeExists
		}
		return fmt.Errorf("inserting node: %w", err)
	}

	return nil
}

// Update atomically replaces an existing node configuration.
// The single UPDATE statement means the store never exposes a
// partially written record.
func (s *SQLiteStore) Update(ctx context.Context, cfg *Config) error {
	settingsJSON, err := json.Marshal(orEmptySettings(cfg.Settings))
	if err != nil {
		return fmt.Errorf("marshalling settings: %w", err)
	}

	cfg.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE nodes SET
			name = ?, short_name = ?, public_key = ?, region = ?,
			frequency_mhz = ?, bandwidth_khz = ?, spreading_factor = ?,
			coding_rate = ?, tx_power_dbm = ?, battery_preset = ?,
			battery_curve = ?, settings = ?, firmware_version = ?, updated_at = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		cfg.Name,
		cfg.ShortName,
		nullableString(cfg.PublicKey),
		string(cfg.Region),
		cfg.FrequencyMHz,
		cfg.BandwidthKHz,
		cfg.SpreadingFactor,
		cfg.CodingRate,
		cfg.TxPowerDBm,
		string(cfg.BatteryPreset),
		nullableStringPtr(cfg.BatteryCurve),
		string(settingsJSON),
		nullableStringPtr(cfg.FirmwareVersion),
		cfg.UpdatedAt.Format(time.RFC3339),
		cfg.ID,
	)
	if err != nil {
		return fmt.Errorf("updating node: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNodeNotFound
	}

	return nil
}

// Delete removes a node configuration by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting node: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNodeNotFound
	}

	return nil
}

// rowScanner is an interface that sql.Row and sql.Rows both implement.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanConfig scans a row or rows result into a Config.
func scanConfig(scanner rowScanner) (*Config, error) {
	var c Config
	var publicKey, batteryCurve, firmwareVersion sql.NullString
	var region, preset string
	var settingsJSON string
	var createdAt, updatedAt string

	err := scanner.Scan(
		&c.ID,
		&c.Name,
		&c.ShortName,
		&publicKey,
		&region,
		&c.FrequencyMHz,
		&c.BandwidthKHz,
		&c.SpreadingFactor,
		&c.CodingRate,
		&c.TxPowerDBm,
		&preset,
		&batteryCurve,
		&settingsJSON,
		&firmwareVersion,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Region = Region(region)
	c.BatteryPreset = BatteryPreset(preset)

	if publicKey.Valid {
		c.PublicKey = publicKey.String
	}
	if batteryCurve.Valid {
		c.BatteryCurve = &batteryCurve.String
	}
	if firmwareVersion.Valid {
		c.FirmwareVersion = &firmwareVersion.String
	}

	var parseErr error
	c.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	c.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}

	if err := json.Unmarshal([]byte(settingsJSON), &c.Settings); err != nil {
		return nil, fmt.Errorf("unmarshalling settings: %w", err)
	}
	if len(c.Settings) == 0 {
		c.Settings = nil
	}

	return &c, nil
}

// orEmptySettings substitutes an empty map for nil so the settings
// column always holds a JSON object.
func orEmptySettings(s Settings) Settings {
	if s == nil {
		return Settings{}
	}
	return s
}

// nullableString returns a sql.NullString for optional string values.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullableStringPtr returns a sql.NullString for optional string pointers.
func nullableStringPtr(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// isUniqueConstraintError checks if an error is a SQLite unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
