package node

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestDB creates an in-memory SQLite database with the nodes table.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	schema := `
		CREATE TABLE nodes (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			short_name TEXT NOT NULL,
			public_key TEXT,
			region TEXT NOT NULL,
			frequency_mhz REAL NOT NULL,
			bandwidth_khz REAL NOT NULL,
			spreading_factor INTEGER NOT NULL,
			coding_rate INTEGER NOT NULL,
			tx_power_dbm INTEGER NOT NULL,
			battery_preset TEXT NOT NULL DEFAULT 'liIon',
			battery_curve TEXT,
			settings TEXT NOT NULL DEFAULT '{}',
			firmware_version TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX idx_nodes_name ON nodes(name);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	cfg := testConfig("node-1", "Hilltop Relay")
	cfg.Settings = Settings{"role": "repeater", "hops": float64(3)}
	fw := "2.5.1"
	cfg.FirmwareVersion = &fw

	if err := store.Create(ctx, cfg); err != nil {
		t.Fatalf("create: %v", err)
	}
	if cfg.CreatedAt.IsZero() || cfg.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on create")
	}

	got, err := store.GetByID(ctx, "node-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Name != "Hilltop Relay" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Region != RegionEU868 {
		t.Errorf("region = %q", got.Region)
	}
	if got.FrequencyMHz != 869.525 {
		t.Errorf("frequency = %v", got.FrequencyMHz)
	}
	if got.BatteryPreset != PresetLiIon {
		t.Errorf("preset = %q", got.BatteryPreset)
	}
	if got.FirmwareVersion == nil || *got.FirmwareVersion != "2.5.1" {
		t.Errorf("firmware = %v", got.FirmwareVersion)
	}
	if got.Settings["role"] != "repeater" {
		t.Errorf("settings = %v", got.Settings)
	}
	if got.Settings["hops"] != float64(3) {
		t.Errorf("settings hops = %v (%T)", got.Settings["hops"], got.Settings["hops"])
	}
}

func TestSQLiteStore_Create_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Create(ctx, testConfig("node-1", "A")); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.Create(ctx, testConfig("node-1", "B"))
	if !errors.Is(err, ErrNodeExists) {
		t.Errorf("err = %v, want ErrNodeExists", err)
	}
}

func TestSQLiteStore_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)

	_, err := store.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	cfg := testConfig("node-1", "Old Name")
	if err := store.Create(ctx, cfg); err != nil {
		t.Fatalf("create: %v", err)
	}

	cfg.Name = "New Name"
	curve := "3.0,3.3,3.6"
	cfg.BatteryPreset = PresetCustom
	cfg.BatteryCurve = &curve

	if err := store.Update(ctx, cfg); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetByID(ctx, "node-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("name = %q", got.Name)
	}
	if got.BatteryCurve == nil || *got.BatteryCurve != "3.0,3.3,3.6" {
		t.Errorf("curve = %v", got.BatteryCurve)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Errorf("updated_at %v before created_at %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestSQLiteStore_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)

	err := store.Update(context.Background(), testConfig("missing", "X"))
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestSQLiteStore_List(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	for _, name := range []string{"Charlie", "Alpha", "Bravo"} {
		cfg := testConfig("node-"+name, name)
		if err := store.Create(ctx, cfg); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	configs, err := store.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(configs) != 3 {
		t.Fatalf("len = %d, want 3", len(configs))
	}

	// Ordered by name
	want := []string{"Alpha", "Bravo", "Charlie"}
	for i, w := range want {
		if configs[i].Name != w {
			t.Errorf("configs[%d].Name = %q, want %q", i, configs[i].Name, w)
		}
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Create(ctx, testConfig("node-1", "A")); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, "node-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	_, err := store.GetByID(ctx, "node-1")
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("get after delete: %v, want ErrNodeNotFound", err)
	}

	if err := store.Delete(ctx, "node-1"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("second delete: %v, want ErrNodeNotFound", err)
	}
}

func TestSQLiteStore_MutatorIntegration(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteStore(db)
	ctx := context.Background()

	if err := store.Create(ctx, testConfig("node-1", "Field Node")); err != nil {
		t.Fatalf("create: %v", err)
	}

	m := NewMutator(store, true)
	updated, err := m.Apply(ctx, "node-1", FieldUpdate{
		BatteryPreset: presetPtr(PresetCustom),
		BatteryCurve:  strPtr("3.0,3.3,3.6"),
		Settings:      Settings{"telemetry_interval": 60},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.BatteryPreset != PresetCustom {
		t.Errorf("preset = %q", updated.BatteryPreset)
	}

	got, err := store.GetByID(ctx, "node-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.BatteryCurve == nil || *got.BatteryCurve != "3.0,3.3,3.6" {
		t.Errorf("persisted curve = %v", got.BatteryCurve)
	}
	if got.Settings["telemetry_interval"] != float64(60) {
		t.Errorf("persisted settings = %v", got.Settings)
	}
}
