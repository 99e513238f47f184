package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfigFile writes YAML content to a temp file and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// An empty file leaves every default in place.
	cfg, err := Load(writeConfigFile(t, ""))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.ID != "meshlink-001" {
		t.Errorf("App.ID = %q, want meshlink-001", cfg.App.ID)
	}
	if cfg.Database.Path != "./data/meshlink.db" || !cfg.Database.WALMode {
		t.Errorf("database defaults wrong: %+v", cfg.Database)
	}
	if cfg.MQTT.Enabled {
		t.Error("MQTT should default to disabled")
	}
	if cfg.MQTT.QoS != 1 {
		t.Errorf("MQTT.QoS = %d, want 1", cfg.MQTT.QoS)
	}
	if cfg.API.Port != 8420 {
		t.Errorf("API.Port = %d, want 8420", cfg.API.Port)
	}
	if cfg.DebugLog.FlushInterval != 2 || cfg.DebugLog.BatchSize != 100 || cfg.DebugLog.RetentionDays != 14 {
		t.Errorf("debug log defaults wrong: %+v", cfg.DebugLog)
	}
	if !cfg.Nodes.StrictBatteryCurve {
		t.Error("Nodes.StrictBatteryCurve should default to true")
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	yaml := `
app:
  id: field-station-7
database:
  path: /var/lib/meshlink/core.db
api:
  port: 9000
  timeouts:
    read: 30
nodes:
  strict_battery_curve: false
`
	cfg, err := Load(writeConfigFile(t, yaml))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.ID != "field-station-7" {
		t.Errorf("App.ID = %q", cfg.App.ID)
	}
	if cfg.Database.Path != "/var/lib/meshlink/core.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d", cfg.API.Port)
	}
	if cfg.GetReadTimeout() != 30*time.Second {
		t.Errorf("read timeout = %v, want 30s", cfg.GetReadTimeout())
	}
	// Unset keys keep their defaults.
	if cfg.GetWriteTimeout() != 15*time.Second {
		t.Errorf("write timeout = %v, want default 15s", cfg.GetWriteTimeout())
	}
	if cfg.Nodes.StrictBatteryCurve {
		t.Error("strict_battery_curve: false not applied")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	yaml := `
database:
  path: /from/yaml.db
mqtt:
  broker:
    host: yaml-broker
`
	t.Setenv("MESHLINK_DATABASE_PATH", "/from/env.db")
	t.Setenv("MESHLINK_MQTT_HOST", "env-broker")
	t.Setenv("MESHLINK_MQTT_USERNAME", "core")
	t.Setenv("MESHLINK_MQTT_PASSWORD", "secret")

	cfg, err := Load(writeConfigFile(t, yaml))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.Path != "/from/env.db" {
		t.Errorf("env override lost: Database.Path = %q", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("env override lost: MQTT host = %q", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Username != "core" || cfg.MQTT.Auth.Password != "secret" {
		t.Errorf("MQTT credentials not applied: %+v", cfg.MQTT.Auth)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	if _, err := Load(writeConfigFile(t, "app: [not a mapping")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:    "missing app id",
			mutate:  func(c *Config) { c.App.ID = "" },
			wantErr: "app.id",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "database.path",
		},
		{
			name:    "qos out of range",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name: "mqtt enabled without host",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Host = ""
			},
			wantErr: "mqtt.broker.host",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.API.Port = 70000 },
			wantErr: "api.port",
		},
		{
			name: "influxdb enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Token = ""
			},
			wantErr: "influxdb.token",
		},
		{
			name:    "negative retention",
			mutate:  func(c *Config) { c.DebugLog.RetentionDays = -1 },
			wantErr: "retention_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := defaultConfig()
	cfg.DebugLog.FlushInterval = 5
	cfg.DebugLog.RetentionDays = 7

	if got := cfg.GetDebugLogFlushInterval(); got != 5*time.Second {
		t.Errorf("flush interval = %v, want 5s", got)
	}
	if got := cfg.GetDebugLogRetention(); got != 7*24*time.Hour {
		t.Errorf("retention = %v, want 168h", got)
	}
	if got := cfg.GetIdleTimeout(); got != 60*time.Second {
		t.Errorf("idle timeout = %v, want 60s", got)
	}
}
