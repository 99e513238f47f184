package node

import (
	"errors"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"empty name", func(c *Config) { c.Name = "" }, ErrInvalidName},
		{"name too long", func(c *Config) { c.Name = string(make([]byte, 41)) }, ErrInvalidName},
		{"unknown region", func(c *Config) { c.Region = "moon" }, ErrInvalidRegion},
		{"frequency out of band", func(c *Config) { c.FrequencyMHz = 433.0 }, ErrInvalidRadioParams},
		{"zero bandwidth", func(c *Config) { c.BandwidthKHz = 0 }, ErrInvalidRadioParams},
		{"sf too low", func(c *Config) { c.SpreadingFactor = 6 }, ErrInvalidRadioParams},
		{"sf too high", func(c *Config) { c.SpreadingFactor = 13 }, ErrInvalidRadioParams},
		{"coding rate too high", func(c *Config) { c.CodingRate = 9 }, ErrInvalidRadioParams},
		{"tx power too high", func(c *Config) { c.TxPowerDBm = 31 }, ErrInvalidRadioParams},
		{"unknown preset", func(c *Config) { c.BatteryPreset = "nuclear" }, ErrInvalidPreset},
		{"bad curve", func(c *Config) { curve := "3.6,3.0"; c.BatteryCurve = &curve }, ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("node-1", "Test Node")
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCurve(t *testing.T) {
	valid := []string{"3.0,3.3,3.6", "2.8, 3.1", "1,2,3,4,5"}
	for _, curve := range valid {
		if err := ValidateCurve(curve); err != nil {
			t.Errorf("ValidateCurve(%q) = %v, want nil", curve, err)
		}
	}

	invalid := []string{"", "3.0", "3.0,abc", "3.6,3.0", "3.0,3.0"}
	for _, curve := range invalid {
		if err := ValidateCurve(curve); err == nil {
			t.Errorf("ValidateCurve(%q) = nil, want error", curve)
		}
	}
}

func TestGenerateShortName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Ridge Repeater North", "RRN"},
		{"solar", "S"},
		{"one two three four five", "OTTF"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := GenerateShortName(tt.name); got != tt.want {
			t.Errorf("GenerateShortName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGenerateID_Unique(t *testing.T) {
	a := GenerateID()
	b := GenerateID()
	if a == "" || a == b {
		t.Errorf("ids not unique: %q %q", a, b)
	}
}
