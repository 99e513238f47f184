package node

import "time"

// Region identifies the regulatory radio region a node operates in.
type Region string

// Supported radio regions.
const (
	RegionEU868 Region = "eu868"
	RegionUS915 Region = "us915"
	RegionAU915 Region = "au915"
	RegionAS923 Region = "as923"
)

// BatteryPreset identifies a battery chemistry preset used for the
// node's voltage-to-percentage mapping.
type BatteryPreset string

// Battery presets. PresetCustom is a sentinel: a node using it supplies
// its own discharge curve (see Config.BatteryCurve).
const (
	PresetLiIon    BatteryPreset = "liIon"
	PresetLiFe     BatteryPreset = "liFe"
	PresetAlkaline BatteryPreset = "alkaline"
	PresetCustom   BatteryPreset = "custom"
)

// Settings holds free-form, user-tunable extras (UI preferences,
// advert intervals, etc.) that are carried opaquely with the record.
type Settings map[string]any

// Config is the persisted configuration record for one mesh node.
// This matches the database schema in migrations/20260815_120000_initial_schema.up.sql.
//
// A Config is treated as an immutable value per revision: updates go
// through the Mutator, which builds a complete new record via DeepCopy
// rather than mutating fields in place.
type Config struct {
	// Identity
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	PublicKey string `json:"public_key,omitempty"`

	// Radio parameters
	Region          Region  `json:"region"`
	FrequencyMHz    float64 `json:"frequency_mhz"`
	BandwidthKHz    float64 `json:"bandwidth_khz"`
	SpreadingFactor int     `json:"spreading_factor"`
	CodingRate      int     `json:"coding_rate"`
	TxPowerDBm      int     `json:"tx_power_dbm"`

	// Battery preset. BatteryCurve is only meaningful when the preset
	// is PresetCustom: a comma-separated voltage curve such as
	// "3.0,3.3,3.6". Absent otherwise.
	BatteryPreset BatteryPreset `json:"battery_preset"`
	BatteryCurve  *string       `json:"battery_curve,omitempty"`

	// Free-form extras carried unchanged through updates.
	Settings Settings `json:"settings,omitempty"`

	// Metadata
	FirmwareVersion *string `json:"firmware_version,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeepCopy creates a complete independent copy of the Config.
// Map fields and pointer fields are cloned so modifications to the
// copy never leak into the original. Every update builds on a copy,
// which is what keeps a failed save from leaving partial state behind.
func (c *Config) DeepCopy() *Config {
	if c == nil {
		return nil
	}

	cpy := *c // Shallow copy of value fields

	cpy.Settings = deepCopySettings(c.Settings)

	if c.BatteryCurve != nil {
		curve := *c.BatteryCurve
		cpy.BatteryCurve = &curve
	}
	if c.FirmwareVersion != nil {
		fw := *c.FirmwareVersion
		cpy.FirmwareVersion = &fw
	}

	return &cpy
}

// deepCopySettings creates a deep copy of a Settings map.
// Nested maps and slices are recursively copied.
func deepCopySettings(s Settings) Settings {
	if s == nil {
		return nil
	}
	cpy := make(Settings, len(s))
	for k, v := range s {
		cpy[k] = deepCopyValue(v)
	}
	return cpy
}

// deepCopyValue recursively copies a value, handling nested maps and slices.
func deepCopyValue(v any) any {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case map[string]any:
		cpy := make(map[string]any, len(val))
		for k, elem := range val {
			cpy[k] = deepCopyValue(elem)
		}
		return cpy
	case []any:
		cpy := make([]any, len(val))
		for i, elem := range val {
			cpy[i] = deepCopyValue(elem)
		}
		return cpy
	default:
		// Primitives (string, bool, int, float64) are safe to copy by value
		return val
	}
}
