package node

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Validation constants.
const (
	maxNameLength      = 40
	maxShortNameLength = 4

	minSpreadingFactor = 7
	maxSpreadingFactor = 12
	minCodingRate      = 5
	maxCodingRate      = 8
	minTxPowerDBm      = 1
	maxTxPowerDBm      = 30

	// Size limit for the free-form settings map.
	maxSettingsKeys = 50
)

// frequencyRange bounds the legal carrier frequency for a region, in MHz.
type frequencyRange struct {
	min float64
	max float64
}

// regionFrequencies holds per-region frequency bounds.
var regionFrequencies = map[Region]frequencyRange{
	RegionEU868: {min: 863.0, max: 870.0},
	RegionUS915: {min: 902.0, max: 928.0},
	RegionAU915: {min: 915.0, max: 928.0},
	RegionAS923: {min: 915.0, max: 928.0},
}

// validPresets is the battery preset whitelist.
var validPresets = map[BatteryPreset]struct{}{
	PresetLiIon:    {},
	PresetLiFe:     {},
	PresetAlkaline: {},
	PresetCustom:   {},
}

// ValidateConfig performs comprehensive validation on a node configuration.
// Returns an error describing the first validation failure found.
func ValidateConfig(c *Config) error {
	if c == nil {
		return ErrInvalidConfig
	}

	if err := ValidateName(c.Name); err != nil {
		return err
	}
	if len(c.ShortName) > maxShortNameLength {
		return fmt.Errorf("%w: short name exceeds %d characters", ErrInvalidName, maxShortNameLength)
	}

	if err := ValidateRadioParams(c); err != nil {
		return err
	}

	if err := ValidatePreset(c.BatteryPreset); err != nil {
		return err
	}
	if c.BatteryCurve != nil {
		if err := ValidateCurve(*c.BatteryCurve); err != nil {
			return err
		}
	}

	if len(c.Settings) > maxSettingsKeys {
		return fmt.Errorf("%w: settings exceed max keys (%d)", ErrInvalidConfig, maxSettingsKeys)
	}

	return nil
}

// ValidateName checks a node name is non-empty and within length limits.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// ValidateRadioParams checks the radio parameter block of a configuration.
// Frequency bounds are region-specific; SF, coding rate and TX power use
// the LoRa modem's hard limits.
func ValidateRadioParams(c *Config) error {
	bounds, ok := regionFrequencies[c.Region]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidRegion, c.Region)
	}
	if c.FrequencyMHz < bounds.min || c.FrequencyMHz > bounds.max {
		return fmt.Errorf("%w: frequency %.3f MHz outside %s band (%.1f-%.1f)",
			ErrInvalidRadioParams, c.FrequencyMHz, c.Region, bounds.min, bounds.max)
	}
	if c.BandwidthKHz <= 0 {
		return fmt.Errorf("%w: bandwidth must be positive", ErrInvalidRadioParams)
	}
	if c.SpreadingFactor < minSpreadingFactor || c.SpreadingFactor > maxSpreadingFactor {
		return fmt.Errorf("%w: spreading factor %d outside %d-%d",
			ErrInvalidRadioParams, c.SpreadingFactor, minSpreadingFactor, maxSpreadingFactor)
	}
	if c.CodingRate < minCodingRate || c.CodingRate > maxCodingRate {
		return fmt.Errorf("%w: coding rate %d outside %d-%d",
			ErrInvalidRadioParams, c.CodingRate, minCodingRate, maxCodingRate)
	}
	if c.TxPowerDBm < minTxPowerDBm || c.TxPowerDBm > maxTxPowerDBm {
		return fmt.Errorf("%w: tx power %d dBm outside %d-%d",
			ErrInvalidRadioParams, c.TxPowerDBm, minTxPowerDBm, maxTxPowerDBm)
	}
	return nil
}

// ValidatePreset checks a battery preset against the whitelist.
func ValidatePreset(p BatteryPreset) error {
	if _, ok := validPresets[p]; !ok {
		return fmt.Errorf("%w: %q", ErrInvalidPreset, p)
	}
	return nil
}

// ValidateCurve checks a custom discharge curve string: a comma-separated
// list of ascending voltages, e.g. "3.0,3.3,3.6".
func ValidateCurve(curve string) error {
	parts := strings.Split(curve, ",")
	if len(parts) < 2 {
		return fmt.Errorf("%w: curve needs at least two points", ErrInvalidConfig)
	}
	prev := 0.0
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return fmt.Errorf("%w: curve point %d is not a number: %q", ErrInvalidConfig, i, part)
		}
		if v <= prev {
			return fmt.Errorf("%w: curve voltages must be ascending", ErrInvalidConfig)
		}
		prev = v
	}
	return nil
}

// GenerateShortName derives a short identifier from a node name.
// Takes the first letter of up to four words, uppercased.
func GenerateShortName(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		if b.Len() >= maxShortNameLength {
			break
		}
		for _, r := range word {
			b.WriteRune(r)
			break
		}
	}
	return strings.ToUpper(b.String())
}

// GenerateID creates a new UUID for a node.
func GenerateID() string {
	return uuid.New().String()
}
