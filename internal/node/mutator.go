package node

import (
	"context"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Mutator.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Observer receives the post-update configuration after each successful
// save. Invocation is fire-and-forget: the Mutator dispatches it on its
// own goroutine, outside the per-node lock, and never reports observer
// failures back to the caller of Apply.
type Observer interface {
	ConfigUpdated(cfg *Config)
}

// FieldUpdate identifies which fields of a node configuration to change
// and their new values. Nil fields are left untouched. Settings, when
// present, is merged key-by-key into the existing settings map.
type FieldUpdate struct {
	Name            *string        `json:"name,omitempty"`
	ShortName       *string        `json:"short_name,omitempty"`
	Region          *Region        `json:"region,omitempty"`
	FrequencyMHz    *float64       `json:"frequency_mhz,omitempty"`
	BandwidthKHz    *float64       `json:"bandwidth_khz,omitempty"`
	SpreadingFactor *int           `json:"spreading_factor,omitempty"`
	CodingRate      *int           `json:"coding_rate,omitempty"`
	TxPowerDBm      *int           `json:"tx_power_dbm,omitempty"`
	BatteryPreset   *BatteryPreset `json:"battery_preset,omitempty"`
	BatteryCurve    *string        `json:"battery_curve,omitempty"`
	Settings        Settings       `json:"settings,omitempty"`
}

// Mutator is the only sanctioned path for changing a node's persisted
// configuration. It serializes concurrent updates per node ID so the
// store never observes interleaved fetch/save phases, and notifies a
// single registered observer after each successful save.
//
// Updates for different node IDs proceed concurrently; a per-node lock
// table is used rather than one global lock.
//
// All public methods are thread-safe.
type Mutator struct {
	store Store

	// locks holds one mutex per node ID, created on first use.
	locks   map[string]*sync.Mutex
	locksMu sync.Mutex

	// observer is the single registered callback. Last registration wins.
	observer   Observer
	observerMu sync.RWMutex

	// strictCurve controls the custom battery preset policy: when true,
	// setting the preset to custom without a curve is rejected.
	strictCurve bool

	logger Logger
}

// NewMutator creates a new configuration mutator over the given store.
// strictCurve enables rejection of custom battery presets without a curve.
func NewMutator(store Store, strictCurve bool) *Mutator {
	return &Mutator{
		store:       store,
		locks:       make(map[string]*sync.Mutex),
		strictCurve: strictCurve,
		logger:      noopLogger{},
	}
}

// SetLogger sets the logger for the mutator.
func (m *Mutator) SetLogger(logger Logger) {
	m.logger = logger
}

// SetObserver registers the observer notified after each successful
// update, replacing any previously registered observer. Passing nil
// clears the registration. Not part of persisted state.
func (m *Mutator) SetObserver(obs Observer) {
	m.observerMu.Lock()
	m.observer = obs
	m.observerMu.Unlock()
}

// Apply performs a serialized fetch-merge-save-notify update of one
// node's configuration.
//
// The pipeline per call:
//  1. Fetch the current record. Absent → ErrNodeNotFound, nothing created.
//  2. Build a complete new record: a deep copy of the fetched one with
//     only the fields named in update replaced.
//  3. Persist the new record. Store failure → error wrapping ErrSaveFailed;
//     the previously persisted record remains authoritative.
//  4. Notify the registered observer with the new record, outside the
//     per-node lock, on a separate goroutine.
//
// Concurrent calls for the same node ID are applied one at a time, each
// observing its predecessor's result, so no update is lost. Once step 3
// has begun the call runs to completion; ctx is consulted by the store's
// own operations only.
func (m *Mutator) Apply(ctx context.Context, nodeID string, update FieldUpdate) (*Config, error) {
	lock := m.lockFor(nodeID)
	lock.Lock()

	updated, err := m.applyLocked(ctx, nodeID, update)
	lock.Unlock()
	if err != nil {
		return nil, err
	}

	// Notify after releasing the lock so a slow observer cannot stall
	// subsequent updates or deadlock against the lock table.
	m.observerMu.RLock()
	obs := m.observer
	m.observerMu.RUnlock()
	if obs != nil {
		notified := updated.DeepCopy()
		go func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("observer panic", "node_id", notified.ID, "panic", r)
				}
			}()
			obs.ConfigUpdated(notified)
		}()
	}

	m.logger.Info("node config updated", "id", updated.ID, "name", updated.Name)
	return updated, nil
}

// applyLocked runs the fetch-merge-save phase under the per-node lock.
func (m *Mutator) applyLocked(ctx context.Context, nodeID string, update FieldUpdate) (*Config, error) {
	current, err := m.store.GetByID(ctx, nodeID)
	if err != nil {
		return nil, err
	}

	updated, err := m.merge(current, update)
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(updated); err != nil {
		return nil, err
	}

	if err := m.store.Update(ctx, updated); err != nil {
		// The attempt is discarded; current remains authoritative.
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	return updated, nil
}

// merge builds a brand-new complete record: a deep copy of current with
// only the fields named in update replaced. Everything else is carried
// over unchanged, which is the property that keeps concurrent updates
// to different fields from clobbering each other.
func (m *Mutator) merge(current *Config, update FieldUpdate) (*Config, error) {
	cfg := current.DeepCopy()

	if update.Name != nil {
		cfg.Name = *update.Name
	}
	if update.ShortName != nil {
		cfg.ShortName = *update.ShortName
	}
	if update.Region != nil {
		cfg.Region = *update.Region
	}
	if update.FrequencyMHz != nil {
		cfg.FrequencyMHz = *update.FrequencyMHz
	}
	if update.BandwidthKHz != nil {
		cfg.BandwidthKHz = *update.BandwidthKHz
	}
	if update.SpreadingFactor != nil {
		cfg.SpreadingFactor = *update.SpreadingFactor
	}
	if update.CodingRate != nil {
		cfg.CodingRate = *update.CodingRate
	}
	if update.TxPowerDBm != nil {
		cfg.TxPowerDBm = *update.TxPowerDBm
	}

	if update.BatteryPreset != nil {
		cfg.BatteryPreset = *update.BatteryPreset
	}
	if update.BatteryCurve != nil {
		curve := *update.BatteryCurve
		cfg.BatteryCurve = &curve
	}
	if cfg.BatteryPreset != PresetCustom {
		// Curve only accompanies the custom preset, regardless of
		// which field the update carried.
		cfg.BatteryCurve = nil
	}
	if cfg.BatteryPreset == PresetCustom && cfg.BatteryCurve == nil && m.strictCurve {
		// A curve is never invented on the node's behalf.
		return nil, ErrCurveRequired
	}

	if update.Settings != nil {
		if cfg.Settings == nil {
			cfg.Settings = make(Settings, len(update.Settings))
		}
		for k, v := range update.Settings {
			cfg.Settings[k] = deepCopyValue(v)
		}
	}

	return cfg, nil
}

// lockFor returns the mutex for a node ID, creating it on first use.
// Lock entries live for the process lifetime; the set of configured
// nodes is small and stable.
func (m *Mutator) lockFor(nodeID string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	lock, ok := m.locks[nodeID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[nodeID] = lock
	}
	return lock
}
