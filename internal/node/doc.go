// Package node manages the persisted configuration records for mesh
// radio nodes.
//
// Each node has exactly one Config record in the store, and the Mutator
// is the only sanctioned path for changing it. The Mutator serializes
// concurrent updates per node ID through a lock table, builds every
// revision as a complete new record (deep copy + targeted field
// replacement), and notifies a single registered Observer after each
// successful save.
//
// # Key Types
//
//   - Config: the persisted configuration for one node
//   - Store: persistence interface, implemented by SQLiteStore
//   - Mutator: serialized fetch-merge-save-notify update pipeline
//   - FieldUpdate: which fields to change and their new values
//   - Observer: callback invoked with the post-update record
//
// # Usage
//
//	store := node.NewSQLiteStore(db)
//	mutator := node.NewMutator(store, true)
//	mutator.SetLogger(log)
//	mutator.SetObserver(myObserver)
//
//	preset := node.PresetCustom
//	curve := "3.0,3.3,3.6"
//	updated, err := mutator.Apply(ctx, nodeID, node.FieldUpdate{
//	    BatteryPreset: &preset,
//	    BatteryCurve:  &curve,
//	})
//
// # Thread Safety
//
// The Mutator is safe for concurrent use. Updates for the same node ID
// are applied strictly one at a time; updates for different node IDs
// proceed in parallel. The Store implementation must also be thread-safe.
package node
