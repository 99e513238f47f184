package node

import "errors"

// Domain errors for the node package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, node.ErrNodeNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNodeNotFound is returned when a node ID does not exist.
	ErrNodeNotFound = errors.New("node: not found")

	// ErrNodeExists is returned when creating a node with an ID that already exists.
	ErrNodeExists = errors.New("node: already exists")

	// ErrSaveFailed is returned when the store rejects a save. The previously
	// persisted record remains authoritative; callers may retry the whole update.
	ErrSaveFailed = errors.New("node: save failed")

	// ErrInvalidConfig is returned when config validation fails.
	ErrInvalidConfig = errors.New("node: invalid config")

	// ErrInvalidName is returned when a node name is empty or too long.
	ErrInvalidName = errors.New("node: invalid name")

	// ErrInvalidRegion is returned when a region value is not recognised.
	ErrInvalidRegion = errors.New("node: invalid region")

	// ErrInvalidRadioParams is returned when radio parameter validation fails.
	ErrInvalidRadioParams = errors.New("node: invalid radio parameters")

	// ErrInvalidPreset is returned when a battery preset is not recognised.
	ErrInvalidPreset = errors.New("node: invalid battery preset")

	// ErrCurveRequired is returned when the battery preset is set to custom
	// without a discharge curve while strict curve policy is enabled.
	ErrCurveRequired = errors.New("node: custom battery preset requires a curve")
)
