// Package logging provides the structured console logger for MeshLink Core.
//
// It wraps log/slog with configuration-driven level filtering, output
// format selection, and default service fields. This logger is the
// ephemeral sink consumed by the debuglog package; it carries no
// durability guarantees of its own.
package logging
