// Package database provides SQLite connection management and schema
// migrations for MeshLink Core.
//
// The node configuration store and the durable debug log both persist
// through the single *DB handle opened here. SQLite is opened with WAL
// mode and a busy timeout, and the connection pool is pinned to one
// connection to match SQLite's single-writer model.
//
// Migrations are plain SQL files embedded via MigrationsFS, named
// YYYYMMDD_HHMMSS_description.up.sql (with an optional .down.sql
// counterpart) and applied in version order, each in its own
// transaction.
package database
