// Package database is the storage backend this scheduling core's
// observability sinks run on: the audit log (infrastructure/audit)
// persists one row per solve here, and the solve-status job queue
// (scheduling/jobqueue) would use the same Connection contract if it ever
// grew a relational read model instead of its current Redis snapshots.
// Neither the constraint model nor the solver driver touches a database —
// a coordinator running the CLI against a bare SQLite file and a worker
// pool sharing a Postgres instance behind it must see the same
// Connection/Executor surface.
package database

import "strings"

// Driver names a backend a scheduling deployment can point its audit log
// at. A single-coordinator CLI invocation defaults to SQLite (no server to
// stand up); a fleet of cmd/worker processes sharing one audit trail needs
// Postgres instead.
type Driver string

const (
	// DriverPostgres backs the audit log with a shared Postgres instance —
	// the expected choice once more than one cmd/worker writes to the
	// same trail.
	DriverPostgres Driver = "postgres"
	// DriverSQLite backs the audit log with a local file — the
	// zero-config default for a single coordinator running cmd/panelsched.
	DriverSQLite Driver = "sqlite"
)

// String returns the string representation of the driver.
func (d Driver) String() string {
	return string(d)
}

// Label renders a short, human-readable description of the backend, for
// the startup log line cmd/panelsched and cmd/worker emit once the audit
// log connects.
func (d Driver) Label() string {
	switch d {
	case DriverPostgres:
		return "shared Postgres audit store"
	case DriverSQLite:
		return "local SQLite audit store"
	default:
		return "unknown driver " + string(d)
	}
}

// DetectDriver parses an audit-log connection string and returns the
// driver type it names. Returns DriverSQLite for empty URLs so a
// coordinator with no PANELSCHED_DATABASE_URL set still gets a working,
// zero-config local audit trail instead of failing to start.
func DetectDriver(url string) Driver {
	if url == "" {
		return DriverSQLite
	}

	if strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://") {
		return DriverPostgres
	}

	if strings.HasPrefix(url, "sqlite://") ||
		strings.HasPrefix(url, "file:") ||
		strings.HasSuffix(url, ".db") ||
		strings.HasSuffix(url, ".sqlite") ||
		strings.HasSuffix(url, ".sqlite3") {
		return DriverSQLite
	}

	// An unrecognized URL is assumed to be a Postgres DSN (e.g. a bare
	// "host=... user=..." keyword/value string), since SQLite paths are
	// always caught by the suffix checks above.
	return DriverPostgres
}

// IsValid returns true if the driver is a known type.
func (d Driver) IsValid() bool {
	switch d {
	case DriverPostgres, DriverSQLite:
		return true
	default:
		return false
	}
}
