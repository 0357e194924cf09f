package domain

import (
	"database/sql/driver"

	"github.com/google/uuid"
)

// ValueObject represents an immutable domain concept defined by its attributes.
type ValueObject interface {
	Equals(other ValueObject) bool
}

// RunID identifies one solve attempt end to end. infrastructure/audit keys
// its append-only log on it. The SolverDriver generates a fresh one per
// solve; jobqueue's SolveJobs carry their own uuid and are not keyed by
// RunID. It wraps a
// uuid.UUID rather than a bare string so a RunID can't be passed where a
// ConfigDigest or some other identifier is expected, while Value/Scan
// below still let it round-trip through a plain TEXT column.
type RunID struct {
	value uuid.UUID
}

// NewRunID generates a fresh RunID for a solve about to start.
func NewRunID() RunID {
	return RunID{value: uuid.New()}
}

// ParseRunID parses a RunID previously rendered by String(), as when a
// coordinator looks up a solve by the ID it printed earlier.
func ParseRunID(s string) (RunID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RunID{}, err
	}
	return RunID{value: id}, nil
}

// String renders the RunID the way infrastructure/audit stores it and the
// CLI prints it.
func (r RunID) String() string {
	return r.value.String()
}

// Equals checks if two RunIDs are equal.
func (r RunID) Equals(other ValueObject) bool {
	if otherRunID, ok := other.(RunID); ok {
		return r.value == otherRunID.value
	}
	return false
}

// IsZero reports whether r is the zero RunID, as returned by a failed
// ParseRunID.
func (r RunID) IsZero() bool {
	return r.value == uuid.Nil
}

// Value implements driver.Valuer, delegating to uuid.UUID's own
// implementation, so a RunID can be passed directly as a query argument to
// infrastructure/audit's postgres and sqlite backends.
func (r RunID) Value() (driver.Value, error) {
	return r.value.Value()
}

// Scan implements sql.Scanner, delegating to uuid.UUID's own
// implementation, so a RunID can be a Scan destination for
// infrastructure/audit.FindByRunID's row lookup.
func (r *RunID) Scan(src any) error {
	return r.value.Scan(src)
}
