// Package audit persists a headline record of every solve the core
// produces. It sits entirely outside the scheduling core: the constraint
// model, driver, and extractor never read it back, and a missing or
// lagging audit log never affects scheduling correctness. It exists
// because a recruiting coordinator running the CLI day after day wants a
// trail of what was solved, when, and with what outcome.
package audit

import (
	"context"
	"time"

	"github.com/meridianhire/panelsched/internal/shared/domain"
)

// Record is one solve's headline outcome, independent of the schedule's
// full session detail. RunID is a domain.RunID rather than a bare string so
// it reads and writes as a native column value (domain.RunID implements
// driver.Valuer/sql.Scanner) without either backend having to marshal it
// itself.
type Record struct {
	RunID         domain.RunID
	ConfigDigest  string
	Status        string
	NumCandidates int
	PanelNames    []string
	OrderBreaks   int
	DayEndTime    string
	ElapsedMillis int64
	CreatedAt     time.Time
}

// SolveAuditLog appends Records. Implementations must make Append
// idempotent on RunID so a retried append after a network blip never
// double-counts a solve.
type SolveAuditLog interface {
	Append(ctx context.Context, rec Record) error

	// FindByRunID returns the record previously appended under runID, or
	// (nil, nil) if no solve with that RunID was ever recorded.
	FindByRunID(ctx context.Context, runID domain.RunID) (*Record, error)
}
