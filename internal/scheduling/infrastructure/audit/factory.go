package audit

import (
	"context"
	"fmt"

	"github.com/meridianhire/panelsched/internal/shared/infrastructure/database"
)

// NewSolveAuditLog builds the SolveAuditLog implementation matching conn's
// driver, creating its backing table if it doesn't already exist. Both
// backends read and write exclusively through database.Connection's
// Exec/QueryRow methods, never a concrete pgxpool.Pool or *sql.DB, so the
// audit trail stays driver-agnostic down to its SQL calls the same way the
// rest of the scheduling core stays backend-agnostic down to its solver
// calls (infrastructure/cpsolver.Model).
func NewSolveAuditLog(ctx context.Context, conn database.Connection) (SolveAuditLog, error) {
	switch conn.Driver() {
	case database.DriverPostgres:
		return newPostgresAuditLog(ctx, conn)
	case database.DriverSQLite:
		return newSQLiteAuditLog(ctx, conn)
	default:
		return nil, fmt.Errorf("audit: unsupported driver: %s", conn.Driver())
	}
}
