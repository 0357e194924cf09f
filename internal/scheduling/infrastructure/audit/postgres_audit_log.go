package audit

import (
	"context"

	"github.com/lib/pq"

	"github.com/meridianhire/panelsched/internal/shared/domain"
	"github.com/meridianhire/panelsched/internal/shared/infrastructure/database"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS solve_audit_log (
	run_id         TEXT PRIMARY KEY,
	config_digest  TEXT NOT NULL,
	status         TEXT NOT NULL,
	num_candidates INTEGER NOT NULL,
	panel_names    TEXT[] NOT NULL,
	order_breaks   INTEGER NOT NULL,
	day_end_time   TEXT NOT NULL,
	elapsed_millis BIGINT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
)`

// postgresAuditLog implements SolveAuditLog over a database.Connection
// whose Driver() is DriverPostgres.
type postgresAuditLog struct {
	conn database.Connection
}

func newPostgresAuditLog(ctx context.Context, conn database.Connection) (*postgresAuditLog, error) {
	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		return nil, database.WrapOpError("audit", "create postgres schema", err)
	}
	return &postgresAuditLog{conn: conn}, nil
}

func (l *postgresAuditLog) Append(ctx context.Context, rec Record) error {
	_, err := l.conn.Exec(ctx, `
		INSERT INTO solve_audit_log
			(run_id, config_digest, status, num_candidates, panel_names, order_breaks, day_end_time, elapsed_millis, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (run_id) DO NOTHING
	`,
		rec.RunID, rec.ConfigDigest, rec.Status, rec.NumCandidates, pq.Array(rec.PanelNames),
		rec.OrderBreaks, rec.DayEndTime, rec.ElapsedMillis, rec.CreatedAt,
	)
	if err != nil {
		return database.WrapOpError("audit", "insert record", err)
	}
	return nil
}

// FindByRunID looks up a previously appended record by its RunID, returning
// (nil, nil) when no solve with that ID was ever recorded.
func (l *postgresAuditLog) FindByRunID(ctx context.Context, runID domain.RunID) (*Record, error) {
	row := l.conn.QueryRow(ctx, `
		SELECT run_id, config_digest, status, num_candidates, panel_names, order_breaks, day_end_time, elapsed_millis, created_at
		FROM solve_audit_log WHERE run_id = $1
	`, runID)

	var rec Record
	found, err := database.ScanRow(row, &rec.RunID, &rec.ConfigDigest, &rec.Status, &rec.NumCandidates, pq.Array(&rec.PanelNames),
		&rec.OrderBreaks, &rec.DayEndTime, &rec.ElapsedMillis, &rec.CreatedAt)
	if err != nil {
		return nil, database.WrapOpError("audit", "find run "+runID.String(), err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}
