package audit

import (
	"context"
	"strings"
	"time"

	"github.com/meridianhire/panelsched/internal/shared/domain"
	"github.com/meridianhire/panelsched/internal/shared/infrastructure/database"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS solve_audit_log (
	run_id         TEXT PRIMARY KEY,
	config_digest  TEXT NOT NULL,
	status         TEXT NOT NULL,
	num_candidates INTEGER NOT NULL,
	panel_names    TEXT NOT NULL,
	order_breaks   INTEGER NOT NULL,
	day_end_time   TEXT NOT NULL,
	elapsed_millis INTEGER NOT NULL,
	created_at     TEXT NOT NULL
)`

// sqliteAuditLog implements SolveAuditLog over a database.Connection whose
// Driver() is DriverSQLite. SQLite has no array type, so PanelNames is
// joined into a comma-separated column instead of the postgres backend's
// native TEXT[].
type sqliteAuditLog struct {
	conn database.Connection
}

func newSQLiteAuditLog(ctx context.Context, conn database.Connection) (*sqliteAuditLog, error) {
	if _, err := conn.Exec(ctx, sqliteSchema); err != nil {
		return nil, database.WrapOpError("audit", "create sqlite schema", err)
	}
	return &sqliteAuditLog{conn: conn}, nil
}

func (l *sqliteAuditLog) Append(ctx context.Context, rec Record) error {
	_, err := l.conn.Exec(ctx, `
		INSERT OR IGNORE INTO solve_audit_log
			(run_id, config_digest, status, num_candidates, panel_names, order_breaks, day_end_time, elapsed_millis, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID, rec.ConfigDigest, rec.Status, rec.NumCandidates, strings.Join(rec.PanelNames, ","),
		rec.OrderBreaks, rec.DayEndTime, rec.ElapsedMillis, rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return database.WrapOpError("audit", "insert record", err)
	}
	return nil
}

// FindByRunID looks up a previously appended record by its RunID, returning
// (nil, nil) when no solve with that ID was ever recorded.
func (l *sqliteAuditLog) FindByRunID(ctx context.Context, runID domain.RunID) (*Record, error) {
	row := l.conn.QueryRow(ctx, `
		SELECT run_id, config_digest, status, num_candidates, panel_names, order_breaks, day_end_time, elapsed_millis, created_at
		FROM solve_audit_log WHERE run_id = ?
	`, runID)

	var rec Record
	var panelNames, createdAt string
	found, err := database.ScanRow(row, &rec.RunID, &rec.ConfigDigest, &rec.Status, &rec.NumCandidates, &panelNames,
		&rec.OrderBreaks, &rec.DayEndTime, &rec.ElapsedMillis, &createdAt)
	if err != nil {
		return nil, database.WrapOpError("audit", "find run "+runID.String(), err)
	}
	if !found {
		return nil, nil
	}

	rec.PanelNames = strings.Split(panelNames, ",")
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, database.WrapOpError("audit", "parse created_at for run "+runID.String(), err)
	}
	rec.CreatedAt = parsed
	return &rec, nil
}
