package database

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNoRows is returned when a query expected to return a row returns none.
// infrastructure/audit's FindByRunID relies on this to tell "no solve ever
// recorded under this RunID" apart from a genuine backend failure, across
// both its postgres (pgx) and sqlite (database/sql) implementations.
var ErrNoRows = errors.New("no rows in result set")

// IsNoRows returns true if the error indicates no rows were found.
// This handles both pgx.ErrNoRows and sql.ErrNoRows, so a caller like
// infrastructure/audit never needs to know which driver produced the error.
func IsNoRows(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, pgx.ErrNoRows) ||
		errors.Is(err, sql.ErrNoRows) ||
		errors.Is(err, ErrNoRows)
}

// WrapOpError prefixes err with "<component>: <op>" — the convention
// infrastructure/audit's postgres and sqlite backends both use ("audit:
// insert record", "audit: find run ...") so a coordinator reading a log
// line can tell which persistence call failed without needing
// driver-specific error text. Returns nil if err is nil.
func WrapOpError(component, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", component, op, err)
}
