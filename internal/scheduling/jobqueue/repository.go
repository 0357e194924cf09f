package jobqueue

import (
	shareddomain "github.com/meridianhire/panelsched/internal/shared/domain"
)

// Repository persists SolveJob snapshots so a coordinator can poll a job's
// status after submitting it asynchronously. Satisfies the shared
// domain.Repository[T] contract the rest of the codebase's aggregates use.
type Repository = shareddomain.Repository[*SolveJob]
