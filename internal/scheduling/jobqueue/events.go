package jobqueue

import (
	"github.com/google/uuid"

	shareddomain "github.com/meridianhire/panelsched/internal/shared/domain"
)

// SolveJobRequested is raised when a job is submitted, before the worker
// picks it up.
type SolveJobRequested struct {
	shareddomain.BaseEvent
}

// NewSolveJobRequested builds a SolveJobRequested for jobID.
func NewSolveJobRequested(jobID uuid.UUID) SolveJobRequested {
	return SolveJobRequested{BaseEvent: shareddomain.NewBaseEvent(jobID, aggregateType, RoutingKeyRequested)}
}

// SolveJobSucceeded is raised once the worker extracts and verifies a
// solution. ResultJSON holds the JSON encoding of the SolverDriver's
// services.SolveResult (a list of them when the job asked for k > 1); it is
// not the response shape the CLI's solve subcommand prints.
type SolveJobSucceeded struct {
	shareddomain.BaseEvent
	ResultJSON []byte
}

// NewSolveJobSucceeded builds a SolveJobSucceeded for jobID.
func NewSolveJobSucceeded(jobID uuid.UUID, resultJSON []byte) SolveJobSucceeded {
	return SolveJobSucceeded{
		BaseEvent:  shareddomain.NewBaseEvent(jobID, aggregateType, RoutingKeySucceeded),
		ResultJSON: resultJSON,
	}
}

// SolveJobFailed is raised when validation, instance building, or solving
// itself fails before a solution could be extracted.
type SolveJobFailed struct {
	shareddomain.BaseEvent
	Reason string
}

// NewSolveJobFailed builds a SolveJobFailed for jobID.
func NewSolveJobFailed(jobID uuid.UUID, reason string) SolveJobFailed {
	return SolveJobFailed{
		BaseEvent: shareddomain.NewBaseEvent(jobID, aggregateType, RoutingKeyFailed),
		Reason:    reason,
	}
}
