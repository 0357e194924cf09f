// Package jobqueue is the asynchronous counterpart to the synchronous CLI
// (internal/scheduling/adapter/cli): a coordinator submits a configuration
// as a queued job and polls or is notified for the result, instead of
// blocking on a CLI invocation. A SolveJob tracks one submission's
// lifecycle; cmd/worker consumes requested jobs off RabbitMQ and drives
// them through the same InstanceBuilder/SolverDriver pipeline the CLI uses.
package jobqueue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	shareddomain "github.com/meridianhire/panelsched/internal/shared/domain"
)

// Status is a SolveJob's lifecycle state.
type Status string

const (
	StatusRequested Status = "requested"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// aggregateType is this aggregate's name in DomainEvent.AggregateType() and
// the routing-key namespace below.
const aggregateType = "scheduling.solve_job"

// Routing keys SolveJob events are published under.
const (
	RoutingKeyRequested = "panelsched.solve.requested"
	RoutingKeySucceeded = "panelsched.solve.succeeded"
	RoutingKeyFailed    = "panelsched.solve.failed"
)

// SolveJob is the aggregate root for one queued solve request. It carries
// the raw, not-yet-validated configuration document plus solve options;
// The scheduling core never sees a SolveJob, only the Instance built from its Config once
// the worker picks it up.
type SolveJob struct {
	shareddomain.BaseAggregateRoot

	Config         map[string]any
	K              int // 1 for a single solve, >1 for solve-multi
	MaxTimeSeconds int

	// CoordinatorID identifies who submitted this job, so every domain
	// event it raises can be traced back to them in EventMetadata.
	CoordinatorID uuid.UUID

	Status        Status
	FailureReason string
	SubmittedAt   time.Time
	CompletedAt   time.Time
}

// NewSolveJob creates a requested job submitted by coordinatorID and
// raises SolveJobRequested.
func NewSolveJob(cfg map[string]any, k, maxTimeSeconds int, coordinatorID uuid.UUID) *SolveJob {
	j := &SolveJob{
		BaseAggregateRoot: shareddomain.NewBaseAggregateRoot(),
		Config:            cfg,
		K:                 k,
		MaxTimeSeconds:    maxTimeSeconds,
		CoordinatorID:     coordinatorID,
		Status:            StatusRequested,
		SubmittedAt:       time.Now().UTC(),
	}
	evt := NewSolveJobRequested(j.ID())
	j.raise(&evt)
	return j
}

// RehydrateRequested reconstructs a job already assigned an ID by its
// submitter (the message producer), without raising SolveJobRequested
// again — used by the worker to load a just-dequeued request into a
// SolveJob it can then drive through MarkRunning/Succeed/Fail.
func RehydrateRequested(id uuid.UUID, cfg map[string]any, k, maxTimeSeconds int, coordinatorID uuid.UUID) *SolveJob {
	return &SolveJob{
		BaseAggregateRoot: shareddomain.NewBaseAggregateRootWithID(id),
		Config:            cfg,
		K:                 k,
		MaxTimeSeconds:    maxTimeSeconds,
		CoordinatorID:     coordinatorID,
		Status:            StatusRequested,
		SubmittedAt:       time.Now().UTC(),
	}
}

// raise stamps evt with j's CoordinatorID before adding it, so every
// consumer downstream of the event bus can trace a SolveJob event back to
// whoever submitted the job without re-deriving it from the aggregate.
func (j *SolveJob) raise(evt interface {
	shareddomain.DomainEvent
	SetMetadata(shareddomain.EventMetadata)
}) {
	evt.SetMetadata(shareddomain.EventMetadata{CoordinatorID: j.CoordinatorID})
	j.AddDomainEvent(evt)
}

// MarkRunning transitions a requested job to running. It is an error to
// call this on a job that isn't currently requested.
func (j *SolveJob) MarkRunning() error {
	if j.Status != StatusRequested {
		return fmt.Errorf("jobqueue: cannot start job %s from status %q", j.ID(), j.Status)
	}
	j.Status = StatusRunning
	j.Touch()
	return nil
}

// Succeed records a successful solve and raises SolveJobSucceeded.
func (j *SolveJob) Succeed(resultJSON []byte) {
	j.Status = StatusSucceeded
	j.CompletedAt = time.Now().UTC()
	j.Touch()
	evt := NewSolveJobSucceeded(j.ID(), resultJSON)
	j.raise(&evt)
}

// Fail records a failed solve and raises SolveJobFailed.
func (j *SolveJob) Fail(reason string) {
	j.Status = StatusFailed
	j.FailureReason = reason
	j.CompletedAt = time.Now().UTC()
	j.Touch()
	evt := NewSolveJobFailed(j.ID(), reason)
	j.raise(&evt)
}
