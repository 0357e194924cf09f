package jobqueue_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhire/panelsched/internal/scheduling/jobqueue"
)

func TestNewSolveJob_RaisesRequested(t *testing.T) {
	coordinatorID := uuid.New()
	job := jobqueue.NewSolveJob(map[string]any{"slot_minutes": 15}, 1, 60, coordinatorID)

	assert.Equal(t, jobqueue.StatusRequested, job.Status)
	require.Len(t, job.DomainEvents(), 1)
	evt := job.DomainEvents()[0]
	assert.Equal(t, jobqueue.RoutingKeyRequested, evt.RoutingKey())
	assert.Equal(t, job.ID(), evt.AggregateID())
	assert.Equal(t, coordinatorID, evt.Metadata().CoordinatorID)
}

func TestSolveJob_MarkRunning(t *testing.T) {
	job := jobqueue.NewSolveJob(nil, 1, 60, uuid.New())

	require.NoError(t, job.MarkRunning())
	assert.Equal(t, jobqueue.StatusRunning, job.Status)

	err := job.MarkRunning()
	assert.Error(t, err, "cannot run twice from running status")
}

func TestSolveJob_Succeed(t *testing.T) {
	coordinatorID := uuid.New()
	job := jobqueue.NewSolveJob(nil, 1, 60, coordinatorID)
	job.ClearDomainEvents()

	job.Succeed([]byte(`{"status":"OPTIMAL"}`))

	assert.Equal(t, jobqueue.StatusSucceeded, job.Status)
	assert.False(t, job.CompletedAt.IsZero())
	require.Len(t, job.DomainEvents(), 1)
	evt := job.DomainEvents()[0]
	assert.Equal(t, jobqueue.RoutingKeySucceeded, evt.RoutingKey())
	assert.Equal(t, coordinatorID, evt.Metadata().CoordinatorID)
}

func TestSolveJob_Fail(t *testing.T) {
	job := jobqueue.NewSolveJob(nil, 1, 60, uuid.New())
	job.ClearDomainEvents()

	job.Fail("config validation: missing panels")

	assert.Equal(t, jobqueue.StatusFailed, job.Status)
	assert.Equal(t, "config validation: missing panels", job.FailureReason)
	require.Len(t, job.DomainEvents(), 1)
	assert.Equal(t, jobqueue.RoutingKeyFailed, job.DomainEvents()[0].RoutingKey())
}

func TestRehydrateRequested_DoesNotRaiseEvent(t *testing.T) {
	id := uuid.New()
	job := jobqueue.RehydrateRequested(id, map[string]any{"a": 1}, 3, 30, uuid.New())

	assert.Equal(t, id, job.ID())
	assert.Equal(t, jobqueue.StatusRequested, job.Status)
	assert.Empty(t, job.DomainEvents())
}
