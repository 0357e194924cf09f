package jobqueue_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/jobqueue"
	shareddomain "github.com/meridianhire/panelsched/internal/shared/domain"
	"github.com/meridianhire/panelsched/internal/shared/infrastructure/eventbus"
)

type fakeRepo struct {
	saved []*jobqueue.SolveJob
}

func (r *fakeRepo) Save(ctx context.Context, job *jobqueue.SolveJob) error {
	r.saved = append(r.saved, job)
	return nil
}
func (r *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*jobqueue.SolveJob, error) {
	for _, j := range r.saved {
		if j.ID() == id {
			return j, nil
		}
	}
	return nil, shareddomain.ErrConcurrentModification
}
func (r *fakeRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type publishedMsg struct {
	routingKey string
	payload    []byte
}

type fakePublisher struct {
	published []publishedMsg
}

func (p *fakePublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	p.published = append(p.published, publishedMsg{routingKey, payload})
	return nil
}
func (p *fakePublisher) Close() error { return nil }

func newTestConsumer() (*jobqueue.Consumer, *fakeRepo, *fakePublisher) {
	repo := &fakeRepo{}
	pub := &fakePublisher{}
	logger := slog.Default()
	driver := services.NewSolverDriver(nil, logger, services.SolverDriverConfig{})
	c := jobqueue.NewConsumer(services.NewInstanceBuilder(), driver, repo, pub, logger)
	return c, repo, pub
}

func TestConsumer_EventTypes(t *testing.T) {
	c, _, _ := newTestConsumer()
	assert.Equal(t, []string{jobqueue.RoutingKeyRequested}, c.EventTypes())
}

func TestConsumer_Handle_InvalidPayload(t *testing.T) {
	c, _, _ := newTestConsumer()

	err := c.Handle(context.Background(), &eventbus.ConsumedEvent{
		AggregateID: uuid.New(),
		Payload:     []byte(`not json`),
	})

	assert.Error(t, err)
}

func TestConsumer_Handle_InvalidConfigMarksFailedAndPublishes(t *testing.T) {
	c, repo, pub := newTestConsumer()

	payload, err := json.Marshal(map[string]any{
		"config": map[string]any{"num_candidates": 0},
		"k":      1,
	})
	require.NoError(t, err)

	jobID := uuid.New()
	err = c.Handle(context.Background(), &eventbus.ConsumedEvent{
		AggregateID: jobID,
		Payload:     payload,
	})

	require.Error(t, err)
	require.Len(t, repo.saved, 2, "one save for running, one for failed")
	last := repo.saved[len(repo.saved)-1]
	assert.Equal(t, jobqueue.StatusFailed, last.Status)
	assert.NotEmpty(t, last.FailureReason)

	require.Len(t, pub.published, 1)
	assert.Equal(t, jobqueue.RoutingKeyFailed, pub.published[0].routingKey)
}
