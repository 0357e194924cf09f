package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/meridianhire/panelsched/internal/scheduling/application/services"
	"github.com/meridianhire/panelsched/internal/scheduling/config"
	"github.com/meridianhire/panelsched/internal/shared/infrastructure/eventbus"
)

// requestPayload is the JSON body of a panelsched.solve.requested message:
// the same YAML-decoded document shape config.Validate expects, plus the
// solve options the synchronous CLI would otherwise take as flags.
type requestPayload struct {
	Config         map[string]any `json:"config"`
	K              int            `json:"k"`
	MaxTimeSeconds int            `json:"max_time_seconds"`
}

// Consumer drives queued solve requests through the same
// InstanceBuilder/SolverDriver pipeline the CLI uses, persisting job status
// via a Repository and publishing the outcome back onto the event bus.
type Consumer struct {
	instanceBuilder *services.InstanceBuilder
	solverDriver    *services.SolverDriver
	repo            Repository
	publisher       eventbus.Publisher
	logger          *slog.Logger
}

// NewConsumer wires a Consumer over the scheduling core.
func NewConsumer(instanceBuilder *services.InstanceBuilder, solverDriver *services.SolverDriver, repo Repository, publisher eventbus.Publisher, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{instanceBuilder: instanceBuilder, solverDriver: solverDriver, repo: repo, publisher: publisher, logger: logger}
}

// EventTypes implements eventbus.EventConsumer.
func (c *Consumer) EventTypes() []string { return []string{RoutingKeyRequested} }

// Handle implements eventbus.EventConsumer: decode, solve, persist, publish.
func (c *Consumer) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	var req requestPayload
	if err := json.Unmarshal(event.Payload, &req); err != nil {
		return fmt.Errorf("jobqueue: decode request payload: %w", err)
	}

	job := RehydrateRequested(event.AggregateID, req.Config, req.K, req.MaxTimeSeconds, event.Metadata.CoordinatorID)
	if err := job.MarkRunning(); err != nil {
		return err
	}
	if err := c.repo.Save(ctx, job); err != nil {
		c.logger.Warn("jobqueue: failed to persist running status", "job_id", job.ID(), "error", err)
	}

	normalized, err := config.Validate(req.Config)
	if err != nil {
		return c.fail(ctx, job, fmt.Errorf("config validation: %w", err))
	}
	inst, err := c.instanceBuilder.Build(normalized)
	if err != nil {
		return c.fail(ctx, job, fmt.Errorf("instance build: %w", err))
	}

	opts := services.DefaultSolveOptions()
	if job.MaxTimeSeconds > 0 {
		opts.MaxTimeSeconds = job.MaxTimeSeconds
	}

	var resultJSON []byte
	if job.K > 1 {
		results, err := c.solverDriver.SolveMulti(ctx, inst, opts, job.K)
		if err != nil {
			return c.fail(ctx, job, fmt.Errorf("solve-multi: %w", err))
		}
		resultJSON, err = json.Marshal(results)
		if err != nil {
			return c.fail(ctx, job, fmt.Errorf("marshal solve-multi result: %w", err))
		}
	} else {
		result, err := c.solverDriver.Solve(ctx, inst, opts)
		if err != nil {
			return c.fail(ctx, job, fmt.Errorf("solve: %w", err))
		}
		resultJSON, err = json.Marshal(result)
		if err != nil {
			return c.fail(ctx, job, fmt.Errorf("marshal solve result: %w", err))
		}
	}

	job.Succeed(resultJSON)
	if err := c.repo.Save(ctx, job); err != nil {
		c.logger.Warn("jobqueue: failed to persist succeeded status", "job_id", job.ID(), "error", err)
	}
	return c.publish(ctx, job)
}

func (c *Consumer) fail(ctx context.Context, job *SolveJob, cause error) error {
	job.Fail(cause.Error())
	if err := c.repo.Save(ctx, job); err != nil {
		c.logger.Warn("jobqueue: failed to persist failed status", "job_id", job.ID(), "error", err)
	}
	if err := c.publish(ctx, job); err != nil {
		c.logger.Warn("jobqueue: failed to publish failure event", "job_id", job.ID(), "error", err)
	}
	return cause
}

// publish emits every domain event SolveJob accumulated since it was last
// cleared, then clears them — the standard "collect then flush" pattern
// for aggregates that record events before a commit.
func (c *Consumer) publish(ctx context.Context, job *SolveJob) error {
	for _, evt := range job.DomainEvents() {
		if err := eventbus.PublishEvent(ctx, c.publisher, evt); err != nil {
			return fmt.Errorf("jobqueue: %w", err)
		}
	}
	job.ClearDomainEvents()
	return nil
}
