package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	shareddomain "github.com/meridianhire/panelsched/internal/shared/domain"
)

// redisJobTTL bounds how long a completed job's status survives — long
// enough for a coordinator's poll loop to pick up the result, short enough
// that abandoned jobs don't accumulate forever.
const redisJobTTL = 24 * time.Hour

// jobRecord is SolveJob's wire representation. A plain struct rather than
// json tags on SolveJob itself, because BaseAggregateRoot/BaseEntity hold
// their fields unexported — the same snapshot-then-rehydrate seam any
// repository needs between a domain aggregate and its persisted row.
type jobRecord struct {
	ID             uuid.UUID      `json:"id"`
	Config         map[string]any `json:"config"`
	K              int            `json:"k"`
	MaxTimeSeconds int            `json:"max_time_seconds"`
	CoordinatorID  uuid.UUID      `json:"coordinator_id,omitempty"`
	Status         Status         `json:"status"`
	FailureReason  string         `json:"failure_reason,omitempty"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	CompletedAt    time.Time      `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Version        int            `json:"version"`
}

func toRecord(j *SolveJob) jobRecord {
	return jobRecord{
		ID:             j.ID(),
		Config:         j.Config,
		K:              j.K,
		MaxTimeSeconds: j.MaxTimeSeconds,
		CoordinatorID:  j.CoordinatorID,
		Status:         j.Status,
		FailureReason:  j.FailureReason,
		SubmittedAt:    j.SubmittedAt,
		CompletedAt:    j.CompletedAt,
		CreatedAt:      j.CreatedAt(),
		UpdatedAt:      j.UpdatedAt(),
		Version:        j.Version(),
	}
}

func (r jobRecord) toJob() *SolveJob {
	entity := shareddomain.RehydrateBaseEntity(r.ID, r.CreatedAt, r.UpdatedAt)
	return &SolveJob{
		BaseAggregateRoot: shareddomain.RehydrateBaseAggregateRoot(entity, r.Version),
		Config:            r.Config,
		K:                 r.K,
		MaxTimeSeconds:    r.MaxTimeSeconds,
		CoordinatorID:     r.CoordinatorID,
		Status:            r.Status,
		FailureReason:     r.FailureReason,
		SubmittedAt:       r.SubmittedAt,
		CompletedAt:       r.CompletedAt,
	}
}

// RedisRepository is a Redis-backed jobqueue.Repository, namespaced the
// same way infrastructure/cache.ResultCache namespaces its keys.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository wraps an already-connected redis.Client.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func jobKey(id uuid.UUID) string {
	return fmt.Sprintf("panelsched:job:%s", id)
}

// Save upserts job's current snapshot.
func (r *RedisRepository) Save(ctx context.Context, job *SolveJob) error {
	payload, err := json.Marshal(toRecord(job))
	if err != nil {
		return fmt.Errorf("jobqueue: marshal job %s: %w", job.ID(), err)
	}
	if err := r.client.Set(ctx, jobKey(job.ID()), payload, redisJobTTL).Err(); err != nil {
		return fmt.Errorf("jobqueue: save job %s: %w", job.ID(), err)
	}
	return nil
}

// FindByID loads a job snapshot by ID.
func (r *RedisRepository) FindByID(ctx context.Context, id uuid.UUID) (*SolveJob, error) {
	payload, err := r.client.Get(ctx, jobKey(id)).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("jobqueue: job %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("jobqueue: load job %s: %w", id, err)
	}
	var rec jobRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("jobqueue: unmarshal job %s: %w", id, err)
	}
	return rec.toJob(), nil
}

// Delete removes a job snapshot.
func (r *RedisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, jobKey(id)).Err()
}
