package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueBatchMirror is the Redis list key for batch mirror jobs.
	QueueBatchMirror = "adscout:batch_mirror"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "adscout:dlq"
	// MaxAttempts is the number of times a job is tried before moving to DLQ.
	MaxAttempts = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
	// PollTimeout bounds one blocking dequeue so workers notice shutdown.
	PollTimeout = 5 * time.Second
)

// JobType identifies the job kind.
type JobType string

const (
	JobTypeBatchMirror JobType = "batch_mirror"
)

// BatchMirrorPayload is the payload for batch mirror jobs. Files are relative to BatchDir.
type BatchMirrorPayload struct {
	BatchID  string   `json:"batch_id"`
	BatchDir string   `json:"batch_dir"`
	Files    []string `json:"files"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempts  int             `json:"attempts"`
	CreatedAt time.Time       `json:"created_at"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client redis.UniversalClient, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueueBatchMirror enqueues a batch mirror job.
func (q *Queue) EnqueueBatchMirror(ctx context.Context, payload BatchMirrorPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeBatchMirror,
		Payload:   body,
		CreatedAt: time.Now(),
	}
	if err := q.push(ctx, QueueBatchMirror, &job); err != nil {
		return err
	}
	q.logger.Debug("enqueued batch mirror job", zap.String("job_id", job.ID), zap.String("batch_id", payload.BatchID))
	return nil
}

// Dequeue waits up to PollTimeout for a job. It returns a nil job when none arrived.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, PollTimeout, QueueBatchMirror).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with incremented attempts. If attempts >= MaxAttempts, pushes to DLQ instead.
func (q *Queue) Retry(ctx context.Context, job *Job) error {
	job.Attempts++
	if job.Attempts >= MaxAttempts {
		if err := q.push(ctx, QueueDLQ, job); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempts))
		return nil
	}
	if err := q.push(ctx, QueueBatchMirror, job); err != nil {
		return err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempts", job.Attempts))
	return nil
}

func (q *Queue) push(ctx context.Context, key string, job *Job) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, key, raw).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}
