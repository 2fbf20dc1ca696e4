package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/adscout/backend/pkg/queue"
)

// FileUploader uploads a local file under an object key.
type FileUploader interface {
	BatchKey(batchID, filename string) string
	UploadFile(ctx context.Context, key, localPath string) (string, error)
}

// JobQueue is the part of the job queue the worker consumes.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// MirrorProcessor processes batch mirror jobs: upload every listed batch file to S3.
type MirrorProcessor struct {
	store   FileUploader
	queue   JobQueue
	logger  *zap.Logger
	backoff time.Duration
}

// NewMirrorProcessor creates a batch mirror processor.
func NewMirrorProcessor(store FileUploader, q JobQueue, logger *zap.Logger) *MirrorProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MirrorProcessor{store: store, queue: q, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one batch mirror job.
func (p *MirrorProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeBatchMirror {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.BatchMirrorPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.BatchID == "" || payload.BatchDir == "" {
		return fmt.Errorf("batch mirror job %s has no batch", job.ID)
	}

	for _, name := range payload.Files {
		key := p.store.BatchKey(payload.BatchID, name)
		if _, err := p.store.UploadFile(ctx, key, filepath.Join(payload.BatchDir, filepath.Base(name))); err != nil {
			return fmt.Errorf("s3 upload: %w", err)
		}
	}

	p.logger.Info("batch mirror completed", zap.String("batch_id", payload.BatchID), zap.Int("files", len(payload.Files)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *MirrorProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("mirror worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *MirrorProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
