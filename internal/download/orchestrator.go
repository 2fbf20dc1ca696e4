package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/adscout/backend/internal/apperr"
	"github.com/adscout/backend/internal/metrics"
	"github.com/adscout/backend/internal/models"
	"github.com/adscout/backend/pkg/queue"
)

// DefaultMaxConcurrent bounds in-flight asset downloads when no limit is configured.
const DefaultMaxConcurrent = 8

// AssetFetcher downloads one URL into a local file.
type AssetFetcher interface {
	Fetch(ctx context.Context, url, path string) (int64, error)
}

// HistoryRecorder persists a settled batch.
type HistoryRecorder interface {
	Record(ctx context.Context, rec models.BatchRecord) error
}

// MirrorEnqueuer schedules a settled batch for upload to object storage.
type MirrorEnqueuer interface {
	EnqueueBatchMirror(ctx context.Context, payload queue.BatchMirrorPayload) error
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Orchestrator turns a list of ads into a batch directory of assets plus a manifest.
type Orchestrator struct {
	root          string
	maxConcurrent int
	fetcher       AssetFetcher
	history       HistoryRecorder
	mirror        MirrorEnqueuer
	metrics       *metrics.Metrics
	logger        *zap.Logger
	now           func() time.Time
}

// NewOrchestrator creates an orchestrator writing batches under root.
func NewOrchestrator(root string, maxConcurrent int, fetcher AssetFetcher, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &Orchestrator{
		root:          root,
		maxConcurrent: maxConcurrent,
		fetcher:       fetcher,
		logger:        logger,
		now:           time.Now,
	}
}

// SetHistory enables batch history. Optional.
func (o *Orchestrator) SetHistory(h HistoryRecorder) { o.history = h }

// SetMirror enables S3 mirroring of finished batches. Optional.
func (o *Orchestrator) SetMirror(m MirrorEnqueuer) { o.mirror = m }

// SetMetrics enables Prometheus metrics. Optional.
func (o *Orchestrator) SetMetrics(m *metrics.Metrics) { o.metrics = m }

// DownloadBatch allocates a batch directory, writes the manifest and fetches every asset
// selected by downloadType. Every task settles; failed tasks leave their siblings' files on disk.
// When any task failed the result is returned together with an *apperr.BatchError.
func (o *Orchestrator) DownloadBatch(ctx context.Context, ads []models.AdRecord, downloadType string) (*models.BatchResult, error) {
	if len(ads) == 0 {
		return nil, apperr.Validation("no ads provided for download")
	}
	dt, err := models.ParseDownloadType(downloadType)
	if err != nil {
		return nil, apperr.Validation("%v", err)
	}

	batch, err := o.allocate(dt)
	if err != nil {
		return nil, err
	}
	log := o.logger.With(zap.String("batch_id", batch.ID))
	log.Info("batch started", zap.Int("ads", len(ads)), zap.String("download_type", string(dt)))

	if err := writeManifest(batch.Dir, NewManifest(batch, ads)); err != nil {
		return nil, err
	}

	tasks := o.tasks(batch, ads, log)
	results, errs := o.run(ctx, tasks, log)

	res := &models.BatchResult{
		BatchID:   batch.ID,
		BatchDir:  batch.Dir,
		FileCount: len(tasks),
		Failed:    len(errs),
		Succeeded: len(tasks) - len(errs),
		Results:   results,
	}

	status := models.BatchCompleted
	if len(errs) > 0 {
		status = models.BatchPartial
	}
	o.metrics.BatchFinished(status)
	o.afterSettle(context.WithoutCancel(ctx), batch, len(ads), res, status, log)

	if len(errs) > 0 {
		log.Warn("batch finished with failures", zap.Int("failed", res.Failed), zap.Int("total", res.FileCount))
		return res, &apperr.BatchError{Failed: len(errs), Total: len(tasks), Errs: errs}
	}
	log.Info("batch finished", zap.Int("files", res.FileCount), zap.String("dir", batch.Dir))
	return res, nil
}

// allocate creates a fresh batch directory. A name taken by a concurrent batch gets a short uuid suffix.
func (o *Orchestrator) allocate(dt models.DownloadType) (models.DownloadBatch, error) {
	if err := os.MkdirAll(o.root, 0o755); err != nil {
		return models.DownloadBatch{}, fmt.Errorf("create downloads root: %w", err)
	}
	created := o.now()
	base := batchDirName(created)
	name := base
	for attempt := 0; attempt < 5; attempt++ {
		dir := filepath.Join(o.root, name)
		err := os.Mkdir(dir, 0o755)
		if err == nil {
			return models.DownloadBatch{ID: name, Dir: dir, DownloadType: dt, CreatedAt: created}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return models.DownloadBatch{}, fmt.Errorf("create batch directory: %w", err)
		}
		name = base + "-" + uuid.NewString()[:8]
	}
	return models.DownloadBatch{}, fmt.Errorf("create batch directory: %s already exists", base)
}

// tasks enumerates the assets of ads selected by the batch's download type.
func (o *Orchestrator) tasks(batch models.DownloadBatch, ads []models.AdRecord, log *zap.Logger) []models.AssetDownloadTask {
	var out []models.AssetDownloadTask
	seen := make(map[string]bool)
	add := func(ad models.AdRecord, kind models.AssetKind, index int, url string) {
		if url == "" {
			return
		}
		name := models.AssetFileName(safeName(ad.ID), kind, index)
		if seen[name] {
			log.Warn("skipping duplicate asset", zap.String("ad_id", ad.ID), zap.String("file", name))
			return
		}
		seen[name] = true
		out = append(out, models.AssetDownloadTask{
			AdID:     ad.ID,
			Kind:     kind,
			Index:    index,
			URL:      url,
			FileName: name,
			Path:     filepath.Join(batch.Dir, name),
		})
	}
	for _, ad := range ads {
		if batch.DownloadType.IncludesImages() {
			for i, img := range ad.AdCreativeImages {
				add(ad, models.AssetImage, i, img.URL)
			}
		}
		if batch.DownloadType.IncludesVideos() {
			for i, v := range ad.AdCreativeVideos {
				add(ad, models.AssetVideo, i, v.VideoURL)
			}
		}
	}
	return out
}

// run executes tasks with at most maxConcurrent in flight and waits for all of them.
func (o *Orchestrator) run(ctx context.Context, tasks []models.AssetDownloadTask, log *zap.Logger) ([]models.TaskResult, []error) {
	results := make([]models.TaskResult, len(tasks))
	taskErrs := make([]error, len(tasks))

	var g errgroup.Group
	g.SetLimit(o.maxConcurrent)
	for i, task := range tasks {
		g.Go(func() error {
			o.metrics.DownloadStarted()
			n, err := o.fetcher.Fetch(ctx, task.URL, task.Path)
			r := models.TaskResult{
				AdID:     task.AdID,
				Kind:     task.Kind,
				Index:    task.Index,
				URL:      task.URL,
				FileName: task.FileName,
				Bytes:    n,
				Status:   models.TaskOK,
			}
			if err != nil {
				r.Status = models.TaskFailed
				r.Error = err.Error()
				taskErrs[i] = err
				log.Warn("asset download failed", zap.String("ad_id", task.AdID), zap.String("file", task.FileName), zap.Error(err))
			} else {
				log.Debug("asset downloaded", zap.String("file", task.FileName), zap.Int64("bytes", n))
			}
			o.metrics.DownloadFinished(string(task.Kind), r.Status, n)
			results[i] = r
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, err := range taskErrs {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errs
}

// afterSettle records history and schedules mirroring. Failures are logged only.
func (o *Orchestrator) afterSettle(ctx context.Context, batch models.DownloadBatch, adCount int, res *models.BatchResult, status string, log *zap.Logger) {
	if o.history != nil {
		rec := models.BatchRecord{
			ID:           batch.ID,
			Dir:          batch.Dir,
			DownloadType: string(batch.DownloadType),
			AdCount:      adCount,
			FileCount:    res.FileCount,
			FailedCount:  res.Failed,
			Status:       status,
			CreatedAt:    batch.CreatedAt,
		}
		if err := o.history.Record(ctx, rec); err != nil {
			log.Warn("record batch history failed", zap.Error(err))
		}
	}
	if o.mirror != nil {
		files := []string{ManifestFile}
		for _, r := range res.Results {
			if r.Status == models.TaskOK {
				files = append(files, r.FileName)
			}
		}
		payload := queue.BatchMirrorPayload{BatchID: batch.ID, BatchDir: batch.Dir, Files: files}
		if err := o.mirror.EnqueueBatchMirror(ctx, payload); err != nil {
			log.Warn("enqueue batch mirror failed", zap.Error(err))
		}
	}
}

func safeName(id string) string {
	if id == "" {
		return "unknown"
	}
	return unsafeNameChars.ReplaceAllString(id, "_")
}
