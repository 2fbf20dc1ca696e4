// Package main runs the standalone batch mirror worker (finished batches to S3).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/adscout/backend/config"
	"github.com/adscout/backend/internal/logs"
	"github.com/adscout/backend/internal/worker"
	"github.com/adscout/backend/pkg/queue"
	"github.com/adscout/backend/pkg/redis"
	"github.com/adscout/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logs.NewLogger(cfg.Logs.Level, logs.NewBuffer(cfg.Logs.BufferSize))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.Redis.Enabled() || !cfg.AWS.MirrorEnabled() {
		logger.Fatal("worker needs REDIS_ADDR, AWS_REGION and AWS_S3_BATCH_BUCKET")
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Client, err := storage.NewS3(ctx, storage.S3Config{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		Bucket:          cfg.AWS.BatchBucket,
		Prefix:          cfg.AWS.BatchPrefix,
	}, logger)
	if err != nil {
		logger.Fatal("s3", zap.Error(err))
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewMirrorProcessor(s3Client, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("bucket", cfg.AWS.BatchBucket))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	select {
	case <-done:
	case <-time.After(queue.PollTimeout + 2*time.Second):
		logger.Warn("worker did not stop in time")
	}
	logger.Info("worker stopped")
}
