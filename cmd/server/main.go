// Package main runs the Ad Library search and download server with graceful shutdown.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/adscout/backend/config"
	"github.com/adscout/backend/internal/app"
	"github.com/adscout/backend/internal/download"
	"github.com/adscout/backend/internal/logs"
	"github.com/adscout/backend/internal/worker"
	"github.com/adscout/backend/pkg/database"
	"github.com/adscout/backend/pkg/queue"
	"github.com/adscout/backend/pkg/redis"
	"github.com/adscout/backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	buf := logs.NewBuffer(cfg.Logs.BufferSize)
	logger, err := logs.NewLogger(cfg.Logs.Level, buf)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a := app.New(cfg, logger, buf, reg)

	ctx := context.Background()

	// Batch history (optional)
	if cfg.Database.Enabled() {
		pool, err := database.NewPostgresPool(ctx, cfg.Database.URL, logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		a.SetHistory(download.NewRepository(pool))
	} else {
		logger.Info("DATABASE_URL not set, batch history disabled")
	}

	// S3 mirror of finished batches (optional, needs Redis and a bucket)
	var mirrorProcessor *worker.MirrorProcessor
	if cfg.Redis.Enabled() && cfg.AWS.MirrorEnabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()

		s3Client, err := storage.NewS3(ctx, storageConfig(cfg.AWS), logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			jobQueue := queue.NewQueue(rdb.Client, logger)
			a.SetMirror(jobQueue)
			mirrorProcessor = worker.NewMirrorProcessor(s3Client, jobQueue, logger)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.Router(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (batch mirror to S3)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if mirrorProcessor != nil {
		go mirrorProcessor.Run(workerCtx)
		logger.Info("mirror worker started", zap.String("bucket", cfg.AWS.BatchBucket))
	}

	// Default token check; a failure only warns.
	go func() {
		checkCtx, cancel := context.WithTimeout(workerCtx, time.Duration(cfg.Facebook.TimeoutSec)*time.Second)
		defer cancel()
		a.CheckDefaultToken(checkCtx)
	}()

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("downloads_dir", cfg.Download.Dir))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func storageConfig(c config.AWSConfig) storage.S3Config {
	return storage.S3Config{
		Region:          c.Region,
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Bucket:          c.BatchBucket,
		Prefix:          c.BatchPrefix,
	}
}
