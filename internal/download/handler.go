package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/adscout/backend/internal/apperr"
	"github.com/adscout/backend/internal/models"
	"github.com/adscout/backend/pkg/response"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// BatchRunner runs one download batch.
type BatchRunner interface {
	DownloadBatch(ctx context.Context, ads []models.AdRecord, downloadType string) (*models.BatchResult, error)
}

// HistoryLister lists recorded batches.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]*models.BatchRecord, error)
}

// DownloadRequest is the body for POST /api/download.
type DownloadRequest struct {
	Ads          []models.AdRecord `json:"ads"`
	DownloadType string            `json:"downloadType"`
}

// Handler handles download endpoints.
type Handler struct {
	runner  BatchRunner
	history HistoryLister
	logger  *zap.Logger
}

// NewHandler creates a download handler.
func NewHandler(runner BatchRunner, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{runner: runner, logger: logger}
}

// SetHistory enables GET /api/batches.
func (h *Handler) SetHistory(history HistoryLister) { h.history = history }

// Download handles POST /api/download.
func (h *Handler) Download(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	res, err := h.runner.DownloadBatch(c.Request.Context(), req.Ads, req.DownloadType)
	var batchErr *apperr.BatchError
	switch {
	case err == nil:
		response.OK(c, gin.H{
			"success":   true,
			"message":   fmt.Sprintf("%d files downloaded to %s", res.FileCount, res.BatchDir),
			"batchDir":  res.BatchDir,
			"batchId":   res.BatchID,
			"fileCount": res.FileCount,
			"results":   res.Results,
		})
	case errors.Is(err, apperr.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.As(err, &batchErr) && res != nil:
		response.JSON(c, http.StatusInternalServerError, gin.H{
			"error":    fmt.Sprintf("%d of %d downloads failed", batchErr.Failed, batchErr.Total),
			"details":  err.Error(),
			"batchDir": res.BatchDir,
			"batchId":  res.BatchID,
			"failed":   res.Failed,
			"results":  res.Results,
		})
	default:
		h.logger.Error("download batch failed", zap.Error(err))
		response.JSON(c, http.StatusInternalServerError, gin.H{"error": "download failed", "details": err.Error()})
	}
}

// ListBatches handles GET /api/batches.
func (h *Handler) ListBatches(c *gin.Context) {
	if h.history == nil {
		response.ServiceUnavailable(c, "batch history is not configured")
		return
	}
	limit := defaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			response.BadRequest(c, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}
	list, err := h.history.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list batches failed", zap.Error(err))
		response.Internal(c, "failed to list batches")
		return
	}
	if list == nil {
		list = []*models.BatchRecord{}
	}
	response.OK(c, list)
}
