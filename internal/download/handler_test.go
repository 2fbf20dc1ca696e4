package download

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscout/backend/internal/models"
)

func newDownloadRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/download", h.Download)
	r.GET("/api/batches", h.ListBatches)
	return r
}

func postDownload(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/download", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestDownloadHandler_Success(t *testing.T) {
	srv := newAssetServer(t)
	root := t.TempDir()
	r := newDownloadRouter(NewHandler(NewOrchestrator(root, 2, NewFetcher(5*time.Second), nil), nil))

	body := fmt.Sprintf(`{"downloadType":"images","ads":[{"id":"42","page_name":"Acme","ad_creative_images":[{"url":"%s/img/42"}]}]}`, srv.URL)
	w := postDownload(r, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var got struct {
		Success   bool                `json:"success"`
		Message   string              `json:"message"`
		BatchDir  string              `json:"batchDir"`
		BatchID   string              `json:"batchId"`
		FileCount int                 `json:"fileCount"`
		Results   []models.TaskResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, 1, got.FileCount)
	assert.Equal(t, filepath.Join(root, got.BatchID), got.BatchDir)
	require.Len(t, got.Results, 1)
	assert.Equal(t, "42_image_0.jpg", got.Results[0].FileName)
	assert.FileExists(t, filepath.Join(got.BatchDir, "42_image_0.jpg"))
}

func TestDownloadHandler_EmptyAdsCreatesNoDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "downloads")
	r := newDownloadRouter(NewHandler(NewOrchestrator(root, 2, NewFetcher(time.Second), nil), nil))

	for _, body := range []string{`{"ads":[]}`, `{}`, `{"ads":[],"downloadType":"images"}`} {
		w := postDownload(r, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Contains(t, w.Body.String(), `"error"`)
	}
	assert.NoDirExists(t, root)
}

func TestDownloadHandler_BadRequests(t *testing.T) {
	r := newDownloadRouter(NewHandler(NewOrchestrator(t.TempDir(), 2, NewFetcher(time.Second), nil), nil))

	w := postDownload(r, `{"ads":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postDownload(r, `{"ads":[{"id":"1"}],"downloadType":"gifs"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "gifs")
}

func TestDownloadHandler_PartialFailureIs500(t *testing.T) {
	srv := newAssetServer(t)
	r := newDownloadRouter(NewHandler(NewOrchestrator(t.TempDir(), 2, NewFetcher(5*time.Second), nil), nil))

	body := fmt.Sprintf(`{"ads":[
		{"id":"1","ad_creative_images":[{"url":"%[1]s/img/1"}]},
		{"id":"2","ad_creative_images":[{"url":"%[1]s/missing/2"}]}
	]}`, srv.URL)
	w := postDownload(r, body)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var got struct {
		Error    string              `json:"error"`
		Details  string              `json:"details"`
		BatchDir string              `json:"batchDir"`
		Failed   int                 `json:"failed"`
		Results  []models.TaskResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotEmpty(t, got.Error)
	assert.Contains(t, got.Details, "404")
	assert.Equal(t, 1, got.Failed)
	assert.Len(t, got.Results, 2)

	_, err := os.Stat(filepath.Join(got.BatchDir, "1_image_0.jpg"))
	assert.NoError(t, err, "sibling file is kept")
}

type stubRunner struct{ err error }

func (s stubRunner) DownloadBatch(ctx context.Context, ads []models.AdRecord, downloadType string) (*models.BatchResult, error) {
	return nil, s.err
}

func TestDownloadHandler_UnexpectedError(t *testing.T) {
	r := newDownloadRouter(NewHandler(stubRunner{err: errors.New("disk full")}, nil))
	w := postDownload(r, `{"ads":[{"id":"1"}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"download failed","details":"disk full"}`, w.Body.String())
}

type stubHistory struct {
	list  []*models.BatchRecord
	limit int
	err   error
}

func (s *stubHistory) ListRecent(ctx context.Context, limit int) ([]*models.BatchRecord, error) {
	s.limit = limit
	return s.list, s.err
}

func TestListBatches(t *testing.T) {
	h := NewHandler(stubRunner{}, nil)
	r := newDownloadRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/batches", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	history := &stubHistory{list: []*models.BatchRecord{{ID: "batch-1", Status: models.BatchCompleted}}}
	h.SetHistory(history)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/batches?limit=500", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, maxHistoryLimit, history.limit)
	assert.Contains(t, w.Body.String(), `"id":"batch-1"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/batches?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	history.list, history.err = nil, errors.New("db down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/batches", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, defaultHistoryLimit, history.limit)
}
