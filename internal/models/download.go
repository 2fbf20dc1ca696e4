package models

import (
	"fmt"
	"time"
)

// DownloadType selects which asset classes a batch fetches.
type DownloadType string

const (
	DownloadAll    DownloadType = "all"
	DownloadImages DownloadType = "images"
	DownloadVideos DownloadType = "videos"
	// DownloadText writes the manifest only.
	DownloadText DownloadType = "text"
)

// ParseDownloadType validates s. An empty value means DownloadAll.
func ParseDownloadType(s string) (DownloadType, error) {
	switch t := DownloadType(s); t {
	case "":
		return DownloadAll, nil
	case DownloadAll, DownloadImages, DownloadVideos, DownloadText:
		return t, nil
	default:
		return "", fmt.Errorf("unknown download type %q", s)
	}
}

// IncludesImages reports whether image assets are fetched for t.
func (t DownloadType) IncludesImages() bool { return t == DownloadAll || t == DownloadImages }

// IncludesVideos reports whether video assets are fetched for t.
func (t DownloadType) IncludesVideos() bool { return t == DownloadAll || t == DownloadVideos }

// AssetKind is the class of a creative asset.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetVideo AssetKind = "video"
)

// Ext returns the file extension used on disk for k.
func (k AssetKind) Ext() string {
	if k == AssetVideo {
		return "mp4"
	}
	return "jpg"
}

// AssetDownloadTask is one asset to fetch into a batch directory.
type AssetDownloadTask struct {
	AdID     string    `json:"ad_id"`
	Kind     AssetKind `json:"kind"`
	Index    int       `json:"index"`
	URL      string    `json:"url"`
	FileName string    `json:"file_name"`
	Path     string    `json:"-"`
}

// AssetFileName is the deterministic on-disk name {adId}_{kind}_{index}.{ext}.
func AssetFileName(adID string, kind AssetKind, index int) string {
	return fmt.Sprintf("%s_%s_%d.%s", adID, kind, index, kind.Ext())
}

// Task outcome statuses.
const (
	TaskOK     = "ok"
	TaskFailed = "failed"
)

// TaskResult is the settled outcome of one AssetDownloadTask.
type TaskResult struct {
	AdID     string    `json:"adId"`
	Kind     AssetKind `json:"kind"`
	Index    int       `json:"index"`
	URL      string    `json:"url"`
	FileName string    `json:"fileName"`
	Bytes    int64     `json:"bytes"`
	Status   string    `json:"status"`
	Error    string    `json:"error,omitempty"`
}

// DownloadBatch is a batch directory allocated for one download request.
type DownloadBatch struct {
	ID           string
	Dir          string
	DownloadType DownloadType
	CreatedAt    time.Time
}

// BatchResult aggregates the outcome of a batch.
type BatchResult struct {
	BatchID   string       `json:"batchId"`
	BatchDir  string       `json:"batchDir"`
	FileCount int          `json:"fileCount"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Results   []TaskResult `json:"results"`
}

// Batch history statuses.
const (
	BatchCompleted = "completed"
	BatchPartial   = "partial"
)

// BatchRecord is a row of batch history.
type BatchRecord struct {
	ID           string    `json:"id"`
	Dir          string    `json:"dir"`
	DownloadType string    `json:"downloadType"`
	AdCount      int       `json:"adCount"`
	FileCount    int       `json:"fileCount"`
	FailedCount  int       `json:"failedCount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}
