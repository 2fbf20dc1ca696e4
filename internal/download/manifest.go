package download

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/renameio/v2"

	"github.com/adscout/backend/internal/models"
)

// ManifestFile is the name of the per-batch manifest.
const ManifestFile = "metadata.json"

// Manifest is the human-readable summary written into every batch directory.
type Manifest struct {
	BatchID      string           `json:"batchId"`
	DownloadDate string           `json:"downloadDate"`
	DownloadType string           `json:"downloadType"`
	Ads          []ManifestAdItem `json:"ads"`
}

// ManifestAdItem summarizes one ad. Text-array fields keep their first element only.
type ManifestAdItem struct {
	ID                        string `json:"id"`
	PageName                  string `json:"pageName,omitempty"`
	AdCreativeBody            string `json:"adCreativeBody,omitempty"`
	AdCreativeLinkTitle       string `json:"adCreativeLinkTitle,omitempty"`
	AdCreativeLinkDescription string `json:"adCreativeLinkDescription,omitempty"`
	AdCreativeLinkURL         string `json:"adCreativeLinkUrl,omitempty"`
	AdSnapshotURL             string `json:"adSnapshotUrl,omitempty"`
	AdDeliveryStartTime       string `json:"adDeliveryStartTime,omitempty"`
	AdDeliveryStopTime        string `json:"adDeliveryStopTime,omitempty"`
}

// NewManifest builds the manifest of batch for ads.
func NewManifest(batch models.DownloadBatch, ads []models.AdRecord) Manifest {
	items := make([]ManifestAdItem, 0, len(ads))
	for _, ad := range ads {
		items = append(items, ManifestAdItem{
			ID:                        ad.ID,
			PageName:                  ad.PageName,
			AdCreativeBody:            models.First(ad.AdCreativeBodies),
			AdCreativeLinkTitle:       models.First(ad.AdCreativeLinkTitles),
			AdCreativeLinkDescription: models.First(ad.AdCreativeLinkDescriptions),
			AdCreativeLinkURL:         ad.AdCreativeLinkURL,
			AdSnapshotURL:             ad.AdSnapshotURL,
			AdDeliveryStartTime:       ad.AdDeliveryStartTime,
			AdDeliveryStopTime:        ad.AdDeliveryStopTime,
		})
	}
	return Manifest{
		BatchID:      batch.ID,
		DownloadDate: batch.CreatedAt.UTC().Format(isoMillis),
		DownloadType: string(batch.DownloadType),
		Ads:          items,
	}
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// writeManifest writes m into dir atomically: temp file, fsync, rename.
func writeManifest(dir string, m Manifest) error {
	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	pending, err := renameio.NewPendingFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return fmt.Errorf("create pending manifest: %w", err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(body); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

var dirNameReplacer = strings.NewReplacer(":", "-", ".", "-")

// batchDirName derives the directory name from t: batch-2024-05-01T10-20-30-123Z.
func batchDirName(t time.Time) string {
	return "batch-" + dirNameReplacer.Replace(t.UTC().Format(isoMillis))
}
