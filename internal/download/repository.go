package download

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adscout/backend/internal/models"
)

// Repository handles download_batches persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a batch history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts a settled batch. Re-recording the same batch is a no-op.
func (r *Repository) Record(ctx context.Context, rec models.BatchRecord) error {
	const q = `INSERT INTO download_batches (id, dir, download_type, ad_count, file_count, failed_count, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, rec.ID, rec.Dir, rec.DownloadType, rec.AdCount, rec.FileCount, rec.FailedCount, rec.Status, rec.CreatedAt)
	return err
}

// ListRecent returns up to limit batches, newest first.
func (r *Repository) ListRecent(ctx context.Context, limit int) ([]*models.BatchRecord, error) {
	const q = `SELECT id, dir, download_type, ad_count, file_count, failed_count, status, created_at
		FROM download_batches
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.BatchRecord
	for rows.Next() {
		var b models.BatchRecord
		if err := rows.Scan(&b.ID, &b.Dir, &b.DownloadType, &b.AdCount, &b.FileCount, &b.FailedCount, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}
