package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/imagery"
)

type ImageRepository struct {
	db *sql.DB
}

func NewImageRepository(db *sql.DB) *ImageRepository {
	return &ImageRepository{db: db}
}

// ListByRange citra tercache untuk satu reservoir, urut tanggal naik
func (r *ImageRepository) ListByRange(ctx context.Context, reservoirID int64, start, end time.Time) ([]*domain.AcquiredImage, error) {
	const q = `
SELECT id, reservoir_id, image_date, image_file, cloud_percentage, created_at
FROM acquired_image
WHERE reservoir_id=$1 AND image_date BETWEEN $2 AND $3
ORDER BY image_date ASC;`
	rows, err := r.db.QueryContext(ctx, q, reservoirID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AcquiredImage
	for rows.Next() {
		var img domain.AcquiredImage
		if err := rows.Scan(
			&img.ID, &img.ReservoirID, &img.ImageDate, &img.ImageFile, &img.CloudPercentage, &img.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &img)
	}
	return out, rows.Err()
}

// GetOrCreate tulis row baru atau kembalikan yang lama.
// ON CONFLICT DO NOTHING + RETURNING id: kalau tidak ada row kembali,
// berarti constraint (reservoir_id, image_date) sudah terisi.
func (r *ImageRepository) GetOrCreate(ctx context.Context, img *domain.AcquiredImage) (*domain.AcquiredImage, bool, error) {
	const ins = `
INSERT INTO acquired_image (reservoir_id, image_date, image_file, cloud_percentage, created_at)
VALUES ($1,$2,$3,$4,NOW())
ON CONFLICT (reservoir_id, image_date) DO NOTHING
RETURNING id;`
	var id int64
	err := r.db.QueryRowContext(ctx, ins, img.ReservoirID, img.ImageDate, img.ImageFile, img.CloudPercentage).Scan(&id)
	switch {
	case err == nil:
		img.ID = id
		return img, true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, err
	}

	// row sudah ada, ambil yang lama
	const sel = `
SELECT id, reservoir_id, image_date, image_file, cloud_percentage, created_at
FROM acquired_image
WHERE reservoir_id=$1 AND image_date=$2 LIMIT 1;`
	var existing domain.AcquiredImage
	if err := r.db.QueryRowContext(ctx, sel, img.ReservoirID, img.ImageDate).Scan(
		&existing.ID, &existing.ReservoirID, &existing.ImageDate, &existing.ImageFile, &existing.CloudPercentage, &existing.CreatedAt,
	); err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}
