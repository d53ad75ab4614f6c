package mysql

import (
	"context"
	"database/sql"
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
WHERE reservoir_id=? AND image_date BETWEEN ? AND ?
ORDER BY image_date ASC;
`
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
// Unique constraint (reservoir_id, image_date) yang menjaga idempotensi,
// bukan read-check di aplikasi, jadi aman juga saat akuisisi konkuren.
func (r *ImageRepository) GetOrCreate(ctx context.Context, img *domain.AcquiredImage) (*domain.AcquiredImage, bool, error) {
	const ins = `
INSERT IGNORE INTO acquired_image (reservoir_id, image_date, image_file, cloud_percentage, created_at)
VALUES (?,?,?,?,NOW());
`
	res, err := r.db.ExecContext(ctx, ins, img.ReservoirID, img.ImageDate, img.ImageFile, img.CloudPercentage)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return nil, false, err
		}
		img.ID = id
		return img, true, nil
	}

	// row sudah ada, ambil yang lama
	const sel = `
SELECT id, reservoir_id, image_date, image_file, cloud_percentage, created_at
FROM acquired_image
WHERE reservoir_id=? AND image_date=? LIMIT 1;
`
	var existing domain.AcquiredImage
	if err := r.db.QueryRowContext(ctx, sel, img.ReservoirID, img.ImageDate).Scan(
		&existing.ID, &existing.ReservoirID, &existing.ImageDate, &existing.ImageFile, &existing.CloudPercentage, &existing.CreatedAt,
	); err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}
