package imagery

import (
	"context"
	"time"
)

// Provider port ke layanan citra satelit remote.
// Submit export job untuk area + rentang tanggal, lapor status job, itu saja.
type Provider interface {
	CreateExportTasks(ctx context.Context, polygon [][]float64, start, end time.Time, folder string) ([]ExportTask, error)
	JobStatus(ctx context.Context, jobID string) (JobStatus, error)
}

// BlobStore port ke staging area tempat provider menaruh file hasil export.
// Staging bersifat transient: file dihapus setelah diunduh dan disimpan.
type BlobStore interface {
	List(ctx context.Context, folder string) ([]string, error)
	Download(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// Repository port cache AcquiredImage
type Repository interface {
	ListByRange(ctx context.Context, reservoirID int64, start, end time.Time) ([]*AcquiredImage, error)
	// GetOrCreate idempoten terhadap natural key (reservoir, date):
	// kalau row sudah ada, kembalikan yang lama dan created=false.
	GetOrCreate(ctx context.Context, img *AcquiredImage) (*AcquiredImage, bool, error)
}
