package requests

// Status enum
type Status string

const (
	StatusQueued            Status = "QUEUED"
	StatusDownloadingImages Status = "DOWNLOADING_IMAGES"
	StatusProcessingImages  Status = "PROCESSING_IMAGES"
	StatusCancelled         Status = "CANCELLED"
	StatusFailed            Status = "FAILED"
	StatusCompleted         Status = "COMPLETED"
)

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFailed:
		return true
	}
	return false
}

// CanTransition validasi transisi status: maju satu arah,
// CANCELLED/FAILED bisa dicapai dari semua state non-terminal,
// dan tidak ada jalan kembali ke QUEUED kecuali re-enqueue dari FAILED.
func (s Status) CanTransition(to Status) bool {
	if s.Terminal() {
		// re-enqueue manual untuk request yang gagal
		return s == StatusFailed && to == StatusQueued
	}
	switch to {
	case StatusCancelled, StatusFailed:
		return true
	case StatusDownloadingImages:
		return s == StatusQueued
	case StatusProcessingImages:
		return s == StatusDownloadingImages
	case StatusCompleted:
		return s == StatusProcessingImages
	}
	return false
}
