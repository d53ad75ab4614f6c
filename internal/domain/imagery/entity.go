package imagery

import "time"

// JobStatus enum status export job di provider
type JobStatus string

const (
	JobPending   JobStatus = "PENDING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
	JobCancelled JobStatus = "CANCELLED"
)

// ExportTask satu export job yang disubmit ke provider.
// Provider yang menentukan bucketing harian per orbit, bukan kita.
type ExportTask struct {
	JobID           string    `json:"job_id"`
	Date            time.Time `json:"date"`
	Filename        string    `json:"filename"`
	CloudPercentage float64   `json:"cloud_percentage"`
}

// AcquiredImage satu capture satelit untuk satu reservoir pada satu tanggal.
// Natural key (reservoir_id, image_date); append-only cache, tidak pernah dimutasi.
type AcquiredImage struct {
	ID              int64     `json:"id"`
	ReservoirID     int64     `json:"reservoir_id"`
	ImageDate       time.Time `json:"image_date"`
	ImageFile       []byte    `json:"-"`
	CloudPercentage float64   `json:"cloud_percentage"`
	CreatedAt       time.Time `json:"created_at"`
}
