package requests

import (
	"time"
)

// ID tipe untuk AnalysisRequest
type RequestID string

// Aggregate Root: AnalysisRequest
// Satu request = satu unit kerja pipeline (download citra + inferensi).
type AnalysisRequest struct {
	ID              RequestID        `json:"id"`
	ModelIDs        []int64          `json:"model_ids"`
	StartDate       time.Time        `json:"start_date"`
	EndDate         time.Time        `json:"end_date"`
	Status          Status           `json:"status"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	Plan            *AcquisitionPlan `json:"plan,omitempty"`
	AnalysisGroupID int64            `json:"analysis_group_id,omitempty"`
	CreatedBy       string           `json:"created_by,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// AcquisitionPlan catatan pekerjaan akuisisi yang dimiliki pipeline,
// disimpan sebagai JSON di row request untuk inspeksi operator.
type AcquisitionPlan struct {
	Jobs  []PlannedJob `json:"jobs"`
	Files []string     `json:"files"`
}

// PlannedJob satu export job yang sudah disubmit ke provider
type PlannedJob struct {
	JobID           string  `json:"job_id"`
	Date            string  `json:"date"`
	Filename        string  `json:"filename"`
	CloudPercentage float64 `json:"cloud_percentage"`
}

// Terminal reports whether the request can no longer move forward.
func (r *AnalysisRequest) Terminal() bool {
	return r.Status.Terminal()
}
