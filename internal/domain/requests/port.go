package requests

import "context"

// Repository port (interface untuk persistence)
type Repository interface {
	Save(ctx context.Context, r *AnalysisRequest) error
	Get(ctx context.Context, id RequestID) (*AnalysisRequest, error)
	ListByStatus(ctx context.Context, status Status, limit int) ([]*AnalysisRequest, error)
	UpdateStatus(ctx context.Context, id RequestID, status Status, errorMessage string) error
}
