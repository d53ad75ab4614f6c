package reservoirs

import (
	"context"
	"time"
)

// Reservoir area perairan yang dimonitor. CRUD-nya diurus di tempat lain;
// pipeline hanya butuh nama dan polygon untuk export job.
type Reservoir struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Coordinates [][]float64 `json:"coordinates"` // pasangan [lon, lat]
	CreatedAt   time.Time   `json:"created_at"`
}

// Repository read-only port
type Repository interface {
	Get(ctx context.Context, id int64) (*Reservoir, error)
}
