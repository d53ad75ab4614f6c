package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/reservoirs"
)

type ReservoirRepository struct {
	db *sql.DB
}

func NewReservoirRepository(db *sql.DB) *ReservoirRepository {
	return &ReservoirRepository{db: db}
}

// Get reservoir by id, koordinat polygon disimpan sebagai JSON
func (r *ReservoirRepository) Get(ctx context.Context, id int64) (*domain.Reservoir, error) {
	const q = `
SELECT id, name, coordinates, created_at
FROM reservoir
WHERE id=$1 LIMIT 1;`
	var res domain.Reservoir
	var coords string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&res.ID, &res.Name, &coords, &res.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(coords), &res.Coordinates); err != nil {
		return nil, fmt.Errorf("decoding reservoir coordinates: %w", err)
	}
	return &res, nil
}
