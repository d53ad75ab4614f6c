package mysql

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/analysis"
)

const duplicateEntryErrNo = 1062

type ModelRepository struct {
	db *sql.DB
}

func NewModelRepository(db *sql.DB) *ModelRepository {
	return &ModelRepository{db: db}
}

// Get model + scaler blobs beserta nama parameternya
func (r *ModelRepository) Get(ctx context.Context, id int64) (*domain.Model, error) {
	const q = `
SELECT m.id, m.reservoir_id, m.parameter_id, p.name, m.model_file, m.scaler_file, m.model_file_hash, m.created_at
FROM machine_learning_model m
JOIN parameter p ON p.id = m.parameter_id
WHERE m.id=? LIMIT 1;
`
	var m domain.Model
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&m.ID, &m.ReservoirID, &m.ParameterID, &m.ParameterName,
		&m.ModelFile, &m.ScalerFile, &m.ModelFileHash, &m.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// Create daftarkan model baru. Hash konten jadi pencegah upload duplikat:
// unique constraint di model_file_hash menolak bytes yang sama dua kali.
func (r *ModelRepository) Create(ctx context.Context, m *domain.Model) error {
	if m.ModelFileHash == "" {
		m.ModelFileHash = domain.HashFile(m.ModelFile)
	}
	const q = `
INSERT INTO machine_learning_model
(reservoir_id, parameter_id, model_file, scaler_file, model_file_hash, created_at)
VALUES (?,?,?,?,?,NOW());
`
	res, err := r.db.ExecContext(ctx, q,
		m.ReservoirID, m.ParameterID, m.ModelFile, m.ScalerFile, m.ModelFileHash,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntryErrNo {
			return domain.ErrDuplicateModel
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}
