package postgres

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/analysis"
)

func TestModelRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewModelRepository(db)

	m := &domain.Model{
		ReservoirID: 7,
		ParameterID: 10,
		ModelFile:   []byte(`{"type":"linear"}`),
		ScalerFile:  []byte(`{"mean":[],"scale":[]}`),
	}
	wantHash := domain.HashFile(m.ModelFile)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO machine_learning_model")).
		WithArgs(int64(7), int64(10), m.ModelFile, m.ScalerFile, wantHash).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	require.NoError(t, repo.Create(context.Background(), m))
	assert.Equal(t, int64(5), m.ID)
	assert.Equal(t, wantHash, m.ModelFileHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModelRepository_CreateDuplicateHashRejected(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewModelRepository(db)

	m := &domain.Model{
		ReservoirID: 7,
		ParameterID: 10,
		ModelFile:   []byte(`{"type":"linear"}`),
		ScalerFile:  []byte(`{}`),
	}

	// unique constraint di model_file_hash -> unique_violation 23505
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO machine_learning_model")).
		WithArgs(int64(7), int64(10), m.ModelFile, m.ScalerFile, domain.HashFile(m.ModelFile)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = repo.Create(context.Background(), m)
	assert.ErrorIs(t, err, domain.ErrDuplicateModel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
