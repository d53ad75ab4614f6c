package postgres

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/requests"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRequestRepository_SavePlanRoundTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRequestRepository(db)

	req := &domain.AnalysisRequest{
		ID:              "req-1",
		Status:          domain.StatusDownloadingImages,
		ModelIDs:        []int64{3, 9},
		StartDate:       day("2024-01-01"),
		EndDate:         day("2024-01-31"),
		AnalysisGroupID: 42,
		CreatedBy:       "ops",
		Plan: &domain.AcquisitionPlan{
			Jobs: []domain.PlannedJob{
				{JobID: "job-1", Date: "2024-01-05", Filename: "waduk_2024-01-05", CloudPercentage: 12.5},
			},
			Files: []string{"waduk_req-1/waduk_2024-01-05.bin"},
		},
	}
	planJSON, err := json.Marshal(req.Plan)
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analysis_request")).
		WithArgs("req-1", "DOWNLOADING_IMAGES", req.StartDate, req.EndDate,
			"[3,9]", string(planJSON), int64(42), "", "ops").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Save(context.Background(), req))

	// baca balik: plan dan model_ids harus pulih utuh dari kolom JSON
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "status", "start_date", "end_date", "model_ids", "plan",
		"analysis_group_id", "error_message", "created_by", "created_at", "updated_at",
	}).AddRow("req-1", "DOWNLOADING_IMAGES", req.StartDate, req.EndDate,
		"[3,9]", string(planJSON), int64(42), "", "ops", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM analysis_request")).
		WithArgs("req-1").
		WillReturnRows(rows)

	got, err := repo.Get(context.Background(), "req-1")
	require.NoError(t, err)
	assert.Equal(t, req.ModelIDs, got.ModelIDs)
	require.NotNil(t, got.Plan)
	assert.Equal(t, req.Plan, got.Plan)
	assert.Equal(t, int64(42), got.AnalysisGroupID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepository_UpdateStatusTerminalGuard(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE analysis_request")).
		WithArgs("PROCESSING_IMAGES", "", "req-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateStatus(context.Background(), "req-1", domain.StatusProcessingImages, ""))

	// row sudah CANCELLED/COMPLETED: klausa NOT IN tidak kena row apa pun
	mock.ExpectExec(regexp.QuoteMeta("UPDATE analysis_request")).
		WithArgs("FAILED", "boom", "req-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateStatus(context.Background(), "req-1", domain.StatusFailed, "boom")
	assert.ErrorIs(t, err, domain.ErrTerminalStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}
