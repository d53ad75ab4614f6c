package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/requests"
)

type RequestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Save insert/update AnalysisRequest record.
// Status sengaja tidak ikut di-update di sini: status hanya lewat
// UpdateStatus, supaya Save yang menulis plan tidak menimpa CANCELLED
// yang masuk bersamaan dari operator.
func (r *RequestRepository) Save(ctx context.Context, req *domain.AnalysisRequest) error {
	const q = `
INSERT INTO analysis_request
(id, status, start_date, end_date, model_ids, plan, analysis_group_id, error_message, created_by, created_at, updated_at)
VALUES (?,?,?,?,?,?,?,?,?,NOW(),NOW())
ON DUPLICATE KEY UPDATE
 plan=VALUES(plan),
 analysis_group_id=VALUES(analysis_group_id),
 error_message=VALUES(error_message),
 updated_at=NOW();
`
	modelIDs, err := json.Marshal(req.ModelIDs)
	if err != nil {
		return fmt.Errorf("encoding model ids: %w", err)
	}

	var plan sql.NullString
	if req.Plan != nil {
		b, err := json.Marshal(req.Plan)
		if err != nil {
			return fmt.Errorf("encoding acquisition plan: %w", err)
		}
		plan = sql.NullString{String: string(b), Valid: true}
	}

	var groupID sql.NullInt64
	if req.AnalysisGroupID != 0 {
		groupID = sql.NullInt64{Int64: req.AnalysisGroupID, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, q,
		req.ID, req.Status, req.StartDate, req.EndDate,
		string(modelIDs), plan, groupID, req.ErrorMessage, req.CreatedBy,
	)
	return err
}

// Get by ID
func (r *RequestRepository) Get(ctx context.Context, id domain.RequestID) (*domain.AnalysisRequest, error) {
	const q = `
SELECT id, status, start_date, end_date, model_ids, plan, analysis_group_id, error_message, created_by, created_at, updated_at
FROM analysis_request
WHERE id=? LIMIT 1;
`
	return scanRequest(r.db.QueryRowContext(ctx, q, id))
}

// ListByStatus request tertua dulu, supaya antrian diproses FIFO
func (r *RequestRepository) ListByStatus(ctx context.Context, status domain.Status, limit int) ([]*domain.AnalysisRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, status, start_date, end_date, model_ids, plan, analysis_group_id, error_message, created_by, created_at, updated_at
FROM analysis_request
WHERE status=? ORDER BY created_at ASC LIMIT ?;
`
	rows, err := r.db.QueryContext(ctx, q, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.AnalysisRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// UpdateStatus update kolom status + error_message saja.
// Compare-and-set: row yang sudah CANCELLED/COMPLETED tidak boleh ditimpa
// (tidak ada transisi keluar dari keduanya), jadi cancel dari operator
// menang atas penulisan COMPLETED/FAILED yang datang belakangan.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id domain.RequestID, status domain.Status, errorMessage string) error {
	const q = `
UPDATE analysis_request
SET status = ?, error_message = ?, updated_at = NOW()
WHERE id = ? AND status NOT IN ('CANCELLED','COMPLETED');`
	res, err := r.db.ExecContext(ctx, q, status, errorMessage, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrTerminalStatus
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*domain.AnalysisRequest, error) {
	var req domain.AnalysisRequest
	var modelIDs string
	var plan sql.NullString
	var groupID sql.NullInt64
	var errMsg, createdBy sql.NullString

	if err := row.Scan(
		&req.ID, &req.Status, &req.StartDate, &req.EndDate,
		&modelIDs, &plan, &groupID, &errMsg, &createdBy,
		&req.CreatedAt, &req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(modelIDs), &req.ModelIDs); err != nil {
		return nil, fmt.Errorf("decoding model ids: %w", err)
	}
	if plan.Valid && plan.String != "" {
		req.Plan = &domain.AcquisitionPlan{}
		if err := json.Unmarshal([]byte(plan.String), req.Plan); err != nil {
			return nil, fmt.Errorf("decoding acquisition plan: %w", err)
		}
	}
	req.AnalysisGroupID = groupID.Int64
	req.ErrorMessage = errMsg.String
	req.CreatedBy = createdBy.String
	return &req, nil
}
