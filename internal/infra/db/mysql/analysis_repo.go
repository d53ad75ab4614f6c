package mysql

import (
	"context"
	"database/sql"

	domain "github.com/bryanwahyu/hydrolens/internal/domain/analysis"
)

// AnalysisRepository persistence untuk Group, Analysis per tanggal,
// dan Result per (analysis, model)
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// CreateGroup buat AnalysisGroup baru untuk satu eksekusi request
func (r *AnalysisRepository) CreateGroup(ctx context.Context, g *domain.Group) error {
	const q = `
INSERT INTO analysis_group (reservoir_id, identifier_code, start_date, end_date, created_at)
VALUES (?,?,?,?,NOW());
`
	res, err := r.db.ExecContext(ctx, q, g.ReservoirID, g.IdentifierCode, g.StartDate, g.EndDate)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

// GetOrCreateAnalysis idempoten per (group_id, analysis_date):
// re-run request tidak menggandakan row untuk tanggal yang sama
func (r *AnalysisRepository) GetOrCreateAnalysis(ctx context.Context, a *domain.Analysis) (*domain.Analysis, bool, error) {
	const ins = `
INSERT IGNORE INTO analysis (group_id, identifier_code, analysis_date, cloud_percentage, created_at)
VALUES (?,?,?,?,NOW());
`
	res, err := r.db.ExecContext(ctx, ins, a.GroupID, a.IdentifierCode, a.AnalysisDate, a.CloudPercentage)
	if err != nil {
		return nil, false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, err
	}
	if affected == 1 {
		id, err := res.LastInsertId()
		if err != nil {
			return nil, false, err
		}
		a.ID = id
		return a, true, nil
	}

	const sel = `
SELECT id, group_id, identifier_code, analysis_date, cloud_percentage, created_at
FROM analysis
WHERE group_id=? AND analysis_date=? LIMIT 1;
`
	var existing domain.Analysis
	var cloud sql.NullFloat64
	if err := r.db.QueryRowContext(ctx, sel, a.GroupID, a.AnalysisDate).Scan(
		&existing.ID, &existing.GroupID, &existing.IdentifierCode, &existing.AnalysisDate, &cloud, &existing.CreatedAt,
	); err != nil {
		return nil, false, err
	}
	existing.CloudPercentage = cloud.Float64
	return &existing, false, nil
}

// CreateResult simpan output inferensi satu (analysis, model)
func (r *AnalysisRepository) CreateResult(ctx context.Context, res *domain.Result) error {
	const q = `
INSERT INTO analysis_result (analysis_id, model_id, raster_file, intensity_map, static_map, created_at)
VALUES (?,?,?,?,?,NOW());
`
	var intensity sql.NullString
	if res.IntensityMap != "" {
		intensity = sql.NullString{String: res.IntensityMap, Valid: true}
	}
	execRes, err := r.db.ExecContext(ctx, q, res.AnalysisID, res.ModelID, res.RasterFile, intensity, res.StaticMap)
	if err != nil {
		return err
	}
	id, err := execRes.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = id
	return nil
}
