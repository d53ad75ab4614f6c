package postgres

import (
	"context"
	"database/sql"
	"errors"

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
VALUES ($1,$2,$3,$4,NOW())
RETURNING id;`
	return r.db.QueryRowContext(ctx, q, g.ReservoirID, g.IdentifierCode, g.StartDate, g.EndDate).Scan(&g.ID)
}

// GetOrCreateAnalysis idempoten per (group_id, analysis_date):
// re-run request tidak menggandakan row untuk tanggal yang sama
func (r *AnalysisRepository) GetOrCreateAnalysis(ctx context.Context, a *domain.Analysis) (*domain.Analysis, bool, error) {
	const ins = `
INSERT INTO analysis (group_id, identifier_code, analysis_date, cloud_percentage, created_at)
VALUES ($1,$2,$3,$4,NOW())
ON CONFLICT (group_id, analysis_date) DO NOTHING
RETURNING id;`
	var id int64
	err := r.db.QueryRowContext(ctx, ins, a.GroupID, a.IdentifierCode, a.AnalysisDate, a.CloudPercentage).Scan(&id)
	switch {
	case err == nil:
		a.ID = id
		return a, true, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, false, err
	}

	const sel = `
SELECT id, group_id, identifier_code, analysis_date, cloud_percentage, created_at
FROM analysis
WHERE group_id=$1 AND analysis_date=$2 LIMIT 1;`
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
VALUES ($1,$2,$3,$4,$5,NOW())
RETURNING id;`
	var intensity sql.NullString
	if res.IntensityMap != "" {
		intensity = sql.NullString{String: res.IntensityMap, Valid: true}
	}
	return r.db.QueryRowContext(ctx, q, res.AnalysisID, res.ModelID, res.RasterFile, intensity, res.StaticMap).Scan(&res.ID)
}
