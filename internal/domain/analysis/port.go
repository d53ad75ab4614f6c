package analysis

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateModel model dengan hash yang sama sudah terdaftar
var ErrDuplicateModel = errors.New("model with identical content already exists")

// ModelRepository read-mostly port ke registry model
type ModelRepository interface {
	Get(ctx context.Context, id int64) (*Model, error)
	Create(ctx context.Context, m *Model) error
}

// GroupRepository port
type GroupRepository interface {
	CreateGroup(ctx context.Context, g *Group) error
}

// Repository port untuk row Analysis per tanggal.
// GetOrCreate idempoten terhadap (group, date) supaya re-run request
// tidak menggandakan row untuk tanggal yang sudah diproses.
type Repository interface {
	GetOrCreateAnalysis(ctx context.Context, a *Analysis) (*Analysis, bool, error)
}

// ResultRepository port
type ResultRepository interface {
	CreateResult(ctx context.Context, r *Result) error
}

// Renderer port ke penghasil visualisasi. Black box dari sisi pipeline:
// raster masuk, dokumen peta interaktif + gambar statis keluar.
// skipInteractive diset kalau raster tidak punya piksel valid sama sekali.
type Renderer interface {
	Render(ctx context.Context, raster []byte, date time.Time, parameterName string, skipInteractive bool) (htmlDoc string, staticImage []byte, err error)
}
