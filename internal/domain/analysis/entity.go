package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Model pasangan model regresi + scaler yang sudah dilatih,
// terikat ke satu (reservoir, parameter). Immutable setelah dibuat.
type Model struct {
	ID            int64     `json:"id"`
	ReservoirID   int64     `json:"reservoir_id"`
	ParameterID   int64     `json:"parameter_id"`
	ParameterName string    `json:"parameter_name"`
	ModelFile     []byte    `json:"-"`
	ScalerFile    []byte    `json:"-"`
	ModelFileHash string    `json:"model_file_hash"`
	CreatedAt     time.Time `json:"created_at"`
}

// HashFile content address dari bytes model, dipakai untuk menolak upload duplikat
func HashFile(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Group mengelompokkan semua analisis per tanggal dari satu eksekusi request
type Group struct {
	ID             int64     `json:"id"`
	ReservoirID    int64     `json:"reservoir_id"`
	IdentifierCode string    `json:"identifier_code"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// Analysis satu tanggal capture di dalam sebuah Group
type Analysis struct {
	ID              int64     `json:"id"`
	GroupID         int64     `json:"group_id"`
	IdentifierCode  string    `json:"identifier_code"`
	AnalysisDate    time.Time `json:"analysis_date"`
	CloudPercentage float64   `json:"cloud_percentage"`
	CreatedAt       time.Time `json:"created_at"`
}

// Result output inferensi satu (Analysis, Model): raster prediksi
// plus artefak visualisasi. Unik per pasangan tersebut.
type Result struct {
	ID           int64     `json:"id"`
	AnalysisID   int64     `json:"analysis_id"`
	ModelID      int64     `json:"model_id"`
	RasterFile   []byte    `json:"-"`
	IntensityMap string    `json:"intensity_map,omitempty"` // dokumen HTML peta interaktif, kosong = tidak ada
	StaticMap    []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
