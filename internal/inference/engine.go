package inference

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/bryanwahyu/hydrolens/internal/raster"
)

// DefaultChunkSize jendela default 500x500 piksel
const DefaultChunkSize = 500

// Stats ringkasan satu eksekusi ProcessImage
type Stats struct {
	Windows       int `json:"windows"`
	FailedWindows int `json:"failed_windows"`
	ValidPixels   int `json:"valid_pixels"`
}

// Engine inferensi raster per-window dengan plafon memori tetap:
// citra tidak pernah dimaterialisasi lebih besar dari satu window.
type Engine struct {
	scaler    *Scaler
	model     Predictor
	chunkSize int
}

// NewEngine bangun engine dari blob model + scaler
func NewEngine(modelFile, scalerFile []byte, chunkSize int) (*Engine, error) {
	model, err := LoadModel(modelFile)
	if err != nil {
		return nil, err
	}
	scaler, err := LoadScaler(scalerFile)
	if err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Engine{scaler: scaler, model: model, chunkSize: chunkSize}, nil
}

// ProcessImage jalankan inferensi atas satu citra multispectral dan hasilkan
// raster prediksi single-band dengan extent, CRS dan transform yang sama.
// Window yang gagal dibiarkan nodata dan pemrosesan lanjut ke window
// berikutnya: bolong lokal masih produk peta yang berguna.
func (e *Engine) ProcessImage(imageData []byte, date time.Time) ([]byte, Stats, error) {
	src, err := raster.OpenReader(imageData)
	if err != nil {
		return nil, Stats{}, err
	}
	if src.Bands() < 6 {
		return nil, Stats{}, fmt.Errorf("image has %d bands, want at least 6", src.Bands())
	}

	month := int(date.Month())
	season := SeasonOf(month)
	width, height := src.Width(), src.Height()

	out := raster.New(width, height, 1, src.CRS(), src.Transform(), NoDataValue)

	var stats Stats
	for y := 0; y < height; y += e.chunkSize {
		winH := min(e.chunkSize, height-y)
		for x := 0; x < width; x += e.chunkSize {
			winW := min(e.chunkSize, width-x)
			stats.Windows++

			buf, valid, err := e.processWindow(src, x, y, winW, winH, month, season)
			if err != nil {
				stats.FailedWindows++
				log.Printf("window (%d,%d %dx%d) failed, leaving nodata: %v", x, y, winW, winH, err)
				continue
			}
			out.SetWindow(0, x, y, winW, winH, buf)
			stats.ValidPixels += valid
		}
	}

	return out.Encode(), stats, nil
}

// processWindow hitung 15 feature per piksel, masking air, lalu prediksi
// hanya untuk piksel yang lolos mask
func (e *Engine) processWindow(src *raster.Reader, x, y, w, h, month, season int) ([]float32, int, error) {
	bands := make([][]float32, 6)
	for b := 0; b < 6; b++ {
		win, err := src.ReadWindow(b, x, y, w, h)
		if err != nil {
			return nil, 0, err
		}
		bands[b] = win
	}

	buf := make([]float32, w*h)
	for i := range buf {
		buf[i] = NoDataValue
	}

	features := make([]float64, NumFeatures)
	valid := 0
	for i := 0; i < w*h; i++ {
		water := pixelFeatures(features,
			float64(bands[0][i]), float64(bands[1][i]), float64(bands[2][i]),
			float64(bands[3][i]), float64(bands[4][i]), float64(bands[5][i]),
			float64(month), float64(season),
		)
		if !water {
			continue
		}
		e.scaler.Transform(features)
		pred := e.model.Predict(features)
		if math.IsNaN(pred) || math.IsInf(pred, 0) {
			continue
		}
		buf[i] = float32(pred)
		valid++
	}
	return buf, valid, nil
}
