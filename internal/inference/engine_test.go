package inference

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/hydrolens/internal/raster"
)

var engineTransform = [6]float64{500000, 10, 0, 9200000, 0, -10}

// buildImage citra 3x2 6 band: piksel (0,0) air, sisanya darat
func buildImage(t *testing.T) []byte {
	t.Helper()
	img := raster.New(3, 2, 6, "EPSG:32749", engineTransform, -9999)
	for b := 0; b < 6; b++ {
		for y := 0; y < 2; y++ {
			for x := 0; x < 3; x++ {
				img.Set(b, x, y, 0.1)
			}
		}
	}
	// air: MNDWI = (1.0-0.1)/(1.0+0.1) > 0.3
	img.Set(1, 0, 0, 1.0) // B3
	// darat tegas di (1,0): MNDWI negatif
	img.Set(5, 1, 0, 1.0) // B11
	return img.Encode()
}

func newTestEngine(t *testing.T, intercept float64, coefIdx int, coefVal float64, chunkSize int) *Engine {
	t.Helper()
	coefs := make([]float64, NumFeatures)
	if coefIdx >= 0 {
		coefs[coefIdx] = coefVal
	}
	e, err := NewEngine(linearModelJSON(t, intercept, coefs), identityScalerJSON(t), chunkSize)
	require.NoError(t, err)
	return e
}

func TestProcessImage_MasksLandAndPredictsWater(t *testing.T) {
	e := newTestEngine(t, 5, -1, 0, 0)

	out, stats, err := e.ProcessImage(buildImage(t), time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Windows)
	assert.Equal(t, 0, stats.FailedWindows)
	assert.Equal(t, 1, stats.ValidPixels)

	pred, err := raster.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 3, pred.Width)
	assert.Equal(t, 2, pred.Height)
	assert.Equal(t, 1, pred.Bands)
	assert.Equal(t, "EPSG:32749", pred.CRS)
	assert.Equal(t, engineTransform, pred.Transform)
	assert.Equal(t, float64(-9999), pred.NoData)

	assert.Equal(t, float32(5), pred.At(0, 0, 0))
	for y := 0; y < 2; y++ {
		for x := 0; x < 3; x++ {
			if x == 0 && y == 0 {
				continue
			}
			assert.Equal(t, float32(-9999), pred.At(0, x, y), "pixel (%d,%d)", x, y)
		}
	}
}

func TestProcessImage_MonthFeatureFollowsDate(t *testing.T) {
	// koefisien hanya di feature Month: prediksi == nomor bulan
	e := newTestEngine(t, 0, 13, 1, 0)

	out, _, err := e.ProcessImage(buildImage(t), time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	pred, err := raster.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, float32(11), pred.At(0, 0, 0))
}

func TestProcessImage_ChunkingDoesNotChangeOutput(t *testing.T) {
	date := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)
	img := buildImage(t)

	whole, wholeStats, err := newTestEngine(t, 5, -1, 0, 0).ProcessImage(img, date)
	require.NoError(t, err)

	chunked, chunkedStats, err := newTestEngine(t, 5, -1, 0, 1).ProcessImage(img, date)
	require.NoError(t, err)

	assert.Equal(t, whole, chunked)
	assert.Equal(t, 1, wholeStats.Windows)
	assert.Equal(t, 6, chunkedStats.Windows)
	assert.Equal(t, wholeStats.ValidPixels, chunkedStats.ValidPixels)
}

func TestProcessImage_NoWaterPixels(t *testing.T) {
	img := raster.New(2, 2, 6, "", engineTransform, -9999)
	// semua band 0: MNDWI 0, tidak ada air
	e := newTestEngine(t, 5, -1, 0, 0)

	out, stats, err := e.ProcessImage(img.Encode(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ValidPixels)

	pred, err := raster.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, 0, pred.ValidCount(0))
}

func TestProcessImage_NonFinitePredictionSkipped(t *testing.T) {
	// intercept + koefisien raksasa -> +Inf untuk piksel air
	e := newTestEngine(t, 1e308, 1, 1e308, 0)

	_, stats, err := e.ProcessImage(buildImage(t), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ValidPixels)
}

func TestProcessImage_TooFewBands(t *testing.T) {
	img := raster.New(2, 2, 3, "", engineTransform, -9999)
	e := newTestEngine(t, 0, -1, 0, 0)

	_, _, err := e.ProcessImage(img.Encode(), time.Now())
	assert.ErrorContains(t, err, "bands")
}

func TestProcessImage_GarbageInput(t *testing.T) {
	e := newTestEngine(t, 0, -1, 0, 0)
	_, _, err := e.ProcessImage([]byte("not a raster"), time.Now())
	assert.Error(t, err)
}

func TestNewEngine_BadBlobs(t *testing.T) {
	_, err := NewEngine([]byte("x"), identityScalerJSON(t), 0)
	assert.Error(t, err)

	coefs := make([]float64, NumFeatures)
	_, err = NewEngine(linearModelJSON(t, 0, coefs), []byte("x"), 0)
	assert.Error(t, err)
}
