package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTransform = [6]float64{500000, 10, 0, 9200000, 0, -10}

func buildTestRaster(t *testing.T) *Raster {
	t.Helper()
	r := New(4, 3, 2, "EPSG:32749", testTransform, -9999)
	v := float32(0)
	for b := 0; b < 2; b++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 4; x++ {
				r.Set(b, x, y, v)
				v++
			}
		}
	}
	return r
}

func TestEncodeDecode_Roundtrip(t *testing.T) {
	src := buildTestRaster(t)

	got, err := Decode(src.Encode())
	require.NoError(t, err)

	assert.Equal(t, src.Width, got.Width)
	assert.Equal(t, src.Height, got.Height)
	assert.Equal(t, src.Bands, got.Bands)
	assert.Equal(t, src.CRS, got.CRS)
	assert.Equal(t, src.Transform, got.Transform)
	assert.Equal(t, src.NoData, got.NoData)

	for b := 0; b < 2; b++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 4; x++ {
				assert.Equal(t, src.At(b, x, y), got.At(b, x, y))
			}
		}
	}
}

func TestOpenReader_ReadWindow(t *testing.T) {
	src := buildTestRaster(t)

	rd, err := OpenReader(src.Encode())
	require.NoError(t, err)

	// window 2x2 di tengah band 1
	win, err := rd.ReadWindow(1, 1, 1, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []float32{
		src.At(1, 1, 1), src.At(1, 2, 1),
		src.At(1, 1, 2), src.At(1, 2, 2),
	}, win)

	// window satu band penuh
	full, err := rd.ReadWindow(0, 0, 0, 4, 3)
	require.NoError(t, err)
	assert.Len(t, full, 12)
	assert.Equal(t, src.At(0, 0, 0), full[0])
	assert.Equal(t, src.At(0, 3, 2), full[11])
}

func TestOpenReader_WindowOutOfBounds(t *testing.T) {
	rd, err := OpenReader(buildTestRaster(t).Encode())
	require.NoError(t, err)

	_, err = rd.ReadWindow(0, 3, 0, 2, 2)
	assert.Error(t, err)

	_, err = rd.ReadWindow(5, 0, 0, 1, 1)
	assert.Error(t, err)

	_, err = rd.ReadWindow(0, -1, 0, 1, 1)
	assert.Error(t, err)
}

func TestOpenReader_BadInput(t *testing.T) {
	_, err := OpenReader([]byte("XXXX not a raster"))
	assert.Error(t, err)

	_, err = OpenReader(nil)
	assert.Error(t, err)

	// header valid tapi data kurang
	enc := buildTestRaster(t).Encode()
	_, err = OpenReader(enc[:len(enc)-8])
	assert.Error(t, err)
}

func TestBounds(t *testing.T) {
	r := New(4, 3, 1, "EPSG:32749", testTransform, -9999)
	minX, minY, maxX, maxY := r.Bounds()
	assert.Equal(t, 500000.0, minX)
	assert.Equal(t, 500040.0, maxX)
	assert.Equal(t, 9200000.0, maxY)
	assert.Equal(t, 9199970.0, minY)
}

func TestValidCountAndMinMax(t *testing.T) {
	r := New(2, 2, 1, "", testTransform, -9999)
	assert.Equal(t, 0, r.ValidCount(0))

	_, _, ok := r.MinMax(0)
	assert.False(t, ok)

	r.Set(0, 0, 0, 3.5)
	r.Set(0, 1, 1, -1.25)
	assert.Equal(t, 2, r.ValidCount(0))

	lo, hi, ok := r.MinMax(0)
	require.True(t, ok)
	assert.Equal(t, -1.25, lo)
	assert.Equal(t, 3.5, hi)
}
