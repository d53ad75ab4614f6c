package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fillBand(r *Raster, band int, v float32) {
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			r.Set(band, x, y, v)
		}
	}
}

func TestMerge_AdjacentTiles(t *testing.T) {
	// dua tile 2x2 bersebelahan horizontal, piksel 10m
	left := New(2, 2, 1, "EPSG:32749", [6]float64{0, 10, 0, 20, 0, -10}, -9999)
	right := New(2, 2, 1, "EPSG:32749", [6]float64{20, 10, 0, 20, 0, -10}, -9999)
	fillBand(left, 0, 1)
	fillBand(right, 0, 2)

	got, err := Merge([]*Raster{left, right})
	require.NoError(t, err)

	assert.Equal(t, 4, got.Width)
	assert.Equal(t, 2, got.Height)
	assert.Equal(t, [6]float64{0, 10, 0, 20, 0, -10}, got.Transform)

	assert.Equal(t, float32(1), got.At(0, 0, 0))
	assert.Equal(t, float32(1), got.At(0, 1, 1))
	assert.Equal(t, float32(2), got.At(0, 2, 0))
	assert.Equal(t, float32(2), got.At(0, 3, 1))
}

func TestMerge_OverlapFirstTileWins(t *testing.T) {
	a := New(2, 2, 1, "EPSG:32749", [6]float64{0, 10, 0, 20, 0, -10}, -9999)
	b := New(2, 2, 1, "EPSG:32749", [6]float64{10, 10, 0, 20, 0, -10}, -9999)
	fillBand(a, 0, 1)
	fillBand(b, 0, 2)

	got, err := Merge([]*Raster{a, b})
	require.NoError(t, err)

	assert.Equal(t, 3, got.Width)
	// kolom overlap (x=1) milik tile pertama
	assert.Equal(t, float32(1), got.At(0, 1, 0))
	assert.Equal(t, float32(2), got.At(0, 2, 0))
}

func TestMerge_FillsGapsWithNoData(t *testing.T) {
	// dua tile diagonal, sudut kosong harus nodata
	a := New(1, 1, 1, "", [6]float64{0, 10, 0, 10, 0, -10}, -9999)
	b := New(1, 1, 1, "", [6]float64{10, 10, 0, 20, 0, -10}, -9999)
	fillBand(a, 0, 1)
	fillBand(b, 0, 2)

	got, err := Merge([]*Raster{a, b})
	require.NoError(t, err)

	assert.Equal(t, 2, got.Width)
	assert.Equal(t, 2, got.Height)
	assert.Equal(t, float32(2), got.At(0, 1, 0))
	assert.Equal(t, float32(1), got.At(0, 0, 1))
	assert.Equal(t, float32(-9999), got.At(0, 0, 0))
	assert.Equal(t, float32(-9999), got.At(0, 1, 1))
}

func TestMerge_MixedCRS(t *testing.T) {
	a := New(1, 1, 1, "EPSG:32749", [6]float64{0, 10, 0, 10, 0, -10}, -9999)
	b := New(1, 1, 1, "EPSG:4326", [6]float64{10, 10, 0, 10, 0, -10}, -9999)

	_, err := Merge([]*Raster{a, b})
	assert.ErrorContains(t, err, "mixed CRS")
}

func TestMerge_MixedBandCounts(t *testing.T) {
	a := New(1, 1, 1, "", [6]float64{0, 10, 0, 10, 0, -10}, -9999)
	b := New(1, 1, 2, "", [6]float64{10, 10, 0, 10, 0, -10}, -9999)

	_, err := Merge([]*Raster{a, b})
	assert.ErrorContains(t, err, "mixed band counts")
}

func TestMerge_NoTiles(t *testing.T) {
	_, err := Merge(nil)
	assert.ErrorIs(t, err, ErrNoTiles)
}
