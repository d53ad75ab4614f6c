package raster

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoTiles tidak ada tile yang cocok untuk digabung
var ErrNoTiles = errors.New("no tiles found to merge")

// Merge gabungkan beberapa tile menjadi satu mosaic di union bounding box.
// Semua tile harus punya CRS, jumlah band dan ukuran piksel yang sama.
// Piksel yang tumpang tindih: tile pertama menang (yang berikutnya hanya
// mengisi area yang masih nodata).
func Merge(tiles []*Raster) (*Raster, error) {
	if len(tiles) == 0 {
		return nil, ErrNoTiles
	}

	first := tiles[0]
	pxW := first.Transform[1]
	pxH := first.Transform[5]
	for _, t := range tiles[1:] {
		if t.CRS != first.CRS {
			return nil, fmt.Errorf("merge: mixed CRS %q vs %q", t.CRS, first.CRS)
		}
		if t.Bands != first.Bands {
			return nil, fmt.Errorf("merge: mixed band counts %d vs %d", t.Bands, first.Bands)
		}
		if t.Transform[1] != pxW || t.Transform[5] != pxH {
			return nil, fmt.Errorf("merge: mixed pixel sizes")
		}
	}

	// union bounds
	minX, minY, maxX, maxY := first.Bounds()
	for _, t := range tiles[1:] {
		x0, y0, x1, y1 := t.Bounds()
		minX = math.Min(minX, x0)
		minY = math.Min(minY, y0)
		maxX = math.Max(maxX, x1)
		maxY = math.Max(maxY, y1)
	}

	width := int(math.Round((maxX - minX) / pxW))
	height := int(math.Round((maxY - minY) / -pxH))
	tf := [6]float64{minX, pxW, 0, maxY, 0, pxH}
	out := New(width, height, first.Bands, first.CRS, tf, first.NoData)

	nd := float32(out.NoData)
	for _, t := range tiles {
		colOff := int(math.Round((t.Transform[0] - minX) / pxW))
		rowOff := int(math.Round((maxY - t.Transform[3]) / -pxH))
		for b := 0; b < t.Bands; b++ {
			for y := 0; y < t.Height; y++ {
				for x := 0; x < t.Width; x++ {
					ox, oy := colOff+x, rowOff+y
					if ox < 0 || oy < 0 || ox >= width || oy >= height {
						continue
					}
					if out.At(b, ox, oy) != nd {
						continue
					}
					out.Set(b, ox, oy, t.At(b, x, y))
				}
			}
		}
	}
	return out, nil
}
