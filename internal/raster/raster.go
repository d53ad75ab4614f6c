package raster

// Raster single- atau multi-band georeferenced grid, band-sequential di memori.
// Transform memakai urutan affine ala GDAL:
// [originX, pixelWidth, rotX, originY, rotY, pixelHeight] dengan pixelHeight negatif
// untuk raster north-up.
type Raster struct {
	Width     int
	Height    int
	Bands     int
	CRS       string
	Transform [6]float64
	NoData    float64

	data []float32
}

// New alokasi raster baru, semua piksel diisi nodata
func New(width, height, bands int, crs string, transform [6]float64, nodata float64) *Raster {
	r := &Raster{
		Width:     width,
		Height:    height,
		Bands:     bands,
		CRS:       crs,
		Transform: transform,
		NoData:    nodata,
		data:      make([]float32, width*height*bands),
	}
	nd := float32(nodata)
	for i := range r.data {
		r.data[i] = nd
	}
	return r
}

func (r *Raster) index(band, x, y int) int {
	return band*r.Width*r.Height + y*r.Width + x
}

// At baca nilai piksel (band, x, y)
func (r *Raster) At(band, x, y int) float32 {
	return r.data[r.index(band, x, y)]
}

// Set tulis nilai piksel (band, x, y)
func (r *Raster) Set(band, x, y int, v float32) {
	r.data[r.index(band, x, y)] = v
}

// SetWindow tulis buffer w*h ke posisi (x0, y0) pada band
func (r *Raster) SetWindow(band, x0, y0, w, h int, buf []float32) {
	for row := 0; row < h; row++ {
		copy(r.data[r.index(band, x0, y0+row):], buf[row*w:(row+1)*w])
	}
}

// Bounds mengembalikan (minX, minY, maxX, maxY) dalam koordinat CRS.
// Hanya valid untuk raster north-up tanpa rotasi.
func (r *Raster) Bounds() (minX, minY, maxX, maxY float64) {
	minX = r.Transform[0]
	maxY = r.Transform[3]
	maxX = minX + float64(r.Width)*r.Transform[1]
	minY = maxY + float64(r.Height)*r.Transform[5]
	return minX, minY, maxX, maxY
}

// ValidCount hitung piksel non-nodata pada sebuah band
func (r *Raster) ValidCount(band int) int {
	nd := float32(r.NoData)
	n := 0
	base := band * r.Width * r.Height
	for _, v := range r.data[base : base+r.Width*r.Height] {
		if v != nd {
			n++
		}
	}
	return n
}

// MinMax nilai minimum/maksimum sebuah band, mengabaikan nodata.
// ok=false kalau seluruh band nodata.
func (r *Raster) MinMax(band int) (min, max float64, ok bool) {
	nd := float32(r.NoData)
	base := band * r.Width * r.Height
	for _, v := range r.data[base : base+r.Width*r.Height] {
		if v == nd {
			continue
		}
		f := float64(v)
		if !ok {
			min, max, ok = f, f, true
			continue
		}
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
	}
	return min, max, ok
}
