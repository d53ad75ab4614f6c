package raster

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Container format band-sequential sederhana:
//
//	magic "BSQ1" | uint32 width | uint32 height | uint32 bands |
//	float64 nodata | 6x float64 transform | uint16 crsLen | crs |
//	band planes float32 LE (width*height per band)
//
// Cukup untuk kebutuhan pipeline: satu nodata eksplisit, georeference
// ikut terbawa, dan window bisa dibaca tanpa materialisasi seluruh file.

var magic = [4]byte{'B', 'S', 'Q', '1'}

const fixedHeaderLen = 4 + 4 + 4 + 4 + 8 + 6*8 + 2

// Encode serialisasi raster ke container bytes
func (r *Raster) Encode() []byte {
	crs := []byte(r.CRS)
	out := make([]byte, fixedHeaderLen+len(crs)+4*len(r.data))

	copy(out[0:4], magic[:])
	binary.LittleEndian.PutUint32(out[4:], uint32(r.Width))
	binary.LittleEndian.PutUint32(out[8:], uint32(r.Height))
	binary.LittleEndian.PutUint32(out[12:], uint32(r.Bands))
	binary.LittleEndian.PutUint64(out[16:], math.Float64bits(r.NoData))
	for i, t := range r.Transform {
		binary.LittleEndian.PutUint64(out[24+8*i:], math.Float64bits(t))
	}
	binary.LittleEndian.PutUint16(out[72:], uint16(len(crs)))
	copy(out[74:], crs)

	off := fixedHeaderLen + len(crs)
	for _, v := range r.data {
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(v))
		off += 4
	}
	return out
}

// Reader akses window-per-window ke raster terenkode tanpa decode penuh
type Reader struct {
	width   int
	height  int
	bands   int
	crs     string
	tf      [6]float64
	nodata  float64
	buf     []byte
	dataOff int
}

// OpenReader parse header dan siapkan pembaca window
func OpenReader(b []byte) (*Reader, error) {
	if len(b) < fixedHeaderLen {
		return nil, fmt.Errorf("raster: truncated header (%d bytes)", len(b))
	}
	if [4]byte(b[0:4]) != magic {
		return nil, fmt.Errorf("raster: bad magic %q", b[0:4])
	}
	r := &Reader{
		width:  int(binary.LittleEndian.Uint32(b[4:])),
		height: int(binary.LittleEndian.Uint32(b[8:])),
		bands:  int(binary.LittleEndian.Uint32(b[12:])),
		nodata: math.Float64frombits(binary.LittleEndian.Uint64(b[16:])),
		buf:    b,
	}
	for i := 0; i < 6; i++ {
		r.tf[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[24+8*i:]))
	}
	crsLen := int(binary.LittleEndian.Uint16(b[72:]))
	if len(b) < fixedHeaderLen+crsLen {
		return nil, fmt.Errorf("raster: truncated crs")
	}
	r.crs = string(b[74 : 74+crsLen])
	r.dataOff = fixedHeaderLen + crsLen

	want := r.dataOff + 4*r.width*r.height*r.bands
	if len(b) < want {
		return nil, fmt.Errorf("raster: truncated data: have %d bytes, want %d", len(b), want)
	}
	if r.width <= 0 || r.height <= 0 || r.bands <= 0 {
		return nil, fmt.Errorf("raster: invalid dimensions %dx%dx%d", r.width, r.height, r.bands)
	}
	return r, nil
}

func (r *Reader) Width() int            { return r.width }
func (r *Reader) Height() int           { return r.height }
func (r *Reader) Bands() int            { return r.bands }
func (r *Reader) CRS() string           { return r.crs }
func (r *Reader) Transform() [6]float64 { return r.tf }
func (r *Reader) NoData() float64       { return r.nodata }

// ReadWindow baca window w*h dari sebuah band, row-major
func (r *Reader) ReadWindow(band, x, y, w, h int) ([]float32, error) {
	if band < 0 || band >= r.bands {
		return nil, fmt.Errorf("raster: band %d out of range", band)
	}
	if x < 0 || y < 0 || x+w > r.width || y+h > r.height {
		return nil, fmt.Errorf("raster: window (%d,%d %dx%d) out of bounds", x, y, w, h)
	}
	out := make([]float32, w*h)
	plane := r.dataOff + 4*band*r.width*r.height
	for row := 0; row < h; row++ {
		src := plane + 4*((y+row)*r.width+x)
		for col := 0; col < w; col++ {
			out[row*w+col] = math.Float32frombits(binary.LittleEndian.Uint32(r.buf[src+4*col:]))
		}
	}
	return out, nil
}

// Decode materialisasi raster penuh (dipakai renderer dan merge, bukan inferensi)
func Decode(b []byte) (*Raster, error) {
	rd, err := OpenReader(b)
	if err != nil {
		return nil, err
	}
	out := &Raster{
		Width:     rd.width,
		Height:    rd.height,
		Bands:     rd.bands,
		CRS:       rd.crs,
		Transform: rd.tf,
		NoData:    rd.nodata,
		data:      make([]float32, rd.width*rd.height*rd.bands),
	}
	for i := range out.data {
		out.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[rd.dataOff+4*i:]))
	}
	return out, nil
}
