package renderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image/color"
	"time"

	"github.com/fogleman/gg"

	"github.com/bryanwahyu/hydrolens/internal/raster"
)

// palette 11 step, biru (rendah) sampai hitam (tinggi)
var palette = []color.NRGBA{
	{0x00, 0x00, 0xff, 0xff},
	{0x00, 0xff, 0xff, 0xff},
	{0x00, 0xff, 0x00, 0xff},
	{0xff, 0xff, 0x00, 0xff},
	{0xff, 0x7f, 0x00, 0xff},
	{0xff, 0x00, 0x00, 0xff},
	{0x8b, 0x00, 0x00, 0xff},
	{0x80, 0x00, 0x80, 0xff},
	{0xff, 0x00, 0xff, 0xff},
	{0x8b, 0x45, 0x13, 0xff},
	{0x00, 0x00, 0x00, 0xff},
}

// maxDim sisi terpanjang gambar statis; raster kecil di-upscale supaya terbaca
const maxDim = 800

// Renderer implementasi analysis.Renderer: raster prediksi masuk,
// PNG statis + dokumen peta Leaflet keluar
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// Render visualisasi satu raster prediksi single-band.
// Piksel nodata dirender transparan. skipInteractive meniadakan dokumen
// HTML (dipakai saat raster tidak punya piksel valid).
func (rd *Renderer) Render(ctx context.Context, rasterFile []byte, date time.Time, parameterName string, skipInteractive bool) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	grid, err := raster.Decode(rasterFile)
	if err != nil {
		return "", nil, fmt.Errorf("decoding prediction raster: %w", err)
	}

	png, err := renderPNG(grid, date, parameterName)
	if err != nil {
		return "", nil, err
	}

	if skipInteractive {
		return "", png, nil
	}

	html, err := renderLeaflet(grid, png, date, parameterName)
	if err != nil {
		return "", nil, err
	}
	return html, png, nil
}

// colorFor normalisasi nilai ke [0,1] lalu petakan ke palette
func colorFor(v, min, max float64) color.NRGBA {
	t := 0.0
	if max > min {
		t = (v - min) / (max - min)
	}
	idx := int(t * float64(len(palette)))
	if idx >= len(palette) {
		idx = len(palette) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return palette[idx]
}

func renderPNG(grid *raster.Raster, date time.Time, parameterName string) ([]byte, error) {
	scale := 1
	if longest := max(grid.Width, grid.Height); longest > 0 && longest < maxDim {
		scale = maxDim / longest
		if scale < 1 {
			scale = 1
		}
	}

	dc := gg.NewContext(grid.Width*scale, grid.Height*scale)
	nd := float32(grid.NoData)
	lo, hi, ok := grid.MinMax(0)

	if ok {
		for y := 0; y < grid.Height; y++ {
			for x := 0; x < grid.Width; x++ {
				v := grid.At(0, x, y)
				if v == nd {
					continue
				}
				c := colorFor(float64(v), lo, hi)
				dc.SetColor(c)
				dc.DrawRectangle(float64(x*scale), float64(y*scale), float64(scale), float64(scale))
				dc.Fill()
			}
		}
	}

	// label parameter + tanggal di pojok kiri atas
	label := fmt.Sprintf("%s %s", parameterName, date.Format("2006-01-02"))
	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, 0, float64(len(label)*8+12), 20)
	dc.Fill()
	dc.SetRGB(0, 0, 0)
	dc.DrawString(label, 6, 14)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding static map: %w", err)
	}
	return buf.Bytes(), nil
}

const leafletTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8"/>
<title>%s %s</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css"/>
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html,body,#map{height:100%%;margin:0}</style>
</head>
<body>
<div id="map"></div>
<script>
var bounds = [[%f, %f], [%f, %f]];
var map = L.map('map');
L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
L.imageOverlay('data:image/png;base64,%s', bounds, {opacity: 0.75}).addTo(map);
map.fitBounds(bounds);
</script>
</body>
</html>
`

func renderLeaflet(grid *raster.Raster, png []byte, date time.Time, parameterName string) (string, error) {
	minX, minY, maxX, maxY := grid.Bounds()
	return fmt.Sprintf(leafletTemplate,
		parameterName, date.Format("2006-01-02"),
		minY, minX, maxY, maxX,
		base64.StdEncoding.EncodeToString(png),
	), nil
}
