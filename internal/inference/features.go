package inference

import "math"

// NoDataValue sentinel untuk piksel tanpa prediksi valid (non-air / masked)
const NoDataValue = -9999

// WaterMaskThreshold piksel dianggap air kalau MNDWI di atas nilai ini
const WaterMaskThreshold = 0.3

// Panjang gelombang Sentinel-2 (nm) untuk FAI
const (
	nirWavelength  = 842
	redWavelength  = 665
	swirWavelength = 1610
)

// FeatureNames urutan feature persis seperti saat training. Jangan diubah.
var FeatureNames = []string{
	"B2", "B3", "B4", "B5", "B8", "B11",
	"NDCI", "NDVI", "FAI", "MNDWI",
	"B3_B2_ratio", "B4_B3_ratio", "B5_B4_ratio",
	"Month", "Season",
}

// NumFeatures total feature per piksel
var NumFeatures = len(FeatureNames)

// SeasonOf bucket musim 1..4 dari bulan 1..12
func SeasonOf(month int) int {
	return (month-1)/3 + 1
}

// safeDiv pembagian dengan guard: penyebut nol menghasilkan 0,
// bukan NaN/Inf yang merembet ke model
func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// sanitize ganti NaN/Inf dengan 0
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// pixelFeatures isi dst (panjang NumFeatures) dengan feature satu piksel
// dan laporkan apakah piksel tersebut air menurut MNDWI.
func pixelFeatures(dst []float64, b2, b3, b4, b5, b8, b11, month, season float64) (water bool) {
	mndwi := sanitize(safeDiv(b3-b11, b3+b11))
	ndci := sanitize(safeDiv(b5-b4, b5+b4))
	ndvi := sanitize(safeDiv(b8-b4, b8+b4))
	fai := sanitize(b8 - (b4 + (b11-b4)*(nirWavelength-redWavelength)/(swirWavelength-redWavelength)))

	var b3b2, b4b3, b5b4 float64
	if b2 != 0 && b3 != 0 {
		b3b2 = sanitize(b3 / b2)
	}
	if b3 != 0 && b4 != 0 {
		b4b3 = sanitize(b4 / b3)
	}
	if b4 != 0 && b5 != 0 {
		b5b4 = sanitize(b5 / b4)
	}

	dst[0] = b2
	dst[1] = b3
	dst[2] = b4
	dst[3] = b5
	dst[4] = b8
	dst[5] = b11
	dst[6] = ndci
	dst[7] = ndvi
	dst[8] = fai
	dst[9] = mndwi
	dst[10] = b3b2
	dst[11] = b4b3
	dst[12] = b5b4
	dst[13] = month
	dst[14] = season

	return mndwi > WaterMaskThreshold
}
