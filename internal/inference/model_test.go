package inference

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func linearModelJSON(t *testing.T, intercept float64, coefficients []float64) []byte {
	t.Helper()
	b, err := json.Marshal(map[string]any{
		"type":         "linear",
		"intercept":    intercept,
		"coefficients": coefficients,
	})
	require.NoError(t, err)
	return b
}

func identityScalerJSON(t *testing.T) []byte {
	t.Helper()
	mean := make([]float64, NumFeatures)
	scale := make([]float64, NumFeatures)
	for i := range scale {
		scale[i] = 1
	}
	b, err := json.Marshal(Scaler{Mean: mean, Scale: scale})
	require.NoError(t, err)
	return b
}

func TestLoadModel_Linear(t *testing.T) {
	coefs := make([]float64, NumFeatures)
	coefs[0] = 2 // hanya B2 yang berkontribusi
	m, err := LoadModel(linearModelJSON(t, 1.5, coefs))
	require.NoError(t, err)

	features := make([]float64, NumFeatures)
	features[0] = 3
	assert.InDelta(t, 7.5, m.Predict(features), 1e-12)
}

func TestLoadModel_LinearWrongCoefficientCount(t *testing.T) {
	_, err := LoadModel(linearModelJSON(t, 0, []float64{1, 2, 3}))
	assert.ErrorContains(t, err, "coefficients")
}

func TestLoadModel_Forest(t *testing.T) {
	doc := []byte(`{
		"type": "forest",
		"trees": [
			{"feature": 0, "threshold": 1.0,
			 "left": {"value": 10}, "right": {"value": 20}},
			{"value": 4}
		]
	}`)
	m, err := LoadModel(doc)
	require.NoError(t, err)

	features := make([]float64, NumFeatures)
	features[0] = 0.5
	assert.InDelta(t, 7, m.Predict(features), 1e-12) // (10+4)/2

	features[0] = 2
	assert.InDelta(t, 12, m.Predict(features), 1e-12) // (20+4)/2
}

func TestLoadModel_ForestValidation(t *testing.T) {
	_, err := LoadModel([]byte(`{"type":"forest","trees":[]}`))
	assert.ErrorContains(t, err, "no trees")

	// split node dengan satu anak saja
	_, err = LoadModel([]byte(`{"type":"forest","trees":[{"feature":0,"threshold":1,"left":{"value":1}}]}`))
	assert.ErrorContains(t, err, "missing a child")

	// split di feature di luar range
	_, err = LoadModel([]byte(`{"type":"forest","trees":[{"feature":99,"threshold":1,"left":{"value":1},"right":{"value":2}}]}`))
	assert.ErrorContains(t, err, "out of range")
}

func TestLoadModel_UnknownType(t *testing.T) {
	_, err := LoadModel([]byte(`{"type":"svm"}`))
	assert.ErrorContains(t, err, "unknown model type")
}

func TestLoadModel_BadJSON(t *testing.T) {
	_, err := LoadModel([]byte("not json"))
	assert.Error(t, err)
}

func TestLoadScaler(t *testing.T) {
	s, err := LoadScaler(identityScalerJSON(t))
	require.NoError(t, err)

	features := make([]float64, NumFeatures)
	features[3] = 42
	s.Transform(features)
	assert.Equal(t, 42.0, features[3])
}

func TestLoadScaler_Transform(t *testing.T) {
	mean := make([]float64, NumFeatures)
	scale := make([]float64, NumFeatures)
	for i := range scale {
		mean[i] = 10
		scale[i] = 2
	}
	b, err := json.Marshal(Scaler{Mean: mean, Scale: scale})
	require.NoError(t, err)

	s, err := LoadScaler(b)
	require.NoError(t, err)

	features := make([]float64, NumFeatures)
	features[0] = 14
	s.Transform(features)
	assert.Equal(t, 2.0, features[0])
	assert.Equal(t, -5.0, features[1])
}

func TestLoadScaler_WrongLength(t *testing.T) {
	b, err := json.Marshal(Scaler{Mean: []float64{1}, Scale: []float64{1}})
	require.NoError(t, err)
	_, err = LoadScaler(b)
	assert.ErrorContains(t, err, "entries")
}

func TestLoadScaler_ZeroScale(t *testing.T) {
	mean := make([]float64, NumFeatures)
	scale := make([]float64, NumFeatures)
	for i := range scale {
		scale[i] = 1
	}
	scale[9] = 0
	b, err := json.Marshal(Scaler{Mean: mean, Scale: scale})
	require.NoError(t, err)

	_, err = LoadScaler(b)
	assert.ErrorContains(t, err, "zero scale")
}
