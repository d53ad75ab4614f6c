package inference

import (
	"encoding/json"
	"fmt"
)

// Scaler normalisasi standard-score per feature, diserialisasi sebagai JSON
// {"mean": [...], "scale": [...]} dengan panjang NumFeatures.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// LoadScaler parse blob scaler
func LoadScaler(b []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("parsing scaler: %w", err)
	}
	if len(s.Mean) != NumFeatures || len(s.Scale) != NumFeatures {
		return nil, fmt.Errorf("scaler has %d/%d entries, want %d", len(s.Mean), len(s.Scale), NumFeatures)
	}
	for i, sc := range s.Scale {
		if sc == 0 {
			return nil, fmt.Errorf("scaler feature %s has zero scale", FeatureNames[i])
		}
	}
	return &s, nil
}

// Transform normalisasi in-place
func (s *Scaler) Transform(features []float64) {
	for i := range features {
		features[i] = (features[i] - s.Mean[i]) / s.Scale[i]
	}
}
