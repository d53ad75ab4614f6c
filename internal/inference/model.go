package inference

import (
	"encoding/json"
	"fmt"
)

// Predictor capability regresi yang sudah dilatih. Format konkret model
// tersembunyi di balik interface ini supaya bisa diganti tanpa menyentuh
// logika pipeline.
type Predictor interface {
	Predict(features []float64) float64
}

type modelDoc struct {
	Type         string      `json:"type"`
	Intercept    float64     `json:"intercept"`
	Coefficients []float64   `json:"coefficients"`
	Trees        []*treeNode `json:"trees"`
}

// LoadModel parse blob model: regresi linear ("linear") atau
// ensemble pohon regresi ("forest", rata-rata prediksi antar pohon).
func LoadModel(b []byte) (Predictor, error) {
	var doc modelDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	switch doc.Type {
	case "linear":
		if len(doc.Coefficients) != NumFeatures {
			return nil, fmt.Errorf("linear model has %d coefficients, want %d", len(doc.Coefficients), NumFeatures)
		}
		return &linearModel{intercept: doc.Intercept, coefficients: doc.Coefficients}, nil
	case "forest":
		if len(doc.Trees) == 0 {
			return nil, fmt.Errorf("forest model has no trees")
		}
		for i, t := range doc.Trees {
			if err := t.validate(); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
		return &forestModel{trees: doc.Trees}, nil
	default:
		return nil, fmt.Errorf("unknown model type %q", doc.Type)
	}
}

type linearModel struct {
	intercept    float64
	coefficients []float64
}

func (m *linearModel) Predict(features []float64) float64 {
	v := m.intercept
	for i, c := range m.coefficients {
		v += c * features[i]
	}
	return v
}

// treeNode regression tree; leaf kalau kedua anak nil
type treeNode struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Value     float64   `json:"value"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

func (n *treeNode) validate() error {
	if n.Left == nil && n.Right == nil {
		return nil
	}
	if n.Left == nil || n.Right == nil {
		return fmt.Errorf("split node missing a child")
	}
	if n.Feature < 0 || n.Feature >= NumFeatures {
		return fmt.Errorf("split on feature %d out of range", n.Feature)
	}
	if err := n.Left.validate(); err != nil {
		return err
	}
	return n.Right.validate()
}

func (n *treeNode) eval(features []float64) float64 {
	for n.Left != nil {
		if features[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

type forestModel struct {
	trees []*treeNode
}

func (m *forestModel) Predict(features []float64) float64 {
	sum := 0.0
	for _, t := range m.trees {
		sum += t.eval(features)
	}
	return sum / float64(len(m.trees))
}
