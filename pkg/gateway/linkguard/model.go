package linkguard

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Label is a canonical classification verdict.
type Label string

const (
	LabelSafe   Label = "Safe"
	LabelUnsafe Label = "Unsafe"
)

// Model is a binary logistic classifier over the URL feature vector.
// Weights are trained offline; the serialized form ships with the service.
type Model struct {
	Weights [FeatureCount]float64 `json:"weights"`
	Bias    float64               `json:"bias"`
}

// LoadModel reads serialized model parameters from a JSON file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse model file %s: %w", path, err)
	}
	return &m, nil
}

// Predict scores a URL. Probability above 0.5 is unsafe.
func (m *Model) Predict(rawURL string) Label {
	features := ExtractFeatures(rawURL)
	score := m.Bias
	for i, w := range m.Weights {
		score += w * features[i]
	}
	if sigmoid(score) > 0.5 {
		return LabelUnsafe
	}
	return LabelSafe
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
