package strokestyle

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

const (
	// WindowSize is the number of consecutive samples per classification
	WindowSize = 29
	// Axes is accel x/y/z followed by gyro x/y/z
	Axes = 6
	// FeatureCount is mean, std, min and max per axis
	FeatureCount = Axes * 4
)

// Window is one block of sensor readings fed to the classifier
type Window [WindowSize][Axes]float64

// Classifier labels a window. Implementations wrap a trained model.
type Classifier interface {
	Classify(ctx context.Context, w Window) (Style, error)
}

// Windows cuts samples into consecutive non-overlapping windows.
// A trailing partial window is dropped.
func Windows(samples []analysis.Sample) []Window {
	windows := make([]Window, 0, len(samples)/WindowSize)
	for start := 0; start+WindowSize <= len(samples); start += WindowSize {
		var w Window
		for i, s := range samples[start : start+WindowSize] {
			w[i] = [Axes]float64{
				value(s.AccelX), value(s.AccelY), value(s.AccelZ),
				value(s.GyroX), value(s.GyroY), value(s.GyroZ),
			}
		}
		windows = append(windows, w)
	}
	return windows
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Features summarises each axis of a window as mean, population standard
// deviation, min and max, axis by axis
func Features(w Window) []float64 {
	features := make([]float64, FeatureCount)
	column := make([]float64, WindowSize)
	for axis := 0; axis < Axes; axis++ {
		for i := range w {
			column[i] = w[i][axis]
		}
		mean, variance := stat.PopMeanVariance(column, nil)
		features[axis*4+0] = mean
		features[axis*4+1] = math.Sqrt(variance)
		features[axis*4+2] = floats.Min(column)
		features[axis*4+3] = floats.Max(column)
	}
	return features
}

// LinearModel scores each style as a weighted sum of window features plus a bias
type LinearModel struct {
	Weights [][]float64 `json:"weights"`
	Bias    []float64   `json:"bias"`
}

// LoadLinearModel reads a model exported as JSON
func LoadLinearModel(path string) (*LinearModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var m LinearModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks the model shape
func (m *LinearModel) Validate() error {
	if len(m.Weights) != len(Styles()) {
		return fmt.Errorf("model has %d weight rows, want %d", len(m.Weights), len(Styles()))
	}
	if len(m.Bias) != len(m.Weights) {
		return fmt.Errorf("model has %d biases, want %d", len(m.Bias), len(m.Weights))
	}
	for i, row := range m.Weights {
		if len(row) != FeatureCount {
			return fmt.Errorf("weight row %d has %d values, want %d", i, len(row), FeatureCount)
		}
	}
	return nil
}

// Classify scores the window features and picks the highest scoring style
func (m *LinearModel) Classify(ctx context.Context, w Window) (Style, error) {
	if err := ctx.Err(); err != nil {
		return Unknown, err
	}
	features := Features(w)
	scores := make([]float64, len(m.Weights))
	for i, row := range m.Weights {
		scores[i] = floats.Dot(row, features) + m.Bias[i]
	}
	if len(scores) == 0 {
		return Unknown, nil
	}
	return FromIndex(floats.MaxIdx(scores)), nil
}

// Label classifies every full window and writes the label onto its samples.
// Samples in the trailing partial window keep their existing label.
func Label(ctx context.Context, c Classifier, samples []analysis.Sample) ([]Style, error) {
	windows := Windows(samples)
	labels := make([]Style, 0, len(windows))
	for i, w := range windows {
		style, err := c.Classify(ctx, w)
		if err != nil {
			return nil, fmt.Errorf("classifying window %d: %w", i, err)
		}
		for j := i * WindowSize; j < (i+1)*WindowSize; j++ {
			samples[j].StrokeType = string(style)
		}
		labels = append(labels, style)
	}
	return labels, nil
}

// SampleLabels returns the parsed label of every sample that carries one
func SampleLabels(samples []analysis.Sample) []Style {
	var labels []Style
	for _, s := range samples {
		if s.StrokeType != "" {
			labels = append(labels, Parse(s.StrokeType))
		}
	}
	return labels
}
