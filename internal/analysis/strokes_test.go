package analysis

import (
	"math"
	"reflect"
	"testing"
)

func TestFindPeaks(t *testing.T) {
	tests := []struct {
		name     string
		signal   []float64
		fs       float64
		minHz    float64
		expected []int
	}{
		{"too short", []float64{0, 1}, 1, 1, nil},
		{"single peak", []float64{0, 1, 0}, 1, 1, []int{1}},
		{"below threshold ignored", []float64{0, 1, 0, 10, 0}, 1, 1, []int{3}},
		{"spaced peaks all kept", []float64{0, 5, 0, 8, 0}, 2, 1, []int{1, 3}},
		{"higher peak inside spacing replaces", []float64{0, 5, 0, 8, 0}, 3, 1, []int{3}},
		{"lower peak inside spacing dropped", []float64{0, 8, 0, 5, 0}, 3, 1, []int{1}},
		{"plateau counts once at its left edge", []float64{0, 4, 4, 0}, 1, 1, []int{1}},
		{"flat signal", []float64{3, 3, 3, 3}, 1, 1, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindPeaks(tt.signal, tt.fs, tt.minHz, 0.35)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("FindPeaks = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFindPeaksReplacementMovesSpacingAnchor(t *testing.T) {
	// minDist 3: 1 is accepted and 3 replaces it. Spacing now counts from 3,
	// so 5 (4 past 1 but only 2 past 3) is dropped as lower; 7 counts again
	signal := []float64{0, 5, 0, 8, 0, 6, 0, 7, 0}
	got := FindPeaks(signal, 3, 1, 0.35)
	if want := []int{3, 7}; !reflect.DeepEqual(got, want) {
		t.Errorf("FindPeaks = %v, want %v", got, want)
	}
}

func TestStrokeCount(t *testing.T) {
	// 60 s at 50 Hz, one stroke every 6.7 s on ay+az (peak spacing floor is 5 s)
	samples := make([]Sample, 3000)
	for i := range samples {
		tt := float64(i) / 50.0
		v := 4 * math.Sin(2*math.Pi*0.15*tt)
		samples[i] = Sample{Timestamp: int64(i) * 20, AccelY: fptr(v), AccelZ: fptr(v)}
	}

	got := StrokeCount(samples, DefaultParams())
	// 9 cycles; filter phase shift can push one across either end
	if got < 8 || got > 10 {
		t.Errorf("StrokeCount = %d, want 8..10", got)
	}
}

func TestStrokeCountMissingAxes(t *testing.T) {
	samples := []Sample{{Timestamp: 0}, {Timestamp: 20}, {Timestamp: 40}, {Timestamp: 60}}
	if got := StrokeCount(samples, DefaultParams()); got != 0 {
		t.Errorf("StrokeCount = %d, want 0", got)
	}
}
