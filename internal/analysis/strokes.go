package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// FindPeaks returns the indexes of stroke peaks in a filtered signal.
// A peak rises above its left neighbour, is not below its right one and
// clears min+fraction*(max-min). Peaks closer than fs/minHz samples are
// merged: a later one only replaces the last accepted peak if it is higher.
func FindPeaks(signal []float64, fs, minHz, fraction float64) []int {
	if len(signal) < 3 {
		return nil
	}
	minDist := max(1, int(math.Round(fs/minHz)))
	lo, hi := floats.Min(signal), floats.Max(signal)
	thresh := lo + (hi-lo)*fraction

	var peaks []int
	lastIdx := -minDist
	for i := 1; i < len(signal)-1; i++ {
		prev, curr, next := signal[i-1], signal[i], signal[i+1]
		if !(curr > prev && curr >= next && curr > thresh) {
			continue
		}
		if i-lastIdx >= minDist {
			peaks = append(peaks, i)
			lastIdx = i
		} else if curr > signal[lastIdx] {
			peaks[len(peaks)-1] = i
			lastIdx = i
		}
	}
	return peaks
}

// StrokeCount counts strokes in a run of samples (a lap or a whole session).
// The sampling rate is estimated from these samples alone.
func StrokeCount(samples []Sample, p Params) int {
	if len(samples) == 0 {
		return 0
	}
	fs := EstimateSamplingRate(Timestamps(samples))
	filtered := BandPass(StrokeSignal(samples), fs, p.StrokeLowCutHz, p.StrokeHighCutHz)
	return len(FindPeaks(filtered, fs, p.PeakMinHz, p.PeakThresholdFraction))
}
