package analysis

import (
	"math"
	"sort"
)

// EstimateSamplingRate derives the sensor frequency (Hz) from millisecond timestamps.
// It uses the median of the positive deltas so dropped or duplicated samples
// don't skew it. Falls back to DefaultSamplingRate when there is nothing to measure.
func EstimateSamplingRate(timestamps []int64) float64 {
	if len(timestamps) < 2 {
		return DefaultSamplingRate
	}

	diffs := make([]int64, 0, len(timestamps)-1)
	for i := 1; i < len(timestamps); i++ {
		if d := timestamps[i] - timestamps[i-1]; d > 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return DefaultSamplingRate
	}

	sort.Slice(diffs, func(i, j int) bool { return diffs[i] < diffs[j] })

	mid := len(diffs) / 2
	var median float64
	if len(diffs)%2 == 1 {
		median = float64(diffs[mid])
	} else {
		median = float64(diffs[mid-1]+diffs[mid]) / 2.0
	}

	return 1000.0 / median
}

// windowSamples converts a duration in seconds to a sample count at fs, at least 1
func windowSamples(seconds, fs float64) int {
	w := int(math.Round(seconds * fs))
	if w < 1 {
		return 1
	}
	return w
}
