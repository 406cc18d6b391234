package analysis

import "sort"

// Turn is an accepted wall turn inside a bout
type Turn struct {
	Index     int   // absolute sample index
	Timestamp int64 // ms
}

// LapWindow is the stretch of samples between two consecutive turns
type LapWindow struct {
	Start   int // absolute index of the first sample at or after StartMs
	End     int // absolute index one past the last sample at or before EndMs
	StartMs int64
	EndMs   int64
}

// Seconds returns the lap duration measured between the two turns
func (w LapWindow) Seconds() float64 {
	return float64(w.EndMs-w.StartMs) / 1000.0
}

// TurnSignal returns the conditioned gyroscope magnitude used for turn detection
func TurnSignal(samples []Sample, fs float64, p Params) []float64 {
	mag := GyroMagnitude(samples)
	smoothed := MovingAverage(mag, fs, p.SmoothingWindowSeconds)
	return LowPass(smoothed, fs, p.TurnCutoffHz)
}

// FallingEdges finds samples where signal drops below threshold.
// Edges within trimSeconds of either end of the timestamps are ignored, and
// after an accepted edge any other edge within debounceSeconds is skipped.
// Returned indexes are relative to signal.
func FallingEdges(signal []float64, timestamps []int64, threshold, trimSeconds, debounceSeconds float64) []Turn {
	if len(signal) < 2 || len(signal) != len(timestamps) {
		return nil
	}
	first, last := timestamps[0], timestamps[len(timestamps)-1]

	var turns []Turn
	for i := 1; i < len(signal); i++ {
		if !(signal[i] < threshold && signal[i-1] >= threshold) {
			continue
		}
		t := timestamps[i]
		if float64(t-first)/1000.0 < trimSeconds || float64(last-t)/1000.0 < trimSeconds {
			continue
		}
		if n := len(turns); n > 0 && float64(t-turns[n-1].Timestamp)/1000.0 < debounceSeconds {
			continue
		}
		turns = append(turns, Turn{Index: i, Timestamp: t})
	}
	return turns
}

// DetectTurns runs turn detection over a single bout
func DetectTurns(samples []Sample, bout Bout, fs float64, p Params) []Turn {
	if bout.Len() < 1 {
		return nil
	}
	segment := samples[bout.Start:bout.End]
	signal := TurnSignal(segment, fs, p)
	turns := FallingEdges(signal, Timestamps(segment), p.TurnThreshold, p.TurnTrimSeconds, p.TurnDebounceSeconds)
	for i := range turns {
		turns[i].Index += bout.Start
	}
	return turns
}

// LapWindows pairs consecutive turns of a bout into laps.
// Fewer than two turns means no laps.
func LapWindows(samples []Sample, bout Bout, turns []Turn) []LapWindow {
	if len(turns) < 2 {
		return nil
	}
	ts := Timestamps(samples[bout.Start:bout.End])

	windows := make([]LapWindow, 0, len(turns)-1)
	for k := 1; k < len(turns); k++ {
		startMs, endMs := turns[k-1].Timestamp, turns[k].Timestamp
		lo := sort.Search(len(ts), func(i int) bool { return ts[i] >= startMs })
		hi := sort.Search(len(ts), func(i int) bool { return ts[i] > endMs })
		windows = append(windows, LapWindow{
			Start:   bout.Start + lo,
			End:     bout.Start + max(lo, hi),
			StartMs: startMs,
			EndMs:   endMs,
		})
	}
	return windows
}
