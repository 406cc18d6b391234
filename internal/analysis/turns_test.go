package analysis

import (
	"reflect"
	"testing"
)

// edgeSignal is 100 s at 10 Hz sitting at 20 with short drops to 0
// starting at the given seconds
func edgeSignal(dropsAt ...float64) ([]float64, []int64) {
	const n = 1001
	signal := make([]float64, n)
	ts := make([]int64, n)
	for i := range signal {
		t := float64(i) / 10.0
		ts[i] = int64(i) * 100
		signal[i] = 20
		for _, d := range dropsAt {
			if t >= d && t < d+0.5 {
				signal[i] = 0
			}
		}
	}
	return signal, ts
}

func turnTimes(turns []Turn) []int64 {
	out := make([]int64, len(turns))
	for i, t := range turns {
		out[i] = t.Timestamp
	}
	return out
}

func TestFallingEdges(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name     string
		dropsAt  []float64
		expected []int64
	}{
		{"debounce keeps the first of two edges 1 s apart", []float64{50, 51}, []int64{50000}},
		{"edges exactly one debounce apart are both kept", []float64{50, 52.5}, []int64{50000, 52500}},
		{"edge inside leading trim is dropped", []float64{10, 50}, []int64{50000}},
		{"edge inside trailing trim is dropped", []float64{50, 70}, []int64{50000}},
		{"edge at the trim boundary is kept", []float64{35}, []int64{35000}},
		{"separate laps", []float64{40, 60}, []int64{40000, 60000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal, ts := edgeSignal(tt.dropsAt...)
			turns := FallingEdges(signal, ts, p.TurnThreshold, p.TurnTrimSeconds, p.TurnDebounceSeconds)
			if got := turnTimes(turns); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("turns at %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFallingEdgesTrimAndDebounceOff(t *testing.T) {
	p := Params{TurnTrimSeconds: -1, TurnDebounceSeconds: -1}.WithDefaults()

	tests := []struct {
		name     string
		dropsAt  []float64
		expected []int64
	}{
		{"edge near the start is kept", []float64{10, 50}, []int64{10000, 50000}},
		{"edges 1 s apart are both kept", []float64{50, 51}, []int64{50000, 51000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signal, ts := edgeSignal(tt.dropsAt...)
			turns := FallingEdges(signal, ts, p.TurnThreshold, p.TurnTrimSeconds, p.TurnDebounceSeconds)
			if got := turnTimes(turns); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("turns at %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFallingEdgesDegenerate(t *testing.T) {
	if got := FallingEdges(nil, nil, 12, 35, 2.5); got != nil {
		t.Errorf("FallingEdges(nil) = %v", got)
	}
	if got := FallingEdges([]float64{20, 0}, []int64{0}, 12, 0, 0); got != nil {
		t.Errorf("mismatched lengths = %v", got)
	}
	// starting below the threshold is not a falling edge
	if got := FallingEdges([]float64{0, 0, 0}, []int64{0, 1, 2}, 12, 0, 0); got != nil {
		t.Errorf("flat low signal = %v", got)
	}
}

func TestDetectTurnsOffsetsByBout(t *testing.T) {
	samples := syntheticSwim(50, 100, 150)
	bout := Bout{Start: 33, End: 1964}
	turns := DetectTurns(samples, bout, 10, DefaultParams())
	if len(turns) != 3 {
		t.Fatalf("got %d turns, want 3", len(turns))
	}
	for _, turn := range turns {
		if samples[turn.Index].Timestamp != turn.Timestamp {
			t.Errorf("turn index %d has timestamp %d, turn says %d", turn.Index, samples[turn.Index].Timestamp, turn.Timestamp)
		}
	}
}

func TestLapWindows(t *testing.T) {
	samples := make([]Sample, 10)
	for i := range samples {
		samples[i].Timestamp = int64(i) * 1000
	}
	bout := Bout{Start: 2, End: 10}

	if got := LapWindows(samples, bout, []Turn{{Index: 3, Timestamp: 3000}}); got != nil {
		t.Errorf("single turn gave %v, want no laps", got)
	}

	turns := []Turn{{Timestamp: 3000}, {Timestamp: 5500}, {Timestamp: 8000}}
	want := []LapWindow{
		{Start: 3, End: 6, StartMs: 3000, EndMs: 5500},
		{Start: 6, End: 9, StartMs: 5500, EndMs: 8000},
	}
	got := LapWindows(samples, bout, turns)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("LapWindows = %+v, want %+v", got, want)
	}
	if got[0].Seconds() != 2.5 {
		t.Errorf("Seconds = %v, want 2.5", got[0].Seconds())
	}
}
