package analysis

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// LapMetrics holds the kinematics of one pool length
type LapMetrics struct {
	LapNumber               int     `json:"lap_number"`
	StartMs                 int64   `json:"start_ms"`
	EndMs                   int64   `json:"end_ms"`
	LapTimeSeconds          float64 `json:"lap_time_s"`
	StrokeCount             int     `json:"stroke_count"`
	StrokeRateSpm           float64 `json:"stroke_rate_spm"`
	StrokeLengthMeters      float64 `json:"stroke_length_m"`
	VelocityMetersPerSecond float64 `json:"velocity_m_per_s"`
	StrokeRatePerSecond     float64 `json:"stroke_rate_hz"`
	StrokeIndex             float64 `json:"stroke_index"`
	StrokeType              string  `json:"stroke_type,omitempty"`
}

// SessionAverages is the mean of each lap field. All zero when there are no laps.
type SessionAverages struct {
	LapTimeSeconds          float64 `json:"avg_lap_time_s"`
	StrokeCount             float64 `json:"avg_stroke_count"`
	VelocityMetersPerSecond float64 `json:"avg_velocity_m_per_s"`
	StrokeRatePerSecond     float64 `json:"avg_stroke_rate_hz"`
	StrokeLengthMeters      float64 `json:"avg_stroke_length_m"`
	StrokeIndex             float64 `json:"avg_stroke_index"`
}

// NewLapMetrics derives velocity, stroke rate, stroke length and stroke index.
// The boolean is false when the lap has no duration or no strokes.
func NewLapMetrics(lapTimeSeconds float64, strokeCount int, poolLengthMeters float64) (LapMetrics, bool) {
	if lapTimeSeconds <= 0 || strokeCount <= 0 {
		return LapMetrics{}, false
	}
	return kinematics(lapTimeSeconds, strokeCount, poolLengthMeters), true
}

func kinematics(lapTimeSeconds float64, strokeCount int, poolLengthMeters float64) LapMetrics {
	velocity := poolLengthMeters / lapTimeSeconds
	rate := float64(strokeCount) / lapTimeSeconds

	var length float64
	if rate > 0 {
		length = velocity / rate
	}

	return LapMetrics{
		LapTimeSeconds:          lapTimeSeconds,
		StrokeCount:             strokeCount,
		StrokeRateSpm:           rate * 60.0,
		StrokeLengthMeters:      length,
		VelocityMetersPerSecond: velocity,
		StrokeRatePerSecond:     rate,
		StrokeIndex:             velocity * length,
	}
}

// ComputeSessionAverages averages lap metrics across the session
func ComputeSessionAverages(laps []LapMetrics) SessionAverages {
	if len(laps) == 0 {
		return SessionAverages{}
	}

	column := func(f func(LapMetrics) float64) float64 {
		vals := make([]float64, len(laps))
		for i, l := range laps {
			vals[i] = f(l)
		}
		return stat.Mean(vals, nil)
	}

	return SessionAverages{
		LapTimeSeconds:          column(func(l LapMetrics) float64 { return l.LapTimeSeconds }),
		StrokeCount:             column(func(l LapMetrics) float64 { return float64(l.StrokeCount) }),
		VelocityMetersPerSecond: column(func(l LapMetrics) float64 { return l.VelocityMetersPerSecond }),
		StrokeRatePerSecond:     column(func(l LapMetrics) float64 { return l.StrokeRatePerSecond }),
		StrokeLengthMeters:      column(func(l LapMetrics) float64 { return l.StrokeLengthMeters }),
		StrokeIndex:             column(func(l LapMetrics) float64 { return l.StrokeIndex }),
	}
}

// DominantStrokeType returns the most frequent non-empty label.
// Ties go to the alphabetically first label; no labels gives "".
func DominantStrokeType(samples []Sample) string {
	counts := make(map[string]int)
	for _, s := range samples {
		if s.StrokeType != "" {
			counts[s.StrokeType]++
		}
	}
	if len(counts) == 0 {
		return ""
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	best := labels[0]
	for _, l := range labels[1:] {
		if counts[l] > counts[best] {
			best = l
		}
	}
	return best
}
