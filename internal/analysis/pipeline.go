package analysis

// Result is everything one pass of the pipeline produces for a session
type Result struct {
	SamplingRate float64         `json:"sampling_rate_hz"`
	Bouts        []Bout          `json:"bouts"`
	Laps         []LapMetrics    `json:"laps"`
	Averages     SessionAverages `json:"session_averages"`

	// Fallback is set when no lap was detected and Laps holds a single
	// whole-session entry instead
	Fallback bool `json:"fallback"`
}

// Analyze runs the full pipeline, falling back to whole-session metrics
// when lap detection finds nothing. Empty input gives an empty result.
func Analyze(samples []Sample, p Params) Result {
	res := Result{Laps: []LapMetrics{}}
	if len(samples) == 0 {
		res.SamplingRate = DefaultSamplingRate
		return res
	}

	res.SamplingRate = EstimateSamplingRate(Timestamps(samples))
	res.Bouts, res.Laps = detectLaps(samples, res.SamplingRate, p)
	if len(res.Laps) == 0 {
		res.Laps = []LapMetrics{wholeSession(samples, p)}
		res.Fallback = true
	}
	res.Averages = ComputeSessionAverages(res.Laps)
	return res
}

// ComputeLapMetrics detects laps and returns the metrics of every lap
// that has a positive duration and at least one stroke
func ComputeLapMetrics(samples []Sample, p Params) []LapMetrics {
	if len(samples) == 0 {
		return []LapMetrics{}
	}
	fs := EstimateSamplingRate(Timestamps(samples))
	_, laps := detectLaps(samples, fs, p)
	return laps
}

// EffectiveLapMetrics is ComputeLapMetrics with the whole-session fallback:
// when no laps are found the entire recording is treated as one lap.
func EffectiveLapMetrics(samples []Sample, p Params) []LapMetrics {
	laps := ComputeLapMetrics(samples, p)
	if len(laps) > 0 || len(samples) == 0 {
		return laps
	}
	return []LapMetrics{wholeSession(samples, p)}
}

func detectLaps(samples []Sample, fs float64, p Params) ([]Bout, []LapMetrics) {
	bouts := Bouts(ActivityMask(samples, fs, p))

	laps := []LapMetrics{}
	for _, bout := range bouts {
		turns := DetectTurns(samples, bout, fs, p)
		for _, w := range LapWindows(samples, bout, turns) {
			segment := samples[w.Start:w.End]
			lap, ok := NewLapMetrics(w.Seconds(), StrokeCount(segment, p), p.PoolLengthMeters)
			if !ok {
				continue
			}
			lap.LapNumber = len(laps) + 1
			lap.StartMs = w.StartMs
			lap.EndMs = w.EndMs
			lap.StrokeType = DominantStrokeType(segment)
			laps = append(laps, lap)
		}
	}
	return bouts, laps
}

// wholeSession builds the fallback lap. It is kept even with zero strokes.
func wholeSession(samples []Sample, p Params) LapMetrics {
	first, last := samples[0].Timestamp, samples[len(samples)-1].Timestamp
	elapsedMs := max(last-first, 1)

	lap := kinematics(float64(elapsedMs)/1000.0, StrokeCount(samples, p), p.PoolLengthMeters)
	lap.LapNumber = 1
	lap.StartMs = first
	lap.EndMs = last
	lap.StrokeType = DominantStrokeType(samples)
	return lap
}
