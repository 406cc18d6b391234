package analysis

// DefaultSamplingRate is returned when timestamps don't allow an estimate (Hz)
const DefaultSamplingRate = 50.0

// DefaultPoolLength is the pool length used when none is configured (meters)
const DefaultPoolLength = 50.0

// Params holds every tunable threshold of the pipeline.
// The defaults were tuned against one wrist-worn sensor placement; other
// placements or units will need their own values.
type Params struct {
	PoolLengthMeters float64 `json:"pool_length_m"`

	// Activity detection
	AccelThreshold    float64 `json:"accel_threshold"`     // combined |ax|+|ay|+|az|
	GapFillSeconds    float64 `json:"gap_fill_seconds"`    // binary closing window
	BoutFilterSeconds float64 `json:"bout_filter_seconds"` // binary opening window

	// Turn detection
	SmoothingWindowSeconds float64 `json:"smoothing_window_seconds"`
	TurnCutoffHz           float64 `json:"turn_cutoff_hz"`
	TurnThreshold          float64 `json:"turn_threshold"`
	// Zero means the default for every field. Set trim or debounce negative
	// to switch it off.
	TurnTrimSeconds     float64 `json:"turn_trim_seconds"`
	TurnDebounceSeconds float64 `json:"turn_debounce_seconds"`

	// Stroke detection
	StrokeLowCutHz        float64 `json:"stroke_low_cut_hz"`
	StrokeHighCutHz       float64 `json:"stroke_high_cut_hz"`
	PeakThresholdFraction float64 `json:"peak_threshold_fraction"`
	PeakMinHz             float64 `json:"peak_min_hz"`
}

// DefaultParams returns the tuned defaults
func DefaultParams() Params {
	return Params{
		PoolLengthMeters:       DefaultPoolLength,
		AccelThreshold:         12.0,
		GapFillSeconds:         7.0,
		BoutFilterSeconds:      30.0,
		SmoothingWindowSeconds: 1.0,
		TurnCutoffHz:           3.0,
		TurnThreshold:          12.0,
		TurnTrimSeconds:        35.0,
		TurnDebounceSeconds:    2.5,
		StrokeLowCutHz:         0.25,
		StrokeHighCutHz:        0.5,
		PeakThresholdFraction:  0.35,
		PeakMinHz:              0.2,
	}
}

// WithDefaults returns a copy of p where every zero field is replaced by its
// default. Negative values are kept.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	fill := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	fill(&p.PoolLengthMeters, d.PoolLengthMeters)
	fill(&p.AccelThreshold, d.AccelThreshold)
	fill(&p.GapFillSeconds, d.GapFillSeconds)
	fill(&p.BoutFilterSeconds, d.BoutFilterSeconds)
	fill(&p.SmoothingWindowSeconds, d.SmoothingWindowSeconds)
	fill(&p.TurnCutoffHz, d.TurnCutoffHz)
	fill(&p.TurnThreshold, d.TurnThreshold)
	fill(&p.TurnTrimSeconds, d.TurnTrimSeconds)
	fill(&p.TurnDebounceSeconds, d.TurnDebounceSeconds)
	fill(&p.StrokeLowCutHz, d.StrokeLowCutHz)
	fill(&p.StrokeHighCutHz, d.StrokeHighCutHz)
	fill(&p.PeakThresholdFraction, d.PeakThresholdFraction)
	fill(&p.PeakMinHz, d.PeakMinHz)
	return p
}
