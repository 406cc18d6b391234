package metricsapi

import (
	"strconv"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

// SessionRequest is the body of POST /metrics/session.
// Ids are integers on the wire; null means unknown.
type SessionRequest struct {
	SessionID        *int64   `json:"session_id"`
	SwimmerID        *int64   `json:"swimmer_id"`
	ExerciseID       *int64   `json:"exercise_id"`
	PoolLengthMeters float64  `json:"pool_length_m,omitempty"` // 0 means the server default
	Samples          []Sample `json:"samples"`
}

// Sample is one IMU reading on the wire. Every axis is required, so a
// missing reading is sent as 0, which is how the pipeline counts it.
type Sample struct {
	Timestamp  int64    `json:"timestamp_ms"`
	AccelX     float64  `json:"accel_x"`
	AccelY     float64  `json:"accel_y"`
	AccelZ     float64  `json:"accel_z"`
	GyroX      float64  `json:"gyro_x"`
	GyroY      float64  `json:"gyro_y"`
	GyroZ      float64  `json:"gyro_z"`
	HeartRate  *float64 `json:"heart_rate,omitempty"`
	StrokeType string   `json:"stroke_type,omitempty"`
}

// SessionResponse is the metrics service's answer for one session
type SessionResponse struct {
	SessionID  *int64                `json:"session_id"`
	SwimmerID  *int64                `json:"swimmer_id"`
	ExerciseID *int64                `json:"exercise_id"`
	Averages   SessionAverages       `json:"session_averages"`
	Laps       []analysis.LapMetrics `json:"laps"`
}

// SessionAverages is the per-lap means plus the lap count.
// StrokeCount is the mean strokes per lap, not a session total.
type SessionAverages struct {
	LapCount                int     `json:"lap_count"`
	StrokeCount             float64 `json:"stroke_count"`
	LapTimeSeconds          float64 `json:"avg_lap_time_s"`
	VelocityMetersPerSecond float64 `json:"avg_velocity_m_per_s"`
	StrokeRatePerSecond     float64 `json:"avg_stroke_rate_hz"`
	StrokeLengthMeters      float64 `json:"avg_stroke_length_m"`
	StrokeIndex             float64 `json:"avg_stroke_index"`
}

// Means converts the wire averages back to the pipeline's form
func (a SessionAverages) Means() analysis.SessionAverages {
	return analysis.SessionAverages{
		LapTimeSeconds:          a.LapTimeSeconds,
		StrokeCount:             a.StrokeCount,
		VelocityMetersPerSecond: a.VelocityMetersPerSecond,
		StrokeRatePerSecond:     a.StrokeRatePerSecond,
		StrokeLengthMeters:      a.StrokeLengthMeters,
		StrokeIndex:             a.StrokeIndex,
	}
}

// NumericID returns id as a wire id, or nil when it is not an integer
// (session UUIDs, free-form swimmer names)
func NumericID(id string) *int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

// WireSamples converts pipeline samples for sending
func WireSamples(samples []analysis.Sample) []Sample {
	out := make([]Sample, len(samples))
	for i, s := range samples {
		out[i] = Sample{
			Timestamp:  s.Timestamp,
			AccelX:     orZero(s.AccelX),
			AccelY:     orZero(s.AccelY),
			AccelZ:     orZero(s.AccelZ),
			GyroX:      orZero(s.GyroX),
			GyroY:      orZero(s.GyroY),
			GyroZ:      orZero(s.GyroZ),
			HeartRate:  s.HeartRate,
			StrokeType: s.StrokeType,
		}
	}
	return out
}

// AnalysisSamples converts received samples for the pipeline
func AnalysisSamples(samples []Sample) []analysis.Sample {
	out := make([]analysis.Sample, len(samples))
	for i, s := range samples {
		out[i] = analysis.Sample{
			Timestamp:  s.Timestamp,
			AccelX:     &s.AccelX,
			AccelY:     &s.AccelY,
			AccelZ:     &s.AccelZ,
			GyroX:      &s.GyroX,
			GyroY:      &s.GyroY,
			GyroZ:      &s.GyroZ,
			HeartRate:  s.HeartRate,
			StrokeType: s.StrokeType,
		}
	}
	return out
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// NewSessionResponse wraps a pipeline result for the wire
func NewSessionResponse(req *SessionRequest, res analysis.Result) *SessionResponse {
	laps := res.Laps
	if laps == nil {
		laps = []analysis.LapMetrics{}
	}
	a := res.Averages
	return &SessionResponse{
		SessionID:  req.SessionID,
		SwimmerID:  req.SwimmerID,
		ExerciseID: req.ExerciseID,
		Averages: SessionAverages{
			LapCount:                len(laps),
			StrokeCount:             a.StrokeCount,
			LapTimeSeconds:          a.LapTimeSeconds,
			VelocityMetersPerSecond: a.VelocityMetersPerSecond,
			StrokeRatePerSecond:     a.StrokeRatePerSecond,
			StrokeLengthMeters:      a.StrokeLengthMeters,
			StrokeIndex:             a.StrokeIndex,
		},
		Laps: laps,
	}
}
