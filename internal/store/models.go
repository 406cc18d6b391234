package store

import "time"

// Result sources
const (
	SourceRemote   = "remote"   // metrics API response
	SourceDevice   = "device"   // local pipeline found laps
	SourceFallback = "fallback" // local pipeline, whole-session entry
)

// Auth holds tokens for the remote metrics API
type Auth struct {
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	TokenType    string    `db:"token_type"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Session is one recorded swim
type Session struct {
	ID               string    `db:"id"`
	Name             string    `db:"name"`
	SwimmerID        string    `db:"swimmer_id"`
	ExerciseID       string    `db:"exercise_id"`
	PoolLengthMeters float64   `db:"pool_length_m"`
	StartedAt        time.Time `db:"started_at"`
	SampleCount      int       `db:"sample_count"`
	Analyzed         bool      `db:"analyzed"`
}

// SessionResult is the stored summary of an analyzed session
type SessionResult struct {
	SessionID           string    `db:"session_id"`
	Source              string    `db:"source"`
	LapCount            int       `db:"lap_count"`
	StrokeCount         int       `db:"stroke_count"` // sum over laps
	AvgLapTimeSeconds   float64   `db:"avg_lap_time_s"`
	AvgStrokeCount      float64   `db:"avg_stroke_count"`
	AvgVelocity         float64   `db:"avg_velocity_m_per_s"`
	AvgStrokeRate       float64   `db:"avg_stroke_rate_hz"`
	AvgStrokeLength     float64   `db:"avg_stroke_length_m"`
	AvgStrokeIndex      float64   `db:"avg_stroke_index"`
	TotalDistanceMeters float64   `db:"total_distance_m"` // pool length x laps
	SamplingRateHz      float64   `db:"sampling_rate_hz"`
	HeartRate           HeartRate `db:"-"`
	AnalyzedAt          time.Time `db:"analyzed_at"`
}

// HeartRate summarises the heart rate channel. Fields are nil when the
// session has no heart rate samples.
type HeartRate struct {
	First *float64 `db:"hr_first"`
	Last  *float64 `db:"hr_last"`
	Avg   *float64 `db:"hr_avg"`
	Max   *float64 `db:"hr_max"`
}
