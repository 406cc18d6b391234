package analysis

import "math"

// Sample is a single wrist IMU reading.
// Missing axes are nil and count as 0 in every computation.
type Sample struct {
	Timestamp int64    `json:"timestamp_ms"` // milliseconds, non-decreasing within a session
	AccelX    *float64 `json:"accel_x,omitempty"`
	AccelY    *float64 `json:"accel_y,omitempty"`
	AccelZ    *float64 `json:"accel_z,omitempty"`
	GyroX     *float64 `json:"gyro_x,omitempty"`
	GyroY     *float64 `json:"gyro_y,omitempty"`
	GyroZ     *float64 `json:"gyro_z,omitempty"`
	HeartRate *float64 `json:"heart_rate,omitempty"`

	// StrokeType is the label the live classifier attached to this sample, if any
	StrokeType string `json:"stroke_type,omitempty"`
}

// Bout is a half-open index range [Start, End) of continuous swimming
type Bout struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of samples in the bout
func (b Bout) Len() int {
	return b.End - b.Start
}

func orZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// Timestamps extracts the timestamp column
func Timestamps(samples []Sample) []int64 {
	ts := make([]int64, len(samples))
	for i, s := range samples {
		ts[i] = s.Timestamp
	}
	return ts
}

// CombinedAcceleration returns |ax|+|ay|+|az| per sample
func CombinedAcceleration(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = math.Abs(orZero(s.AccelX)) + math.Abs(orZero(s.AccelY)) + math.Abs(orZero(s.AccelZ))
	}
	return out
}

// GyroMagnitude returns sqrt(gx²+gy²+gz²) per sample
func GyroMagnitude(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		gx, gy, gz := orZero(s.GyroX), orZero(s.GyroY), orZero(s.GyroZ)
		out[i] = math.Sqrt(gx*gx + gy*gy + gz*gz)
	}
	return out
}

// StrokeSignal returns ay+az per sample. It is a plain sum, so it can be negative.
func StrokeSignal(samples []Sample) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = orZero(s.AccelY) + orZero(s.AccelZ)
	}
	return out
}
