package analysis

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Value is a float that may be absent, e.g. at the edges of a moving average
type Value struct {
	Float float64
	Valid bool
}

// Some wraps a present value
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// BandPass runs a first-order high-pass at lowCut followed by a first-order
// low-pass at highCut. It is a cheap approximation of a band-pass, not a
// Butterworth design, and the stroke thresholds are tuned against its shape.
func BandPass(x []float64, fs, lowCut, highCut float64) []float64 {
	if len(x) == 0 {
		return x
	}
	dt := 1.0 / fs

	rcHigh := 1.0 / (2.0 * math.Pi * lowCut)
	alphaHigh := rcHigh / (rcHigh + dt)
	hp := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		hp[i] = alphaHigh * (hp[i-1] + x[i] - x[i-1])
	}

	rcLow := 1.0 / (2.0 * math.Pi * highCut)
	alphaLow := dt / (rcLow + dt)
	lp := make([]float64, len(x))
	lp[0] = hp[0]
	for i := 1; i < len(x); i++ {
		lp[i] = lp[i-1] + alphaLow*(hp[i]-lp[i-1])
	}
	return lp
}

// LowPass fills gaps and then applies a single-pole exponential low-pass.
// If every input value is absent the first output is 0 and the rest are NaN,
// which never compares below or above a threshold.
func LowPass(x []Value, fs, cutoff float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}
	filled := FillGaps(x)

	dt := 1.0 / fs
	rc := 1.0 / (2.0 * math.Pi * cutoff)
	alpha := dt / (rc + dt)

	y := make([]float64, len(filled))
	if filled[0].Valid {
		y[0] = filled[0].Float
	}
	for i := 1; i < len(filled); i++ {
		xi := math.NaN()
		if filled[i].Valid {
			xi = filled[i].Float
		}
		y[i] = alpha*xi + (1-alpha)*y[i-1]
	}
	return y
}

// MovingAverage computes a centered rolling mean over windowSeconds.
// Positions whose full window does not fit inside x are absent.
func MovingAverage(x []float64, fs, windowSeconds float64) []Value {
	out := make([]Value, len(x))
	w := windowSamples(windowSeconds, fs)
	before := w / 2
	after := (w+1)/2 - 1

	for i := range x {
		lo, hi := i-before, i+after
		if lo < 0 || hi >= len(x) {
			continue
		}
		out[i] = Some(floats.Sum(x[lo:hi+1]) / float64(w))
	}
	return out
}

// FillGaps replaces each gap with the next present value (back-fill), then
// fills the trailing gaps left over with the last present value.
func FillGaps(x []Value) []Value {
	out := make([]Value, len(x))
	copy(out, x)

	next := Value{}
	for i := len(out) - 1; i >= 0; i-- {
		if out[i].Valid {
			next = out[i]
		} else if next.Valid {
			out[i] = next
		}
	}

	prev := Value{}
	for i := range out {
		if out[i].Valid {
			prev = out[i]
		} else if prev.Valid {
			out[i] = prev
		}
	}
	return out
}
