package analysis

// ActivityMask thresholds combined acceleration and cleans the result:
// a closing bridges short pauses inside a bout, then an opening drops bouts
// shorter than the bout filter window.
func ActivityMask(samples []Sample, fs float64, p Params) []bool {
	combined := CombinedAcceleration(samples)
	raw := make([]bool, len(combined))
	for i, v := range combined {
		raw[i] = v > p.AccelThreshold
	}

	gapFilled := Close(raw, windowSamples(p.GapFillSeconds, fs))
	return Open(gapFilled, windowSamples(p.BoutFilterSeconds, fs))
}

func structuringOffsets(w int) (before, after int) {
	before = (w - 1) / 2
	after = w - 1 - before
	return before, after
}

// Dilate sets i when any in-bounds sample of the window around i is set
func Dilate(mask []bool, w int) []bool {
	out := make([]bool, len(mask))
	before, after := structuringOffsets(w)
	for i := range mask {
		lo, hi := max(0, i-before), min(len(mask)-1, i+after)
		for j := lo; j <= hi; j++ {
			if mask[j] {
				out[i] = true
				break
			}
		}
	}
	return out
}

// Erode sets i only when every sample of the window around i is set.
// Positions outside the mask count as unset.
func Erode(mask []bool, w int) []bool {
	out := make([]bool, len(mask))
	before, after := structuringOffsets(w)
	for i := range mask {
		if i-before < 0 || i+after >= len(mask) {
			continue
		}
		out[i] = true
		for j := i - before; j <= i+after; j++ {
			if !mask[j] {
				out[i] = false
				break
			}
		}
	}
	return out
}

// Close is a dilation followed by an erosion
func Close(mask []bool, w int) []bool {
	return Erode(Dilate(mask, w), w)
}

// Open is an erosion followed by a dilation
func Open(mask []bool, w int) []bool {
	return Dilate(Erode(mask, w), w)
}

// Bouts returns the contiguous runs of set samples as half-open ranges
func Bouts(mask []bool) []Bout {
	var bouts []Bout
	start := -1
	for i, on := range mask {
		switch {
		case on && start < 0:
			start = i
		case !on && start >= 0:
			bouts = append(bouts, Bout{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		bouts = append(bouts, Bout{Start: start, End: len(mask)})
	}
	return bouts
}
