package tui

import (
	"fmt"
	"math"
	"time"
)

// formatDuration renders seconds as "m:ss", or "h:mm:ss" past an hour
func formatDuration(seconds float64) string {
	total := int(math.Round(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// formatPace100 renders a velocity as time per 100 m
func formatPace100(velocity float64) string {
	if velocity <= 0 || math.IsNaN(velocity) || math.IsInf(velocity, 0) {
		return "-"
	}
	return formatDuration(100/velocity) + "/100m"
}

func formatClock(d time.Duration) string {
	return formatDuration(d.Seconds())
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// downsample averages data into targetLen buckets
func downsample(data []float64, targetLen int) []float64 {
	if len(data) <= targetLen {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := 0; i < targetLen; i++ {
		start := int(float64(i) * ratio)
		end := min(int(float64(i+1)*ratio), len(data))

		sum := 0.0
		count := 0
		for j := start; j < end; j++ {
			sum += data[j]
			count++
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}
