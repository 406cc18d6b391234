package tui

import (
	"math"
	"testing"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{9.6, "0:10"},
		{65, "1:05"},
		{3600, "1:00:00"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestFormatPace100(t *testing.T) {
	tests := []struct {
		velocity float64
		want     string
	}{
		{1, "1:40/100m"},
		{2.5, "0:40/100m"},
		{0, "-"},
		{-1, "-"},
		{math.NaN(), "-"},
	}

	for _, tt := range tests {
		if got := formatPace100(tt.velocity); got != tt.want {
			t.Errorf("formatPace100(%v) = %q, want %q", tt.velocity, got, tt.want)
		}
	}
}

func TestTruncateName(t *testing.T) {
	if got := truncateName("Short", 10); got != "Short" {
		t.Errorf("truncateName = %q, want Short", got)
	}
	if got := truncateName("Morning threshold set", 10); got != "Morning..." {
		t.Errorf("truncateName = %q, want Morning...", got)
	}
	if got := truncateName("Schwimmtraining über", 10); got != "Schwimm..." {
		t.Errorf("truncateName = %q, want Schwimm...", got)
	}
}

func TestDownsample(t *testing.T) {
	data := []float64{1, 3, 5, 7, 9, 11}

	got := downsample(data, 3)
	want := []float64{2, 6, 10}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("downsample[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if got := downsample(data, 10); len(got) != len(data) {
		t.Errorf("short input should be returned as is, got %d values", len(got))
	}
}
