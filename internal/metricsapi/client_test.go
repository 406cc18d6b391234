package metricsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
)

func fptr(v float64) *float64 { return &v }

func iptr(v int64) *int64 { return &v }

func TestAnalyzeSession(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/metrics/session" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"session_id": 12,
			"swimmer_id": null,
			"exercise_id": null,
			"session_averages": {"lap_count": 2, "stroke_count": 15, "avg_lap_time_s": 40, "avg_velocity_m_per_s": 1.25},
			"laps": [
				{"lap_number": 1, "lap_time_s": 38, "stroke_count": 14, "velocity_m_per_s": 1.3, "stroke_type": "Freestyle"},
				{"lap_number": 2, "lap_time_s": 42, "stroke_count": 16, "velocity_m_per_s": 1.2}
			]
		}`))
	}))
	defer srv.Close()

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret", TokenType: "Bearer"})
	client := NewClient(srv.URL+"/", ts, Options{Timeout: 5 * time.Second})

	req := &SessionRequest{
		SessionID:        iptr(12),
		PoolLengthMeters: 50,
		Samples: WireSamples([]analysis.Sample{
			{Timestamp: 0, AccelX: fptr(1), StrokeType: "Freestyle"},
			{Timestamp: 20, GyroZ: fptr(-2)},
		}),
	}
	resp, err := client.AnalyzeSession(context.Background(), req)
	if err != nil {
		t.Fatalf("AnalyzeSession() error = %v", err)
	}

	if got["session_id"] != 12.0 || got["swimmer_id"] != nil {
		t.Errorf("server saw ids %v, %v", got["session_id"], got["swimmer_id"])
	}
	samples, _ := got["samples"].([]any)
	if len(samples) != 2 {
		t.Fatalf("server saw %d samples", len(samples))
	}
	// missing axes go out as explicit zeros
	second := samples[1].(map[string]any)
	if second["accel_y"] != 0.0 || second["gyro_z"] != -2.0 || second["timestamp_ms"] != 20.0 {
		t.Errorf("second sample = %v", second)
	}

	if resp.SessionID == nil || *resp.SessionID != 12 {
		t.Errorf("SessionID = %v, want 12", resp.SessionID)
	}
	if resp.Averages.LapCount != 2 || resp.Averages.StrokeCount != 15 {
		t.Errorf("averages = %+v", resp.Averages)
	}
	if resp.Averages.Means().VelocityMetersPerSecond != 1.25 {
		t.Errorf("avg velocity = %v, want 1.25", resp.Averages.Means().VelocityMetersPerSecond)
	}
	if len(resp.Laps) != 2 || resp.Laps[0].StrokeType != "Freestyle" || resp.Laps[1].StrokeCount != 16 {
		t.Errorf("laps = %+v", resp.Laps)
	}
}

// The reference metrics service sends integer ids and a fractional
// per-lap stroke_count
func TestDecodeFractionalStrokeCount(t *testing.T) {
	body := `{
		"session_id": 3,
		"swimmer_id": 5,
		"exercise_id": 9,
		"session_averages": {
			"lap_count": 2,
			"stroke_count": 12.5,
			"avg_lap_time_s": 31.5,
			"avg_velocity_m_per_s": 1.59,
			"avg_stroke_rate_hz": 0.4,
			"avg_stroke_length_m": 3.97,
			"avg_stroke_index": 6.3
		},
		"laps": [
			{"lap_number": 1, "lap_time_s": 30.0, "stroke_count": 12, "velocity_m_per_s": 1.67,
			 "stroke_rate_hz": 0.4, "stroke_rate_spm": 24.0, "stroke_length_m": 4.17, "stroke_index": 6.9, "stroke_type": null},
			{"lap_number": 2, "lap_time_s": 33.0, "stroke_count": 13, "velocity_m_per_s": 1.52,
			 "stroke_rate_hz": 0.39, "stroke_rate_spm": 23.6, "stroke_length_m": 3.86, "stroke_index": 5.9, "stroke_type": "Freestyle"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, nil, Options{}).AnalyzeSession(context.Background(), &SessionRequest{})
	if err != nil {
		t.Fatalf("AnalyzeSession() error = %v", err)
	}
	if resp.SessionID == nil || *resp.SessionID != 3 || *resp.SwimmerID != 5 || *resp.ExerciseID != 9 {
		t.Errorf("ids = %v, %v, %v", resp.SessionID, resp.SwimmerID, resp.ExerciseID)
	}
	means := resp.Averages.Means()
	if means.StrokeCount != 12.5 || means.LapTimeSeconds != 31.5 || means.StrokeIndex != 6.3 {
		t.Errorf("means = %+v", means)
	}
	if len(resp.Laps) != 2 || resp.Laps[0].StrokeType != "" || resp.Laps[1].StrokeRateSpm != 23.6 {
		t.Errorf("laps = %+v", resp.Laps)
	}
}

func TestNumericID(t *testing.T) {
	tests := []struct {
		id   string
		want *int64
	}{
		{"42", iptr(42)},
		{"", nil},
		{"3f2b9c1e-8d4a-4c1e-9b7a-2d5e6f7a8b9c", nil},
		{"swimmer-1", nil},
	}
	for _, tt := range tests {
		got := NumericID(tt.id)
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("NumericID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestAnalyzeSessionAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "samples required", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil, Options{})
	_, err := client.AnalyzeSession(context.Background(), &SessionRequest{SessionID: iptr(1)})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest || apiErr.Body != "samples required" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	if err := NewClient(srv.URL, nil, Options{}).Health(context.Background()); err != nil {
		t.Errorf("Health() error = %v", err)
	}
}

func TestNewSessionResponse(t *testing.T) {
	req := &SessionRequest{SessionID: iptr(1), SwimmerID: iptr(2)}
	res := analysis.Result{
		Laps: []analysis.LapMetrics{
			{LapNumber: 1, StrokeCount: 10},
			{LapNumber: 2, StrokeCount: 13},
		},
		Averages: analysis.SessionAverages{StrokeCount: 11.5, LapTimeSeconds: 30},
	}

	resp := NewSessionResponse(req, res)
	if *resp.SessionID != 1 || *resp.SwimmerID != 2 || resp.ExerciseID != nil {
		t.Errorf("ids not echoed: %+v", resp)
	}
	if resp.Averages.LapCount != 2 || resp.Averages.StrokeCount != 11.5 {
		t.Errorf("averages = %+v", resp.Averages)
	}
	if resp.Averages.Means() != res.Averages {
		t.Errorf("Means() = %+v, want %+v", resp.Averages.Means(), res.Averages)
	}

	empty := NewSessionResponse(req, analysis.Result{})
	data, _ := json.Marshal(empty)
	var decoded map[string]any
	json.Unmarshal(data, &decoded)
	if laps, ok := decoded["laps"].([]any); !ok || len(laps) != 0 {
		t.Errorf("empty laps encoded as %v", decoded["laps"])
	}
}

func TestAnalysisSamples(t *testing.T) {
	wire := []Sample{{Timestamp: 5, AccelY: 2, HeartRate: fptr(120), StrokeType: "Butterfly"}}
	got := AnalysisSamples(wire)
	if len(got) != 1 || got[0].Timestamp != 5 || *got[0].AccelY != 2 || *got[0].AccelX != 0 {
		t.Fatalf("AnalysisSamples = %+v", got)
	}
	if *got[0].HeartRate != 120 || got[0].StrokeType != "Butterfly" {
		t.Errorf("sample = %+v", got[0])
	}
}
