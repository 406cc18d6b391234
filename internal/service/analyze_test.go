package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
	"github.com/daniellalimbag/dory-app-sub000/internal/metricsapi"
	"github.com/daniellalimbag/dory-app-sub000/internal/store"
	"github.com/daniellalimbag/dory-app-sub000/internal/strokestyle"
)

func fptr(v float64) *float64 { return &v }

// swim is 200 s at 10 Hz with rotation pauses starting at the given seconds
func swim(turnsAt ...float64) []analysis.Sample {
	samples := make([]analysis.Sample, 2000)
	for i := range samples {
		t := float64(i) / 10.0
		gyro := 20.0
		for _, turn := range turnsAt {
			if t >= turn && t < turn+2 {
				gyro = 0
			}
		}
		stroke := 3 * math.Sin(2*math.Pi*0.15*t)
		samples[i] = analysis.Sample{
			Timestamp: int64(i) * 100,
			AccelX:    fptr(13),
			AccelY:    fptr(stroke),
			AccelZ:    fptr(stroke),
			GyroX:     fptr(gyro),
			GyroY:     fptr(0),
			GyroZ:     fptr(0),
			HeartRate: fptr(100 + float64(i%50)),
		}
	}
	return samples
}

// still is 10 s of a resting wrist
func still() []analysis.Sample {
	samples := make([]analysis.Sample, 100)
	for i := range samples {
		samples[i] = analysis.Sample{Timestamp: int64(i) * 100, AccelZ: fptr(1)}
	}
	return samples
}

type fakeRemote struct {
	resp  *metricsapi.SessionResponse
	err   error
	calls []*metricsapi.SessionRequest
}

func (f *fakeRemote) AnalyzeSession(ctx context.Context, req *metricsapi.SessionRequest) (*metricsapi.SessionResponse, error) {
	f.calls = append(f.calls, req)
	return f.resp, f.err
}

func addSession(t *testing.T, db *store.DB, id string, pool float64, samples []analysis.Sample) {
	t.Helper()
	s := &store.Session{ID: id, Name: id, PoolLengthMeters: pool, StartedAt: time.Now()}
	if err := db.CreateSession(s); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveSamples(id, samples); err != nil {
		t.Fatal(err)
	}
}

func TestAnalyzeAllFallsBackToDevice(t *testing.T) {
	db := store.NewTestDB(t)
	addSession(t, db, "swim", 50, swim(50, 100, 150))
	addSession(t, db, "still", 25, still())

	remote := &fakeRemote{err: errors.New("connection refused")}
	svc := NewAnalysisService(remote, db, analysis.DefaultParams(), nil)

	progress := make(chan AnalyzeProgress, 100)
	result, err := svc.AnalyzeAll(context.Background(), progress)
	if err != nil {
		t.Fatalf("AnalyzeAll() error = %v", err)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("errors = %v", result.Errors)
	}
	if result.SessionsAnalyzed != 2 || result.Device != 1 || result.Fallback != 1 || result.Remote != 0 {
		t.Errorf("result = %+v", result)
	}
	if len(remote.calls) != 2 {
		t.Errorf("remote called %d times, want 2", len(remote.calls))
	}

	var last AnalyzeProgress
	for p := range progress {
		last = p
	}
	if last.Completed != 2 || last.Total != 2 {
		t.Errorf("final progress = %+v", last)
	}

	swimResult, err := db.GetResult("swim")
	if err != nil {
		t.Fatal(err)
	}
	if swimResult.Source != store.SourceDevice || swimResult.LapCount != 2 {
		t.Errorf("swim result = %+v", swimResult)
	}
	if swimResult.TotalDistanceMeters != 100 {
		t.Errorf("TotalDistanceMeters = %v, want 100", swimResult.TotalDistanceMeters)
	}
	if swimResult.SamplingRateHz != 10 {
		t.Errorf("SamplingRateHz = %v, want 10", swimResult.SamplingRateHz)
	}
	if swimResult.HeartRate.Max == nil || *swimResult.HeartRate.Max != 149 || *swimResult.HeartRate.First != 100 {
		t.Errorf("heart rate = %+v", swimResult.HeartRate)
	}

	stillResult, _ := db.GetResult("still")
	if stillResult.Source != store.SourceFallback || stillResult.LapCount != 1 || stillResult.StrokeCount != 0 {
		t.Errorf("still result = %+v", stillResult)
	}
	if stillResult.HeartRate.Avg != nil {
		t.Errorf("still session has no heart rate, got %+v", stillResult.HeartRate)
	}

	// nothing is left to analyze
	pending, _ := db.SessionsNeedingAnalysis(10)
	if len(pending) != 0 {
		t.Errorf("%d sessions still pending", len(pending))
	}
}

func TestAnalyzeSessionPrefersRemote(t *testing.T) {
	db := store.NewTestDB(t)
	addSession(t, db, "s1", 25, still())

	remote := &fakeRemote{resp: &metricsapi.SessionResponse{
		Averages: metricsapi.SessionAverages{
			LapCount:                3,
			StrokeCount:             15,
			LapTimeSeconds:          30,
			VelocityMetersPerSecond: 25.0 / 30,
		},
		Laps: []analysis.LapMetrics{
			{LapNumber: 1, LapTimeSeconds: 29, StrokeCount: 14},
			{LapNumber: 2, LapTimeSeconds: 30, StrokeCount: 15},
			{LapNumber: 3, LapTimeSeconds: 31, StrokeCount: 16},
		},
	}}
	svc := NewAnalysisService(remote, db, analysis.DefaultParams(), nil)

	summary, err := svc.AnalyzeSession(context.Background(), "s1")
	if err != nil {
		t.Fatalf("AnalyzeSession() error = %v", err)
	}
	if summary.Source != store.SourceRemote || summary.LapCount != 3 || summary.StrokeCount != 45 {
		t.Errorf("summary = %+v", summary)
	}
	if summary.TotalDistanceMeters != 75 {
		t.Errorf("TotalDistanceMeters = %v, want 75", summary.TotalDistanceMeters)
	}
	if summary.AvgLapTimeSeconds != 30 {
		t.Errorf("AvgLapTimeSeconds = %v, want 30", summary.AvgLapTimeSeconds)
	}
	if summary.AvgStrokeCount != 15 {
		t.Errorf("AvgStrokeCount = %v, want 15", summary.AvgStrokeCount)
	}

	req := remote.calls[0]
	if req.PoolLengthMeters != 25 || len(req.Samples) != 100 {
		t.Errorf("request pool = %v, samples = %d", req.PoolLengthMeters, len(req.Samples))
	}
	// session ids are UUIDs, which the wire cannot carry
	if req.SessionID != nil {
		t.Errorf("request session_id = %v, want null", *req.SessionID)
	}

	laps, _ := db.GetLaps("s1")
	if len(laps) != 3 || laps[2].StrokeCount != 16 {
		t.Errorf("stored laps = %+v", laps)
	}
}

func TestAnalyzeSessionNotFound(t *testing.T) {
	svc := NewAnalysisService(nil, store.NewTestDB(t), analysis.DefaultParams(), nil)
	if _, err := svc.AnalyzeSession(context.Background(), "missing"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestAnalyzeAllCancelled(t *testing.T) {
	db := store.NewTestDB(t)
	addSession(t, db, "s1", 50, still())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewAnalysisService(nil, db, analysis.DefaultParams(), nil)
	if _, err := svc.AnalyzeAll(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

type constantClassifier strokestyle.Style

func (c constantClassifier) Classify(ctx context.Context, w strokestyle.Window) (strokestyle.Style, error) {
	return strokestyle.Style(c), nil
}

func TestAnalyzeLabelsUnlabeledSamples(t *testing.T) {
	db := store.NewTestDB(t)
	addSession(t, db, "s1", 50, still())

	svc := NewAnalysisService(nil, db, analysis.DefaultParams(), constantClassifier(strokestyle.Breaststroke))
	result, err := svc.AnalyzeAll(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Labeled != 1 {
		t.Errorf("Labeled = %d, want 1", result.Labeled)
	}

	samples, _ := db.GetSamples("s1")
	if samples[0].StrokeType != "Breaststroke" {
		t.Errorf("StrokeType = %q, want Breaststroke", samples[0].StrokeType)
	}
	laps, _ := db.GetLaps("s1")
	if len(laps) != 1 || laps[0].StrokeType != "Breaststroke" {
		t.Errorf("laps = %+v", laps)
	}

	session, _ := db.GetSession("s1")
	if !session.Analyzed {
		t.Error("session should be marked analyzed after labeling")
	}
}

func TestHeartRateSummary(t *testing.T) {
	samples := []analysis.Sample{
		{HeartRate: fptr(0)}, // sensor dropout
		{HeartRate: fptr(110)},
		{},
		{HeartRate: fptr(150)},
		{HeartRate: fptr(130)},
	}
	hr := heartRateSummary(samples)
	if *hr.First != 110 || *hr.Last != 130 || *hr.Max != 150 || *hr.Avg != 130 {
		t.Errorf("summary = first %v last %v max %v avg %v", *hr.First, *hr.Last, *hr.Max, *hr.Avg)
	}
}
