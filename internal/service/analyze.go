package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
	"github.com/daniellalimbag/dory-app-sub000/internal/metricsapi"
	"github.com/daniellalimbag/dory-app-sub000/internal/store"
	"github.com/daniellalimbag/dory-app-sub000/internal/strokestyle"
)

// RemoteAnalyzer computes session metrics somewhere else
type RemoteAnalyzer interface {
	AnalyzeSession(ctx context.Context, req *metricsapi.SessionRequest) (*metricsapi.SessionResponse, error)
}

// AnalysisService turns stored samples into lap metrics. It asks the remote
// metrics service first and falls back to the on-device pipeline.
type AnalysisService struct {
	remote     RemoteAnalyzer
	store      *store.DB
	params     analysis.Params
	classifier strokestyle.Classifier
	now        func() time.Time
}

// NewAnalysisService creates the service. remote and classifier may be nil.
func NewAnalysisService(remote RemoteAnalyzer, store *store.DB, params analysis.Params, classifier strokestyle.Classifier) *AnalysisService {
	return &AnalysisService{
		remote:     remote,
		store:      store,
		params:     params.WithDefaults(),
		classifier: classifier,
		now:        time.Now,
	}
}

// RateLimitStatus returns the remote requests left in the current window,
// or -1 when there is no remote or it is not rate limited
func (s *AnalysisService) RateLimitStatus() int {
	if rl, ok := s.remote.(interface{ RateLimitStatus() int }); ok {
		return rl.RateLimitStatus()
	}
	return -1
}

// AnalyzeProgress reports progress during AnalyzeAll
type AnalyzeProgress struct {
	Total          int
	Completed      int
	CurrentSession string
	Error          error
}

// AnalyzeResult summarises an AnalyzeAll run
type AnalyzeResult struct {
	SessionsAnalyzed int
	Remote           int
	Device           int
	Fallback         int
	Labeled          int // sessions whose samples were labeled by the classifier
	Errors           []error
}

// AnalyzeAll analyzes every session with new samples. Per-session failures
// are collected in the result and do not stop the run.
func (s *AnalysisService) AnalyzeAll(ctx context.Context, progress chan<- AnalyzeProgress) (*AnalyzeResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &AnalyzeResult{}

	sessions, err := s.store.SessionsNeedingAnalysis(AnalyzeBatchLimit)
	if err != nil {
		return result, fmt.Errorf("getting sessions needing analysis: %w", err)
	}

	if progress != nil {
		progress <- AnalyzeProgress{Total: len(sessions)}
	}

	for i, session := range sessions {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		if progress != nil {
			progress <- AnalyzeProgress{
				Total:          len(sessions),
				Completed:      i,
				CurrentSession: session.Name,
			}
		}

		summary, labeled, err := s.analyze(ctx, &session)
		if err != nil {
			err = fmt.Errorf("session %s (%s): %w", session.ID, session.Name, err)
			result.Errors = append(result.Errors, err)
			if progress != nil {
				progress <- AnalyzeProgress{Total: len(sessions), Completed: i, CurrentSession: session.Name, Error: err}
			}
			continue
		}

		result.SessionsAnalyzed++
		if labeled {
			result.Labeled++
		}
		switch summary.Source {
		case store.SourceRemote:
			result.Remote++
		case store.SourceDevice:
			result.Device++
		case store.SourceFallback:
			result.Fallback++
		}
	}

	if progress != nil {
		progress <- AnalyzeProgress{Total: len(sessions), Completed: len(sessions)}
	}

	return result, nil
}

// AnalyzeSession analyzes one session and stores the result
func (s *AnalysisService) AnalyzeSession(ctx context.Context, id string) (*store.SessionResult, error) {
	session, err := s.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	summary, _, err := s.analyze(ctx, session)
	return summary, err
}

func (s *AnalysisService) analyze(ctx context.Context, session *store.Session) (*store.SessionResult, bool, error) {
	samples, err := s.store.GetSamples(session.ID)
	if err != nil {
		return nil, false, fmt.Errorf("getting samples: %w", err)
	}

	labeled, err := s.label(ctx, session.ID, samples)
	if err != nil {
		return nil, false, err
	}

	params := s.params
	if session.PoolLengthMeters > 0 {
		params.PoolLengthMeters = session.PoolLengthMeters
	}

	fs := analysis.DefaultSamplingRate
	if len(samples) > 0 {
		fs = analysis.EstimateSamplingRate(analysis.Timestamps(samples))
	}

	var (
		laps     []analysis.LapMetrics
		averages analysis.SessionAverages
		source   string
	)
	if resp, err := s.remoteAnalyze(ctx, session, samples, params); err == nil {
		laps, averages, source = resp.Laps, resp.Averages.Means(), store.SourceRemote
	} else {
		if s.remote != nil {
			log.Printf("analysis: remote metrics for %s failed, using on-device pipeline: %v", session.ID, err)
		}
		res := analysis.Analyze(samples, params)
		laps, averages, source = res.Laps, res.Averages, store.SourceDevice
		if res.Fallback {
			source = store.SourceFallback
		}
	}

	summary := summarize(session.ID, source, laps, averages, params.PoolLengthMeters, fs, samples)
	summary.AnalyzedAt = s.now()

	if err := s.store.SaveResult(summary, laps); err != nil {
		return nil, labeled, fmt.Errorf("saving result: %w", err)
	}
	return summary, labeled, nil
}

// errNoRemote marks that no remote service is configured
var errNoRemote = errors.New("no remote metrics service")

func (s *AnalysisService) remoteAnalyze(ctx context.Context, session *store.Session, samples []analysis.Sample, params analysis.Params) (*metricsapi.SessionResponse, error) {
	if s.remote == nil {
		return nil, errNoRemote
	}
	return s.remote.AnalyzeSession(ctx, &metricsapi.SessionRequest{
		SessionID:        metricsapi.NumericID(session.ID),
		SwimmerID:        metricsapi.NumericID(session.SwimmerID),
		ExerciseID:       metricsapi.NumericID(session.ExerciseID),
		PoolLengthMeters: params.PoolLengthMeters,
		Samples:          metricsapi.WireSamples(samples),
	})
}

// label runs the classifier over sessions that carry no labels yet and
// stores the labeled samples
func (s *AnalysisService) label(ctx context.Context, sessionID string, samples []analysis.Sample) (bool, error) {
	if s.classifier == nil || len(strokestyle.SampleLabels(samples)) > 0 {
		return false, nil
	}
	labels, err := strokestyle.Label(ctx, s.classifier, samples)
	if err != nil {
		return false, fmt.Errorf("labeling samples: %w", err)
	}
	if len(labels) == 0 {
		return false, nil
	}
	if err := s.store.SaveSamples(sessionID, samples); err != nil {
		return false, fmt.Errorf("saving labeled samples: %w", err)
	}
	return true, nil
}

// summarize builds the stored session record from lap metrics
func summarize(sessionID, source string, laps []analysis.LapMetrics, averages analysis.SessionAverages, poolLength, fs float64, samples []analysis.Sample) *store.SessionResult {
	strokes := 0
	for _, lap := range laps {
		strokes += lap.StrokeCount
	}
	return &store.SessionResult{
		SessionID:           sessionID,
		Source:              source,
		LapCount:            len(laps),
		StrokeCount:         strokes,
		AvgLapTimeSeconds:   averages.LapTimeSeconds,
		AvgStrokeCount:      averages.StrokeCount,
		AvgVelocity:         averages.VelocityMetersPerSecond,
		AvgStrokeRate:       averages.StrokeRatePerSecond,
		AvgStrokeLength:     averages.StrokeLengthMeters,
		AvgStrokeIndex:      averages.StrokeIndex,
		TotalDistanceMeters: poolLength * float64(len(laps)),
		SamplingRateHz:      fs,
		HeartRate:           heartRateSummary(samples),
	}
}

// heartRateSummary ignores readings outside the plausible range
func heartRateSummary(samples []analysis.Sample) store.HeartRate {
	var hr []float64
	for _, s := range samples {
		if s.HeartRate != nil && *s.HeartRate >= MinValidHeartRate && *s.HeartRate <= MaxValidHeartRate {
			hr = append(hr, *s.HeartRate)
		}
	}
	if len(hr) == 0 {
		return store.HeartRate{}
	}
	first, last := hr[0], hr[len(hr)-1]
	avg := stat.Mean(hr, nil)
	peak := floats.Max(hr)
	return store.HeartRate{First: &first, Last: &last, Avg: &avg, Max: &peak}
}
