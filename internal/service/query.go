package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/daniellalimbag/dory-app-sub000/internal/analysis"
	"github.com/daniellalimbag/dory-app-sub000/internal/export"
	"github.com/daniellalimbag/dory-app-sub000/internal/importer"
	"github.com/daniellalimbag/dory-app-sub000/internal/store"
	"github.com/daniellalimbag/dory-app-sub000/internal/strokestyle"
)

// QueryService provides the read side for the TUI and CLI, plus import and export
type QueryService struct {
	store      *store.DB
	poolLength float64
}

// NewQueryService creates a new query service
func NewQueryService(store *store.DB, poolLength float64) *QueryService {
	if poolLength <= 0 {
		poolLength = analysis.DefaultPoolLength
	}
	return &QueryService{store: store, poolLength: poolLength}
}

// SessionWithResult combines a session and its stored analysis, if any
type SessionWithResult struct {
	Session store.Session
	Result  *store.SessionResult // nil until analyzed
}

// ListSessions returns sessions newest first with their results
func (q *QueryService) ListSessions(limit, offset int) ([]SessionWithResult, error) {
	sessions, err := q.store.ListSessions(limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]SessionWithResult, 0, len(sessions))
	for _, s := range sessions {
		item := SessionWithResult{Session: s}
		result, err := q.store.GetResult(s.ID)
		if err != nil && !errors.Is(err, store.ErrResultNotFound) {
			return nil, fmt.Errorf("getting result for %s: %w", s.ID, err)
		}
		item.Result = result
		out = append(out, item)
	}
	return out, nil
}

// TotalSessions returns the number of stored sessions
func (q *QueryService) TotalSessions() (int, error) {
	return q.store.CountSessions()
}

// SessionDetail contains everything the detail view shows for one session
type SessionDetail struct {
	SessionWithResult
	Laps          []analysis.LapMetrics
	Styles        strokestyle.Distribution
	DominantStyle strokestyle.Style
	Duration      time.Duration

	// per-minute averages for charting
	HeartRate []float64
}

// GetSessionDetail returns the session, its laps and the stroke style mix
func (q *QueryService) GetSessionDetail(id string) (*SessionDetail, error) {
	session, err := q.store.GetSession(id)
	if err != nil {
		return nil, err
	}

	detail := &SessionDetail{SessionWithResult: SessionWithResult{Session: *session}}

	result, err := q.store.GetResult(id)
	if err != nil && !errors.Is(err, store.ErrResultNotFound) {
		return nil, err
	}
	detail.Result = result

	if detail.Laps, err = q.store.GetLaps(id); err != nil {
		return nil, err
	}

	samples, err := q.store.GetSamples(id)
	if err != nil {
		return nil, err
	}
	detail.Styles = strokestyle.Percentages(strokestyle.SampleLabels(samples))
	detail.DominantStyle = detail.Styles.Dominant()
	if len(samples) > 1 {
		detail.Duration = time.Duration(samples[len(samples)-1].Timestamp-samples[0].Timestamp) * time.Millisecond
	}
	detail.HeartRate = heartRatePerMinute(samples)

	return detail, nil
}

// heartRatePerMinute averages valid heart rate readings in one-minute buckets.
// Minutes without readings are skipped.
func heartRatePerMinute(samples []analysis.Sample) []float64 {
	if len(samples) == 0 {
		return nil
	}
	start := samples[0].Timestamp
	var out []float64
	minute := int64(-1)
	var sum float64
	var n int
	flush := func() {
		if n > 0 {
			out = append(out, sum/float64(n))
		}
		sum, n = 0, 0
	}
	for _, s := range samples {
		m := (s.Timestamp - start) / (SecondsPerMinute * 1000)
		if m != minute {
			flush()
			minute = m
		}
		if s.HeartRate != nil && *s.HeartRate >= MinValidHeartRate && *s.HeartRate <= MaxValidHeartRate {
			sum += *s.HeartRate
			n++
		}
	}
	flush()
	return out
}

// ImportOptions describe the session created by ImportCSV
type ImportOptions struct {
	Name             string
	SwimmerID        string
	ExerciseID       string
	PoolLengthMeters float64
}

// ImportCSV reads a sample file into a new session and returns it with the
// number of rows that were skipped
func (q *QueryService) ImportCSV(path string, opts ImportOptions) (*store.Session, int, error) {
	res, err := importer.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("reading %s: %w", path, err)
	}

	pool := opts.PoolLengthMeters
	if pool <= 0 {
		pool = q.poolLength
	}
	startedAt := time.UnixMilli(res.Samples[0].Timestamp)
	name := opts.Name
	if name == "" {
		name = "Swim " + startedAt.Format("2006-01-02 15:04")
	}

	session := &store.Session{
		ID:               uuid.NewString(),
		Name:             name,
		SwimmerID:        opts.SwimmerID,
		ExerciseID:       opts.ExerciseID,
		PoolLengthMeters: pool,
		StartedAt:        startedAt,
	}
	if err := q.store.CreateSession(session); err != nil {
		return nil, 0, err
	}
	if err := q.store.SaveSamples(session.ID, res.Samples); err != nil {
		return nil, 0, err
	}
	session.SampleCount = len(res.Samples)
	return session, res.Skipped, nil
}

// ExportSession writes the session's laps and samples as Parquet into dir
func (q *QueryService) ExportSession(id, dir string) ([]string, error) {
	if _, err := q.store.GetSession(id); err != nil {
		return nil, err
	}
	laps, err := q.store.GetLaps(id)
	if err != nil {
		return nil, err
	}
	samples, err := q.store.GetSamples(id)
	if err != nil {
		return nil, err
	}
	return export.Session(dir, id, laps, samples)
}
