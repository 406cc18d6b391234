package service

const (
	// HR validation thresholds
	MinValidHeartRate = 30
	MaxValidHeartRate = 230

	// Pagination limits
	RecentSessionsLimit = 50
	AnalyzeBatchLimit   = 200

	// Seconds per minute for chart resampling
	SecondsPerMinute = 60
)
