package domain

import "time"

// Default tuning values. MaxResults and the similarity threshold can be
// overridden per query; the recent window and gap threshold are fixed per
// pipeline configuration.
const (
	DefaultMaxResults          = 20
	DefaultSimilarityThreshold = 0.5
	DefaultRecentWindowMonths  = 18
	DefaultGapThresholdDays    = 90
)

// Config bundles every tunable of the analysis pipeline into one explicit,
// immutable value passed in at the boundary. Components never reach for
// hidden defaults of their own.
type Config struct {
	// MaxResults bounds the retrieved set when the query does not set its
	// own cap.
	MaxResults int
	// SimilarityThreshold is the default minimum normalized similarity.
	SimilarityThreshold float64
	// RecentWindowMonths is the trailing horizon, relative to the latest
	// retrieved activity, that separates "recent" from "historical".
	RecentWindowMonths int
	// GapThreshold is the minimum separation between consecutive activities
	// that counts as a gap.
	GapThreshold time.Duration
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		MaxResults:          DefaultMaxResults,
		SimilarityThreshold: DefaultSimilarityThreshold,
		RecentWindowMonths:  DefaultRecentWindowMonths,
		GapThreshold:        DefaultGapThresholdDays * 24 * time.Hour,
	}
}
