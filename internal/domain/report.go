package domain

import "time"

// Query describes one analysis request. It is immutable per request; there
// is no shared mutable state across requests.
type Query struct {
	// Subject is the developer handle the query is about.
	Subject string `json:"subject"`
	// IntentText is the free-text intent. Empty means "no semantic filter":
	// retrieval degrades to the most recent activities.
	IntentText string `json:"intent_text,omitempty"`
	// MaxResults caps the retrieved set. Zero or negative falls back to the
	// configured default.
	MaxResults int `json:"max_results"`
	// SimilarityThreshold is the minimum normalized cosine similarity in
	// [0,1] an activity must meet when IntentText is non-empty. Nil falls
	// back to the configured default; an explicit zero is a valid override
	// meaning "accept everything".
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// SkippedRecords counts raw records dropped during normalization, so that
// silent data loss stays visible in the report.
type SkippedRecords struct {
	Malformed       int `json:"malformed"`
	UnsupportedKind int `json:"unsupported_kind"`
}

// Total returns the number of records dropped for any reason.
func (s SkippedRecords) Total() int {
	return s.Malformed + s.UnsupportedKind
}

// ActivityGap is a pair of consecutive activities whose separation exceeds
// the configured gap threshold.
type ActivityGap struct {
	Start ActivityRef `json:"start"`
	End   ActivityRef `json:"end"`
	Days  float64     `json:"days"`
}

// TemporalBreakdown is the output of the temporal aggregator. All pointer
// fields are nil for an empty activity set.
type TemporalBreakdown struct {
	Earliest          *time.Time    `json:"earliest,omitempty"`
	Latest            *time.Time    `json:"latest,omitempty"`
	RecentWindowStart *time.Time    `json:"recent_window_start,omitempty"`
	RecentCount       int           `json:"recent_count"`
	HistoricalCount   int           `json:"historical_count"`
	Gaps              []ActivityGap `json:"gaps"`
	MeanGapDays       float64       `json:"mean_gap_days"`
	LongestGapDays    float64       `json:"longest_gap_days"`
}

// RepoBreakdown is the per-repository engagement summary.
type RepoBreakdown struct {
	Name       string       `json:"name"`
	KindCounts map[Kind]int `json:"kind_counts"`
	// EngagementScore ranks code contribution over commentary:
	// 3 per pull request, 2 per issue, 1 per comment, 1 per repository
	// created. The weights are fixed by design.
	EngagementScore int `json:"engagement_score"`
}

// StateBreakdown carries the headline per-state counts for the stateful
// kinds: merged, closed and open pull requests, open and closed issues.
// Only states actually present in the retrieved set appear in the maps.
type StateBreakdown struct {
	PullRequests map[State]int `json:"pull_requests,omitempty"`
	Issues       map[State]int `json:"issues,omitempty"`
}

// Rate is a per-year velocity. Available is false when the underlying data
// is absent from the activity set, so a missing metric is never mistaken
// for a zero one.
type Rate struct {
	PerYear   float64 `json:"per_year"`
	Available bool    `json:"available"`
}

// VelocityMetrics are the per-year rates derived from the temporal breakdown.
type VelocityMetrics struct {
	Overall      Rate `json:"overall"`
	Recent       Rate `json:"recent"`
	PullRequests Rate `json:"pull_requests"`
	// Commits is always reported as unavailable: commit data is not part of
	// the activity model. The field exists so report consumers see an
	// explicit "unavailable" rather than a misleading zero.
	Commits Rate `json:"commits"`
}

// CommentRef is the (repo, external_id) pair kept for traceability.
type CommentRef struct {
	RepoName   string `json:"repo_name"`
	ExternalID int64  `json:"external_id"`
}

// CollaborationIndicators summarizes comment activity split by the kind of
// entity each comment is structurally linked to.
type CollaborationIndicators struct {
	PRComments       int          `json:"pr_comments"`
	IssueComments    int          `json:"issue_comments"`
	UnlinkedComments int          `json:"unlinked_comments"`
	CommentRefs      []CommentRef `json:"comment_refs"`
}

// Report is the composed analysis result. It is a pure function of the
// normalized activities matching the query subject plus the query itself.
type Report struct {
	Subject        string                  `json:"subject"`
	Intent         string                  `json:"intent,omitempty"`
	Total          int                     `json:"total_activities"`
	KindCounts     map[Kind]int            `json:"kind_counts"`
	States         StateBreakdown          `json:"states"`
	SkippedRecords SkippedRecords          `json:"skipped_records"`
	Temporal       TemporalBreakdown       `json:"temporal"`
	Repositories   []RepoBreakdown         `json:"repositories"`
	Velocity       VelocityMetrics         `json:"velocity"`
	Collaboration  CollaborationIndicators `json:"collaboration"`
}
