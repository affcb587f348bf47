package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/devlens-io/devlens/internal/domain"
)

// mockSource is a mock implementation of the ActivitySource interface.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) FetchActivities(ctx context.Context, subject string) ([]domain.RawRecord, error) {
	args := m.Called(ctx, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRecord), args.Error(1)
}

// stubEmbedder returns a fixed vector; it records whether it was called so
// tests can prove the empty-intent fallback skips embedding entirely.
type stubEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls++
	return s.vec, s.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// decadeRecords returns 20 raw records for octocat: 3 closed pull requests,
// 13 comments, 4 repository creations, spanning 2015-09-16 to 2025-01-18.
func decadeRecords() []domain.RawRecord {
	records := []domain.RawRecord{
		{RecordType: "repository_created", RepoName: "octocat/seed", CreatedAt: ts(2015, time.September, 16), Number: 100},
	}
	for i := 0; i < 3; i++ {
		records = append(records, domain.RawRecord{
			RecordType: "pull_request", RepoName: "octo/widgets", Author: "octocat",
			CreatedAt: ts(2017+i, time.May, 1), Title: "pr", State: "closed", Number: int64(i + 1),
		})
	}
	for i := 0; i < 13; i++ {
		records = append(records, domain.RawRecord{
			RecordType: "comment", RepoName: "octo/widgets", Author: "octocat",
			CreatedAt: ts(2018, time.January, 1).AddDate(0, i*3, 0), CommentID: int64(200 + i),
			IssueURL: "https://api.github.com/repos/octo/widgets/issues/42",
		})
	}
	for i := 0; i < 3; i++ {
		records = append(records, domain.RawRecord{
			RecordType: "repository_created", RepoName: "octocat/seed2", CreatedAt: ts(2022+i, time.March, 1), Number: int64(300 + i),
		})
	}
	records[len(records)-1].CreatedAt = ts(2025, time.January, 18)
	return records
}

func TestAnalyzer_Analyze_DecadeScenario(t *testing.T) {
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(decadeRecords(), nil)
	embedder := &stubEmbedder{}

	analyzer := NewAnalyzer(source, embedder, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{Subject: "octocat"})

	require.NoError(t, err)
	assert.Equal(t, 20, report.Total)
	assert.Equal(t, map[domain.Kind]int{
		domain.KindComment:           13,
		domain.KindRepositoryCreated: 4,
		domain.KindPullRequest:       3,
	}, report.KindCounts)
	assert.InDelta(t, 2.14, report.Velocity.Overall.PerYear, 0.01)
	assert.Equal(t, map[domain.State]int{domain.StateClosed: 3}, report.States.PullRequests)
	assert.Empty(t, report.States.Issues)

	// Consistency invariant: kind counts sum to the total.
	sum := 0
	for _, n := range report.KindCounts {
		sum += n
	}
	assert.Equal(t, report.Total, sum)

	// Empty intent means the embedder is never consulted.
	assert.Zero(t, embedder.calls)

	// Collaboration picks up all 13 comments as issue comments.
	assert.Equal(t, 13, report.Collaboration.IssueComments)

	source.AssertExpectations(t)
}

func TestAnalyzer_Analyze_EmptyStoreYieldsEmptyReport(t *testing.T) {
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "ghost").Return([]domain.RawRecord{}, nil)

	analyzer := NewAnalyzer(source, &stubEmbedder{}, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{Subject: "ghost"})

	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Empty(t, report.KindCounts)
	assert.Empty(t, report.Repositories)
	assert.Nil(t, report.Temporal.Earliest)
	assert.Empty(t, report.Temporal.Gaps)
	assert.Empty(t, report.Collaboration.CommentRefs)
	assert.False(t, report.Velocity.Overall.Available)
}

func TestAnalyzer_Analyze_FetchErrorPropagates(t *testing.T) {
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(nil, errors.New("store unavailable"))

	analyzer := NewAnalyzer(source, &stubEmbedder{}, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{Subject: "octocat"})

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "fetch activities")
}

func TestAnalyzer_Analyze_EmbedErrorPropagates(t *testing.T) {
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(decadeRecords(), nil)
	embedder := &stubEmbedder{err: errors.New("provider down")}

	analyzer := NewAnalyzer(source, embedder, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{Subject: "octocat", IntentText: "reviews"})

	require.Error(t, err)
	assert.Nil(t, report)
	assert.Contains(t, err.Error(), "embed intent")
}

func TestAnalyzer_Analyze_SemanticRetrieval(t *testing.T) {
	when := ts(2024, time.January, 1)
	records := []domain.RawRecord{
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "relevant", Number: 1, State: "open", Embedding: []float32{1, 0}},
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "orthogonal", Number: 2, State: "open", Embedding: []float32{0, 1}},
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "opposite", Number: 3, State: "open", Embedding: []float32{-1, 0}},
	}
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(records, nil)
	embedder := &stubEmbedder{vec: []float32{1, 0}}

	analyzer := NewAnalyzer(source, embedder, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{
		Subject:             "octocat",
		IntentText:          "widget work",
		SimilarityThreshold: thresholdOf(0.6),
	})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, map[domain.Kind]int{domain.KindIssue: 1}, report.KindCounts)
}

func thresholdOf(v float64) *float64 {
	return &v
}

func TestAnalyzer_Analyze_ExplicitZeroThresholdAcceptsEverything(t *testing.T) {
	when := ts(2024, time.January, 1)
	records := []domain.RawRecord{
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "relevant", Number: 1, State: "open", Embedding: []float32{1, 0}},
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "opposite", Number: 2, State: "open", Embedding: []float32{-1, 0}},
	}
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(records, nil)
	embedder := &stubEmbedder{vec: []float32{1, 0}}

	analyzer := NewAnalyzer(source, embedder, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{
		Subject:             "octocat",
		IntentText:          "widget work",
		SimilarityThreshold: thresholdOf(0),
	})

	require.NoError(t, err)
	// Zero must not silently revert to the 0.5 default, which would drop
	// the opposite vector (normalized similarity 0.0).
	assert.Equal(t, 2, report.Total)
}

func TestAnalyzer_Analyze_UnsetThresholdUsesDefault(t *testing.T) {
	when := ts(2024, time.January, 1)
	records := []domain.RawRecord{
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "relevant", Number: 1, State: "open", Embedding: []float32{1, 0}},
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "opposite", Number: 2, State: "open", Embedding: []float32{-1, 0}},
	}
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(records, nil)
	embedder := &stubEmbedder{vec: []float32{1, 0}}

	analyzer := NewAnalyzer(source, embedder, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{
		Subject:    "octocat",
		IntentText: "widget work",
	})

	require.NoError(t, err)
	// The configured default of 0.5 drops the opposite vector.
	assert.Equal(t, 1, report.Total)
}

func TestAnalyzer_Analyze_MaxResultsCap(t *testing.T) {
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(decadeRecords(), nil)

	analyzer := NewAnalyzer(source, &stubEmbedder{}, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{Subject: "octocat", MaxResults: 5})

	require.NoError(t, err)
	assert.Equal(t, 5, report.Total)
	// Fallback retrieval keeps the most recent activities.
	require.NotNil(t, report.Temporal.Latest)
	assert.Equal(t, ts(2025, time.January, 18), *report.Temporal.Latest)
}

func TestAnalyzer_Analyze_SkippedRecordsSurfaceInReport(t *testing.T) {
	when := ts(2024, time.January, 1)
	records := []domain.RawRecord{
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when,
			Title: "fine", Number: 1, State: "open"},
		{RecordType: "issue", RepoName: "octo/widgets", Author: "octocat", Number: 2, Title: "no timestamp"},
		{RecordType: "gist", RepoName: "octo/widgets", Author: "octocat", CreatedAt: when},
	}
	source := new(mockSource)
	source.On("FetchActivities", mock.Anything, "octocat").Return(records, nil)

	analyzer := NewAnalyzer(source, &stubEmbedder{}, domain.DefaultConfig(), testLogger())
	report, err := analyzer.Analyze(context.Background(), domain.Query{Subject: "octocat"})

	require.NoError(t, err)
	assert.Equal(t, 1, report.Total)
	assert.Equal(t, domain.SkippedRecords{Malformed: 1, UnsupportedKind: 1}, report.SkippedRecords)
}
