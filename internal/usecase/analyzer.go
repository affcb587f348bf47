package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/devlens-io/devlens/internal/domain"
)

// ActivitySource is the external activity record store. A fetch error is
// distinct from an empty result: an empty slice with a nil error means the
// subject simply has no recorded activity.
type ActivitySource interface {
	FetchActivities(ctx context.Context, subject string) ([]domain.RawRecord, error)
}

// IntentEmbedder turns the query's free-text intent into the fixed-length
// vector the retriever ranks against. Determinism for identical input is
// not guaranteed by providers; the pipeline tolerates minor drift.
type IntentEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Analyzer is the use case for answering activity queries. It orchestrates
// the pipeline: fetch → normalize → retrieve → aggregate → compose. Each
// request works on its own immutable snapshot, so concurrent requests need
// no locking.
type Analyzer struct {
	source   ActivitySource
	embedder IntentEmbedder
	cfg      domain.Config
	logger   *log.Logger
}

// NewAnalyzer creates a new Analyzer instance.
func NewAnalyzer(source ActivitySource, embedder IntentEmbedder, cfg domain.Config, logger *log.Logger) *Analyzer {
	return &Analyzer{
		source:   source,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger,
	}
}

// Analyze runs the full pipeline for one query and returns the composed
// report. A subject with zero matching activities yields a valid, explicitly
// empty report, never an error; boundary failures (fetch, embedding) are
// propagated with context instead of being coerced into emptiness.
func (a *Analyzer) Analyze(ctx context.Context, query domain.Query) (*domain.Report, error) {
	a.logger.Printf("Usecase: analyzing activity for %q", query.Subject)

	maxResults := query.MaxResults
	if maxResults <= 0 {
		maxResults = a.cfg.MaxResults
	}
	// An explicit zero threshold is valid (it accepts everything); only an
	// absent one falls back to the configured default.
	threshold := a.cfg.SimilarityThreshold
	if query.SimilarityThreshold != nil {
		threshold = *query.SimilarityThreshold
	}

	raw, err := a.source.FetchActivities(ctx, query.Subject)
	if err != nil {
		return nil, fmt.Errorf("fetch activities for %q: %w", query.Subject, err)
	}

	activities, skipped := NormalizeAll(raw)
	activities = filterBySubject(activities, query.Subject)
	if skipped.Total() > 0 {
		a.logger.Printf("Usecase: skipped %d malformed and %d unsupported records", skipped.Malformed, skipped.UnsupportedKind)
	}

	var retrieved []domain.Activity
	if query.IntentText == "" {
		// Defined fallback: no intent means no similarity filtering, just
		// the most recent activities.
		retrieved = RetrieveRecent(activities, maxResults)
	} else {
		queryEmbedding, err := a.embedder.Embed(ctx, query.IntentText)
		if err != nil {
			return nil, fmt.Errorf("embed intent: %w", err)
		}
		retrieved = Retrieve(activities, queryEmbedding, threshold, maxResults)
	}
	a.logger.Printf("Usecase: retrieved %d of %d activities", len(retrieved), len(activities))

	// The three aggregators are independent and read-only over the
	// retrieved snapshot, so they fan out concurrently.
	var (
		temporal      TemporalStats
		repositories  []domain.RepoBreakdown
		collaboration domain.CollaborationIndicators
	)
	eg, _ := errgroup.WithContext(ctx)
	eg.Go(func() error {
		temporal = AggregateTemporal(retrieved, a.cfg.RecentWindowMonths, a.cfg.GapThreshold)
		return nil
	})
	eg.Go(func() error {
		repositories = AggregateRepositories(retrieved)
		return nil
	})
	eg.Go(func() error {
		collaboration = AnalyzeCollaboration(retrieved)
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	velocity := CalculateVelocity(temporal, retrieved)

	report, err := ComposeReport(query, retrieved, skipped, temporal, repositories, velocity, collaboration)
	if err != nil {
		return nil, err
	}
	a.logger.Println("Usecase: analysis complete.")
	return report, nil
}

// filterBySubject keeps activities attributable to the subject. Authored
// activities match on the handle; repository-creation events carry no
// author and match on the owner segment of the repository name.
func filterBySubject(activities []domain.Activity, subject string) []domain.Activity {
	filtered := make([]domain.Activity, 0, len(activities))
	for _, a := range activities {
		switch {
		case a.Author == subject:
			filtered = append(filtered, a)
		case a.Kind == domain.KindRepositoryCreated && strings.HasPrefix(a.RepoName, subject+"/"):
			filtered = append(filtered, a)
		}
	}
	return filtered
}
