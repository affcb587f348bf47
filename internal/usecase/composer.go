package usecase

import "github.com/devlens-io/devlens/internal/domain"

// ComposeReport merges the aggregator outputs into one immutable report.
// It recomputes the per-kind counts from the retrieved set and enforces the
// self-consistency invariant sum(kind counts) == total; a violation means a
// pipeline bug and surfaces as *ReportConsistencyError rather than being
// swallowed.
func ComposeReport(
	query domain.Query,
	retrieved []domain.Activity,
	skipped domain.SkippedRecords,
	temporal TemporalStats,
	repositories []domain.RepoBreakdown,
	velocity domain.VelocityMetrics,
	collaboration domain.CollaborationIndicators,
) (*domain.Report, error) {
	kindCounts := make(map[domain.Kind]int)
	for _, a := range retrieved {
		kindCounts[a.Kind]++
	}
	states := stateBreakdown(retrieved)

	sum := 0
	for _, n := range kindCounts {
		sum += n
	}
	if sum != len(retrieved) {
		return nil, &ReportConsistencyError{Total: len(retrieved), KindSum: sum}
	}

	return &domain.Report{
		Subject:        query.Subject,
		Intent:         query.IntentText,
		Total:          len(retrieved),
		KindCounts:     kindCounts,
		States:         states,
		SkippedRecords: skipped,
		Temporal:       temporal.Breakdown,
		Repositories:   repositories,
		Velocity:       velocity,
		Collaboration:  collaboration,
	}, nil
}

// stateBreakdown counts pull requests and issues per lifecycle state, the
// headline merged/open/closed split. Comments and repository creations carry
// no state and are ignored; a stateful activity with an empty state is too.
func stateBreakdown(retrieved []domain.Activity) domain.StateBreakdown {
	var breakdown domain.StateBreakdown
	for _, a := range retrieved {
		if a.State == "" {
			continue
		}
		switch a.Kind {
		case domain.KindPullRequest:
			if breakdown.PullRequests == nil {
				breakdown.PullRequests = make(map[domain.State]int)
			}
			breakdown.PullRequests[a.State]++
		case domain.KindIssue:
			if breakdown.Issues == nil {
				breakdown.Issues = make(map[domain.State]int)
			}
			breakdown.Issues[a.State]++
		}
	}
	return breakdown
}
