package usecase

import (
	"sort"

	"github.com/devlens-io/devlens/internal/domain"
)

// Engagement weights. Fixed by design: code contribution ranks above
// commentary.
const (
	weightPullRequest       = 3
	weightIssue             = 2
	weightComment           = 1
	weightRepositoryCreated = 1
)

// AggregateRepositories groups the retrieved activities by repository and
// scores each group's engagement. Repositories are ordered by engagement
// score descending, ties broken by name ascending, so permuting the input
// never changes the output order.
func AggregateRepositories(activities []domain.Activity) []domain.RepoBreakdown {
	byRepo := make(map[string]map[domain.Kind]int)
	for _, a := range activities {
		counts, ok := byRepo[a.RepoName]
		if !ok {
			counts = make(map[domain.Kind]int)
			byRepo[a.RepoName] = counts
		}
		counts[a.Kind]++
	}

	breakdowns := make([]domain.RepoBreakdown, 0, len(byRepo))
	for name, counts := range byRepo {
		breakdowns = append(breakdowns, domain.RepoBreakdown{
			Name:            name,
			KindCounts:      counts,
			EngagementScore: engagementScore(counts),
		})
	}

	sort.Slice(breakdowns, func(i, j int) bool {
		if breakdowns[i].EngagementScore != breakdowns[j].EngagementScore {
			return breakdowns[i].EngagementScore > breakdowns[j].EngagementScore
		}
		return breakdowns[i].Name < breakdowns[j].Name
	})

	return breakdowns
}

func engagementScore(counts map[domain.Kind]int) int {
	return counts[domain.KindPullRequest]*weightPullRequest +
		counts[domain.KindIssue]*weightIssue +
		counts[domain.KindComment]*weightComment +
		counts[domain.KindRepositoryCreated]*weightRepositoryCreated
}
