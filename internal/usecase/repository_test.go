package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlens-io/devlens/internal/domain"
)

func activityIn(repo string, kind domain.Kind, id int64) domain.Activity {
	return domain.Activity{
		Kind:       kind,
		RepoName:   repo,
		Author:     "octocat",
		Timestamp:  time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		ExternalID: id,
	}
}

func TestAggregateRepositories_ScoresAndOrdering(t *testing.T) {
	activities := []domain.Activity{
		// repo-a: 2 PRs = 6
		activityIn("octo/repo-a", domain.KindPullRequest, 1),
		activityIn("octo/repo-a", domain.KindPullRequest, 2),
		// repo-b: 1 PR + 1 issue + 2 comments = 7
		activityIn("octo/repo-b", domain.KindPullRequest, 3),
		activityIn("octo/repo-b", domain.KindIssue, 4),
		activityIn("octo/repo-b", domain.KindComment, 5),
		activityIn("octo/repo-b", domain.KindComment, 6),
		// repo-c: 1 repository created = 1
		activityIn("octo/repo-c", domain.KindRepositoryCreated, 7),
	}

	breakdowns := AggregateRepositories(activities)

	require.Len(t, breakdowns, 3)
	assert.Equal(t, "octo/repo-b", breakdowns[0].Name)
	assert.Equal(t, 7, breakdowns[0].EngagementScore)
	assert.Equal(t, "octo/repo-a", breakdowns[1].Name)
	assert.Equal(t, 6, breakdowns[1].EngagementScore)
	assert.Equal(t, "octo/repo-c", breakdowns[2].Name)
	assert.Equal(t, 1, breakdowns[2].EngagementScore)

	assert.Equal(t, map[domain.Kind]int{
		domain.KindPullRequest: 1,
		domain.KindIssue:       1,
		domain.KindComment:     2,
	}, breakdowns[0].KindCounts)
}

func TestAggregateRepositories_AlphabeticalTieBreakIsStable(t *testing.T) {
	// One PR (score 3) against three comments (score 3): same engagement,
	// so ordering must fall back to the repository name.
	base := []domain.Activity{
		activityIn("octo/zeta", domain.KindPullRequest, 1),
		activityIn("octo/alpha", domain.KindComment, 2),
		activityIn("octo/alpha", domain.KindComment, 3),
		activityIn("octo/alpha", domain.KindComment, 4),
	}
	permuted := []domain.Activity{base[3], base[0], base[2], base[1]}

	first := AggregateRepositories(base)
	second := AggregateRepositories(permuted)

	require.Len(t, first, 2)
	assert.Equal(t, "octo/alpha", first[0].Name)
	assert.Equal(t, "octo/zeta", first[1].Name)
	assert.Equal(t, first, second)
}

func TestAggregateRepositories_EmptyInput(t *testing.T) {
	assert.Empty(t, AggregateRepositories(nil))
}
