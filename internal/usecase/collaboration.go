package usecase

import "github.com/devlens-io/devlens/internal/domain"

// AnalyzeCollaboration isolates comment activities and splits them by the
// kind of entity each is structurally linked to. Only the declared linkage
// is consulted; the parent object is never resolved, so dangling references
// simply land in the unlinked bucket.
func AnalyzeCollaboration(activities []domain.Activity) domain.CollaborationIndicators {
	indicators := domain.CollaborationIndicators{CommentRefs: []domain.CommentRef{}}

	for _, a := range activities {
		if a.Kind != domain.KindComment {
			continue
		}

		switch {
		case a.ParentRef == nil:
			indicators.UnlinkedComments++
		case a.ParentRef.Kind == domain.ParentPullRequest:
			indicators.PRComments++
		default:
			indicators.IssueComments++
		}

		indicators.CommentRefs = append(indicators.CommentRefs, domain.CommentRef{
			RepoName:   a.RepoName,
			ExternalID: a.ExternalID,
		})
	}

	return indicators
}
