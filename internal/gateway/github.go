// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/devlens-io/devlens/internal/domain"
)

// Fetcher defines the behavior of a gateway for fetching a user's activity
// records from GitHub. Every method returns raw records; normalization into
// the canonical activity shape happens downstream.
type Fetcher interface {
	FetchPullRequests(ctx context.Context, user string) ([]domain.RawRecord, error)
	FetchIssues(ctx context.Context, user string) ([]domain.RawRecord, error)
	FetchComments(ctx context.Context, user string) ([]domain.RawRecord, error)
	FetchCreatedRepositories(ctx context.Context, user string) ([]domain.RawRecord, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	logger        *log.Logger
}

// prNode carries the pull request fields selected by the search query.
type prNode struct {
	Repository struct {
		NameWithOwner string
	}
	Number    int64
	Title     string
	URL       string
	State     string
	Merged    bool
	CreatedAt githubv4.DateTime
	Author    struct {
		Login string
	}
	BodyText string
}

// issueNode carries the issue fields selected by the search query.
type issueNode struct {
	Repository struct {
		NameWithOwner string
	}
	Number    int64
	Title     string
	URL       string
	State     string
	CreatedAt githubv4.DateTime
	Author    struct {
		Login string
	}
	BodyText string
}

// searchNode is one result node. The search API mixes node types; each
// fetch reads only the fragment matching its query.
type searchNode struct {
	Typename    string    `graphql:"__typename"`
	PullRequest prNode    `graphql:"... on PullRequest"`
	Issue       issueNode `graphql:"... on Issue"`
}

// searchQuery is the GraphQL search shape shared by the PR and issue fetches.
type searchQuery struct {
	Search struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Edges []struct {
			Node searchNode
		}
	} `graphql:"search(query: $query, type: ISSUE, first: 100, after: $cursor)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token string, logger *log.Logger) (Fetcher, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		logger:        logger,
	}, nil
}

// FetchPullRequests fetches all pull requests authored by the user.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, user string) ([]domain.RawRecord, error) {
	g.logger.Println("[1/4] Fetching authored pull requests...")
	query := fmt.Sprintf("author:%s is:pr", user)

	records, err := g.searchRecords(ctx, query, "PullRequest", func(node searchNode) domain.RawRecord {
		pr := node.PullRequest
		return domain.RawRecord{
			RecordType: string(domain.KindPullRequest),
			RepoName:   pr.Repository.NameWithOwner,
			Author:     pr.Author.Login,
			CreatedAt:  pr.CreatedAt.Time,
			URL:        pr.URL,
			Title:      pr.Title,
			State:      strings.ToLower(pr.State),
			Merged:     pr.Merged,
			Number:     pr.Number,
			Body:       pr.BodyText,
		}
	})
	if err != nil {
		return nil, err
	}
	g.logger.Printf("Completed fetching %d pull requests.\n", len(records))
	return records, nil
}

// FetchIssues fetches all issues authored by the user. The is:issue
// qualifier already excludes pull requests from the result.
func (g *GitHubGateway) FetchIssues(ctx context.Context, user string) ([]domain.RawRecord, error) {
	g.logger.Println("[2/4] Fetching authored issues...")
	query := fmt.Sprintf("author:%s is:issue", user)

	records, err := g.searchRecords(ctx, query, "Issue", func(node searchNode) domain.RawRecord {
		issue := node.Issue
		return domain.RawRecord{
			RecordType: string(domain.KindIssue),
			RepoName:   issue.Repository.NameWithOwner,
			Author:     issue.Author.Login,
			CreatedAt:  issue.CreatedAt.Time,
			URL:        issue.URL,
			Title:      issue.Title,
			State:      strings.ToLower(issue.State),
			Number:     issue.Number,
			Body:       issue.BodyText,
		}
	})
	if err != nil {
		return nil, err
	}
	g.logger.Printf("Completed fetching %d issues.\n", len(records))
	return records, nil
}

func (g *GitHubGateway) searchRecords(ctx context.Context, query, wantType string, mapNode func(searchNode) domain.RawRecord) ([]domain.RawRecord, error) {
	variables := map[string]interface{}{"query": githubv4.String(query), "cursor": (*githubv4.String)(nil)}
	var records []domain.RawRecord
	for {
		var q searchQuery
		if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
			return nil, fmt.Errorf("failed to execute GraphQL search query: %w", err)
		}
		for _, edge := range q.Search.Edges {
			if edge.Node.Typename != wantType {
				continue
			}
			records = append(records, mapNode(edge.Node))
		}
		if !q.Search.PageInfo.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(q.Search.PageInfo.EndCursor)
		g.logger.Println("  Fetching next page of search results...")
	}
	return records, nil
}

// FetchComments fetches the user's issue comments and pull request review
// comments across the repositories the user owns, using the REST API.
func (g *GitHubGateway) FetchComments(ctx context.Context, user string) ([]domain.RawRecord, error) {
	g.logger.Println("[3/4] Fetching comments using REST API...")

	repos, err := g.listUserRepositories(ctx, user)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for _, fullName := range repos {
		owner, name, ok := splitRepoName(fullName)
		if !ok {
			continue
		}

		issueComments, err := g.fetchIssueComments(ctx, owner, name, user)
		if err != nil {
			return nil, err
		}
		records = append(records, issueComments...)

		reviewComments, err := g.fetchReviewComments(ctx, owner, name, user)
		if err != nil {
			return nil, err
		}
		records = append(records, reviewComments...)
	}

	g.logger.Printf("Completed fetching %d comments.\n", len(records))
	return records, nil
}

// fetchIssueComments lists every issue comment in a repository (issue number
// 0 means repo-wide) and keeps the ones authored by the user.
func (g *GitHubGateway) fetchIssueComments(ctx context.Context, owner, repo, user string) ([]domain.RawRecord, error) {
	opts := &github.IssueListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var records []domain.RawRecord
	for {
		comments, resp, err := g.restClient.Issues.ListComments(ctx, owner, repo, 0, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issue comments for %s/%s: %w", owner, repo, err)
		}
		for _, comment := range comments {
			if comment.GetUser().GetLogin() != user {
				continue
			}
			records = append(records, domain.RawRecord{
				RecordType: string(domain.KindComment),
				RepoName:   owner + "/" + repo,
				Author:     comment.GetUser().GetLogin(),
				CreatedAt:  comment.GetCreatedAt().Time,
				URL:        comment.GetHTMLURL(),
				CommentID:  comment.GetID(),
				IssueURL:   comment.GetIssueURL(),
				Body:       comment.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return records, nil
}

// fetchReviewComments does the same for pull request review comments.
func (g *GitHubGateway) fetchReviewComments(ctx context.Context, owner, repo, user string) ([]domain.RawRecord, error) {
	opts := &github.PullRequestListCommentsOptions{ListOptions: github.ListOptions{PerPage: 100}}
	var records []domain.RawRecord
	for {
		comments, resp, err := g.restClient.PullRequests.ListComments(ctx, owner, repo, 0, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list review comments for %s/%s: %w", owner, repo, err)
		}
		for _, comment := range comments {
			if comment.GetUser().GetLogin() != user {
				continue
			}
			records = append(records, domain.RawRecord{
				RecordType:     string(domain.KindComment),
				RepoName:       owner + "/" + repo,
				Author:         comment.GetUser().GetLogin(),
				CreatedAt:      comment.GetCreatedAt().Time,
				URL:            comment.GetHTMLURL(),
				CommentID:      comment.GetID(),
				PullRequestURL: comment.GetPullRequestURL(),
				Body:           comment.GetBody(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return records, nil
}

// FetchCreatedRepositories fetches the user's non-fork repositories as
// repository-creation events. These records carry no author or title.
func (g *GitHubGateway) FetchCreatedRepositories(ctx context.Context, user string) ([]domain.RawRecord, error) {
	g.logger.Println("[4/4] Fetching created repositories using REST API...")
	opts := &github.RepositoryListByUserOptions{Type: "owner", ListOptions: github.ListOptions{PerPage: 100}}
	var records []domain.RawRecord
	for {
		repos, resp, err := g.restClient.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for %s: %w", user, err)
		}
		for _, repo := range repos {
			if repo.GetFork() {
				continue
			}
			records = append(records, domain.RawRecord{
				RecordType: string(domain.KindRepositoryCreated),
				RepoName:   repo.GetFullName(),
				CreatedAt:  repo.GetCreatedAt().Time,
				URL:        repo.GetHTMLURL(),
				Number:     repo.GetID(),
				Body:       repo.GetDescription(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		g.logger.Println("  Fetching next page of repositories...")
	}
	g.logger.Printf("Completed fetching %d repositories.\n", len(records))
	return records, nil
}

// listUserRepositories returns the full names of the user's own repositories.
func (g *GitHubGateway) listUserRepositories(ctx context.Context, user string) ([]string, error) {
	opts := &github.RepositoryListByUserOptions{Type: "owner", ListOptions: github.ListOptions{PerPage: 100}}
	var names []string
	for {
		repos, resp, err := g.restClient.Repositories.ListByUser(ctx, user, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories for %s: %w", user, err)
		}
		for _, repo := range repos {
			if repo.GetFork() {
				continue
			}
			names = append(names, repo.GetFullName())
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return names, nil
}

func splitRepoName(fullName string) (owner, name string, ok bool) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
