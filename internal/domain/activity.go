// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Kind identifies the type of a normalized activity.
type Kind string

const (
	KindPullRequest       Kind = "pull_request"
	KindIssue             Kind = "issue"
	KindComment           Kind = "comment"
	KindRepositoryCreated Kind = "repository_created"
)

// State is the lifecycle state of a pull request or issue.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// ParentKind identifies what a comment is attached to.
type ParentKind string

const (
	ParentIssue       ParentKind = "issue"
	ParentPullRequest ParentKind = "pull_request"
)

// ParentRef is an informational back-reference from a comment to the issue
// or pull request it belongs to. It never owns the parent; a dangling
// reference is tolerated.
type ParentRef struct {
	Kind   ParentKind `json:"kind"`
	Number int64      `json:"number"`
}

// Activity is the canonical, normalized unit of developer action.
// Activities are immutable value objects after normalization: aggregators
// read them and produce new derived structures, never mutate in place.
type Activity struct {
	Kind       Kind       `json:"kind"`
	RepoName   string     `json:"repo_name"`
	Author     string     `json:"author,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
	URL        string     `json:"url,omitempty"`
	ExternalID int64      `json:"external_id"`
	Title      string     `json:"title,omitempty"`
	State      State      `json:"state,omitempty"`
	ParentRef  *ParentRef `json:"parent_ref,omitempty"`

	// Embedding is produced upstream and immutable once assigned. It is
	// never serialized into reports.
	Embedding []float32 `json:"-"`
}

// Ref returns the lightweight reference used to annotate gaps and
// collaboration traces without carrying the full activity.
func (a Activity) Ref() ActivityRef {
	return ActivityRef{
		RepoName:   a.RepoName,
		Kind:       a.Kind,
		ExternalID: a.ExternalID,
		Timestamp:  a.Timestamp,
	}
}

// ActivityRef points back at an activity by its natural key.
type ActivityRef struct {
	RepoName   string    `json:"repo_name"`
	Kind       Kind      `json:"kind"`
	ExternalID int64     `json:"external_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// RawRecord is one unprocessed record as fetched from the activity store.
// The field set is the union of all record shapes; which fields are
// meaningful depends on RecordType. Normalization turns a RawRecord into
// an Activity or rejects it.
type RawRecord struct {
	RecordType     string    `json:"record_type"`
	RepoName       string    `json:"repo_name"`
	Author         string    `json:"author"`
	CreatedAt      time.Time `json:"created_at"`
	URL            string    `json:"url"`
	Title          string    `json:"title"`
	State          string    `json:"state"`
	Merged         bool      `json:"merged"`
	Number         int64     `json:"number"`
	CommentID      int64     `json:"comment_id"`
	IssueURL       string    `json:"issue_url"`
	PullRequestURL string    `json:"pull_request_url"`
	Body           string    `json:"body"`
	Embedding      []float32 `json:"-"`
}
