// Package usecase contains the business logic of the application: the
// retrieval-and-aggregation engine that turns stored activity records into
// a structured velocity and collaboration report.
package usecase

import (
	"errors"
	"strconv"
	"strings"

	"github.com/devlens-io/devlens/internal/domain"
)

// NormalizeRecord maps one raw record into the canonical Activity shape, or
// fails with *MalformedRecordError / *UnsupportedRecordKindError. It is a
// pure transformation: no network, no storage.
func NormalizeRecord(rec domain.RawRecord) (domain.Activity, error) {
	switch rec.RecordType {
	case string(domain.KindPullRequest):
		if err := requireAuthored(rec); err != nil {
			return domain.Activity{}, err
		}
		if rec.Number == 0 {
			return domain.Activity{}, &MalformedRecordError{RecordType: rec.RecordType, Missing: "number"}
		}
		if rec.Title == "" {
			return domain.Activity{}, &MalformedRecordError{RecordType: rec.RecordType, Missing: "title"}
		}
		state := domain.State(rec.State)
		if rec.Merged {
			// A merged PR reports state "closed" on the wire; the merged
			// flag wins, matching how the collector stores it.
			state = domain.StateMerged
		}
		return domain.Activity{
			Kind:       domain.KindPullRequest,
			RepoName:   rec.RepoName,
			Author:     rec.Author,
			Timestamp:  rec.CreatedAt.UTC(),
			URL:        rec.URL,
			ExternalID: rec.Number,
			Title:      rec.Title,
			State:      state,
			Embedding:  rec.Embedding,
		}, nil

	case string(domain.KindIssue):
		if err := requireAuthored(rec); err != nil {
			return domain.Activity{}, err
		}
		if rec.Number == 0 {
			return domain.Activity{}, &MalformedRecordError{RecordType: rec.RecordType, Missing: "number"}
		}
		if rec.Title == "" {
			return domain.Activity{}, &MalformedRecordError{RecordType: rec.RecordType, Missing: "title"}
		}
		return domain.Activity{
			Kind:       domain.KindIssue,
			RepoName:   rec.RepoName,
			Author:     rec.Author,
			Timestamp:  rec.CreatedAt.UTC(),
			URL:        rec.URL,
			ExternalID: rec.Number,
			Title:      rec.Title,
			State:      domain.State(rec.State),
			Embedding:  rec.Embedding,
		}, nil

	case string(domain.KindComment):
		if err := requireAuthored(rec); err != nil {
			return domain.Activity{}, err
		}
		if rec.CommentID == 0 {
			return domain.Activity{}, &MalformedRecordError{RecordType: rec.RecordType, Missing: "id"}
		}
		return domain.Activity{
			Kind:       domain.KindComment,
			RepoName:   rec.RepoName,
			Author:     rec.Author,
			Timestamp:  rec.CreatedAt.UTC(),
			URL:        rec.URL,
			ExternalID: rec.CommentID,
			ParentRef:  commentParentRef(rec),
			Embedding:  rec.Embedding,
		}, nil

	case string(domain.KindRepositoryCreated):
		// Repository creation events carry no author or title by design.
		if rec.RepoName == "" {
			return domain.Activity{}, &MalformedRecordError{RecordType: rec.RecordType, Missing: "repo_name"}
		}
		if rec.CreatedAt.IsZero() {
			return domain.Activity{}, &MalformedRecordError{RecordType: rec.RecordType, Missing: "timestamp"}
		}
		return domain.Activity{
			Kind:       domain.KindRepositoryCreated,
			RepoName:   rec.RepoName,
			Author:     rec.Author,
			Timestamp:  rec.CreatedAt.UTC(),
			URL:        rec.URL,
			ExternalID: rec.Number,
			Embedding:  rec.Embedding,
		}, nil

	default:
		return domain.Activity{}, &UnsupportedRecordKindError{RecordType: rec.RecordType}
	}
}

// NormalizeAll applies NormalizeRecord to a batch with the skip-and-count
// policy: rejected records are dropped, and the counts are surfaced so the
// report consumer can see how much data was lost.
func NormalizeAll(records []domain.RawRecord) ([]domain.Activity, domain.SkippedRecords) {
	activities := make([]domain.Activity, 0, len(records))
	var skipped domain.SkippedRecords

	for _, rec := range records {
		activity, err := NormalizeRecord(rec)
		if err != nil {
			var unsupported *UnsupportedRecordKindError
			if errors.As(err, &unsupported) {
				skipped.UnsupportedKind++
			} else {
				skipped.Malformed++
			}
			continue
		}
		activities = append(activities, activity)
	}

	return activities, skipped
}

func requireAuthored(rec domain.RawRecord) error {
	if rec.CreatedAt.IsZero() {
		return &MalformedRecordError{RecordType: rec.RecordType, Missing: "timestamp"}
	}
	if rec.Author == "" {
		return &MalformedRecordError{RecordType: rec.RecordType, Missing: "author"}
	}
	return nil
}

// commentParentRef derives the informational back-reference of a comment
// from whichever parent-link field is present. The issue link wins over the
// pull-request link if both are somehow set (first-seen precedence). A
// comment without a usable link yields nil: dangling linkage is tolerated,
// not fatal.
func commentParentRef(rec domain.RawRecord) *domain.ParentRef {
	if n, ok := trailingNumber(rec.IssueURL); ok {
		return &domain.ParentRef{Kind: domain.ParentIssue, Number: n}
	}
	if n, ok := trailingNumber(rec.PullRequestURL); ok {
		return &domain.ParentRef{Kind: domain.ParentPullRequest, Number: n}
	}
	return nil
}

// trailingNumber parses the numeric last path segment of an API URL such as
// https://api.github.com/repos/o/r/issues/42.
func trailingNumber(url string) (int64, bool) {
	if url == "" {
		return 0, false
	}
	idx := strings.LastIndex(url, "/")
	if idx < 0 || idx == len(url)-1 {
		return 0, false
	}
	n, err := strconv.ParseInt(url[idx+1:], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
