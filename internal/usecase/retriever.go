package usecase

import (
	"math"
	"sort"

	"github.com/devlens-io/devlens/internal/domain"
)

// Retrieve ranks the subject's activities against the query embedding and
// returns the ones whose normalized similarity clears the threshold, most
// similar first, capped at maxResults. It never pads: fewer matches than
// the cap means a shorter result.
//
// Similarity is cosine similarity mapped from [-1,1] into [0,1] via
// (cos+1)/2, so thresholds are always expressed on the normalized scale.
// Activities without a stored embedding cannot be scored and are excluded.
//
// Ordering is deterministic: score descending, then earlier timestamp,
// then external id. Re-running with identical inputs reproduces the exact
// sequence.
func Retrieve(activities []domain.Activity, queryEmbedding []float32, threshold float64, maxResults int) []domain.Activity {
	type scored struct {
		activity domain.Activity
		score    float64
	}

	matches := make([]scored, 0, len(activities))
	for _, a := range activities {
		if len(a.Embedding) == 0 {
			continue
		}
		score := normalizedCosine(a.Embedding, queryEmbedding)
		if score < threshold {
			continue
		}
		matches = append(matches, scored{activity: a, score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		if !matches[i].activity.Timestamp.Equal(matches[j].activity.Timestamp) {
			return matches[i].activity.Timestamp.Before(matches[j].activity.Timestamp)
		}
		return matches[i].activity.ExternalID < matches[j].activity.ExternalID
	})

	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}

	result := make([]domain.Activity, len(matches))
	for i, m := range matches {
		result[i] = m.activity
	}
	return result
}

// RetrieveRecent is the defined fallback when the query has no intent text:
// all of the subject's activities ordered by timestamp descending, capped at
// maxResults. No similarity filtering is applied.
func RetrieveRecent(activities []domain.Activity, maxResults int) []domain.Activity {
	result := make([]domain.Activity, len(activities))
	copy(result, activities)

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ExternalID < result[j].ExternalID
	})

	if maxResults > 0 && len(result) > maxResults {
		result = result[:maxResults]
	}
	return result
}

// normalizedCosine returns the cosine similarity of a and b mapped into
// [0,1]. Mismatched or degenerate vectors score 0.
func normalizedCosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Guard against floating point drift outside [-1,1].
	cos = math.Max(-1, math.Min(1, cos))
	return (cos + 1) / 2
}
