package usecase

import (
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/devlens-io/devlens/internal/domain"
)

const hoursPerDay = 24

// TemporalStats is the temporal aggregator's full output. It embeds the
// report-facing breakdown and keeps the recent partition plus span data
// around for the velocity calculator, which consumes it directly.
type TemporalStats struct {
	Breakdown domain.TemporalBreakdown
	// Recent holds the activities inside the recent window, newest horizon
	// anchored at the latest activity.
	Recent []domain.Activity
	// SpanDays is the full earliest..latest span.
	SpanDays float64
	// RecentSpanDays is the recent window's own span, not the overall one.
	RecentSpanDays float64
}

// AggregateTemporal buckets the retrieved activities in time: overall span,
// recent-window partition, and gaps between consecutive activities that
// exceed gapThreshold. An empty input yields a zero-value result, not an
// error.
func AggregateTemporal(activities []domain.Activity, recentWindowMonths int, gapThreshold time.Duration) TemporalStats {
	if len(activities) == 0 {
		return TemporalStats{Breakdown: domain.TemporalBreakdown{Gaps: []domain.ActivityGap{}}}
	}

	ordered := make([]domain.Activity, len(activities))
	copy(ordered, activities)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	earliest := ordered[0].Timestamp
	latest := ordered[len(ordered)-1].Timestamp
	recentStart := latest.AddDate(0, -recentWindowMonths, 0)

	result := TemporalStats{
		SpanDays:       latest.Sub(earliest).Hours() / hoursPerDay,
		RecentSpanDays: latest.Sub(recentStart).Hours() / hoursPerDay,
	}

	gaps := []domain.ActivityGap{}
	gapDays := []float64{}
	for i := 1; i < len(ordered); i++ {
		separation := ordered[i].Timestamp.Sub(ordered[i-1].Timestamp)
		if separation > gapThreshold {
			days := separation.Hours() / hoursPerDay
			gaps = append(gaps, domain.ActivityGap{
				Start: ordered[i-1].Ref(),
				End:   ordered[i].Ref(),
				Days:  days,
			})
			gapDays = append(gapDays, days)
		}
	}

	var recentCount int
	for _, a := range ordered {
		if !a.Timestamp.Before(recentStart) {
			result.Recent = append(result.Recent, a)
			recentCount++
		}
	}

	breakdown := domain.TemporalBreakdown{
		Earliest:          &earliest,
		Latest:            &latest,
		RecentWindowStart: &recentStart,
		RecentCount:       recentCount,
		HistoricalCount:   len(ordered) - recentCount,
		Gaps:              gaps,
	}
	if len(gapDays) > 0 {
		// stats errors only on empty input, which is excluded here.
		breakdown.MeanGapDays, _ = stats.Mean(gapDays)
		breakdown.LongestGapDays, _ = stats.Max(gapDays)
	}

	result.Breakdown = breakdown
	return result
}
