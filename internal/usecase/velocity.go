package usecase

import "github.com/devlens-io/devlens/internal/domain"

const daysPerYear = 365.25

// CalculateVelocity derives per-year rates from the temporal aggregation.
//
// The overall rate divides the retrieved count by the full span in years,
// floored at 1 so a single-day burst does not blow up the division. The
// recent rate uses the recent window's own span as denominator, not the
// overall one, so a short recent window is not diluted by full history.
// Commit velocity is always reported unavailable: the activity model
// carries no commit data, and an explicit "unavailable" beats a silently
// misleading zero.
func CalculateVelocity(temporal TemporalStats, activities []domain.Activity) domain.VelocityMetrics {
	if len(activities) == 0 {
		return domain.VelocityMetrics{}
	}

	overallYears := flooredYears(temporal.SpanDays)
	recentYears := flooredYears(temporal.RecentSpanDays)

	var prCount int
	for _, a := range activities {
		if a.Kind == domain.KindPullRequest {
			prCount++
		}
	}

	return domain.VelocityMetrics{
		Overall: domain.Rate{
			PerYear:   float64(len(activities)) / overallYears,
			Available: true,
		},
		Recent: domain.Rate{
			PerYear:   float64(len(temporal.Recent)) / recentYears,
			Available: true,
		},
		PullRequests: domain.Rate{
			PerYear:   float64(prCount) / overallYears,
			Available: true,
		},
		Commits: domain.Rate{},
	}
}

// flooredYears converts a day span to years, floored at 1.
func flooredYears(days float64) float64 {
	years := days / daysPerYear
	if years < 1 {
		return 1
	}
	return years
}
