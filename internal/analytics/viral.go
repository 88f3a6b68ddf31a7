package analytics

import (
	"fmt"

	"github.com/baseradar/baseradar/internal/domain"
)

// windowDays converts an hour window to whole days, at least one.
func windowDays(hours int) int {
	if hours <= 0 {
		return 1
	}
	return max(1, (hours+23)/24)
}

// Viral flags days whose count reaches threshold times the mean of the
// preceding window. A zero baseline turns any non-zero count into a surge.
// The first day has no baseline and is never flagged.
func Viral(series []domain.FrequencyPoint, threshold float64, timeWindowHours int) (domain.ViralReport, error) {
	if threshold <= 0 {
		return domain.ViralReport{}, domain.InvalidParameter(
			fmt.Sprintf("threshold must be positive, got %.2f", threshold), "use a multiplier such as 3.0")
	}
	if timeWindowHours <= 0 {
		return domain.ViralReport{}, domain.InvalidParameter(
			fmt.Sprintf("time_window must be positive, got %d", timeWindowHours), "pass a window in hours such as 24")
	}

	w := windowDays(timeWindowHours)
	report := domain.ViralReport{WindowDays: w, Threshold: threshold, Surges: []domain.Surge{}}
	for i := 1; i < len(series); i++ {
		count := series[i].Count
		if count == 0 {
			continue
		}
		baseline := mean(series[max(0, i-w):i])

		switch {
		case baseline == 0:
			report.Surges = append(report.Surges, domain.Surge{
				Date: series[i].Date, Count: count, NewOnset: true,
			})
		case float64(count) >= threshold*baseline:
			report.Surges = append(report.Surges, domain.Surge{
				Date: series[i].Date, Count: count,
				Baseline: round2(baseline), Ratio: round2(float64(count) / baseline),
			})
		}
	}

	if n := len(report.Surges); n > 0 && len(series) > 0 {
		report.CurrentlyViral = report.Surges[n-1].Date == series[len(series)-1].Date
	}
	return report, nil
}
