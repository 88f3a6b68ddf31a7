package analytics

import (
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/textsim"
)

// Directions reported by Trend.
const (
	DirectionRising  = "rising"
	DirectionFalling = "falling"
	DirectionStable  = "stable"
)

// BuildSeries counts, per day of r, the items whose title or summary mentions
// topic. Days without matches appear with a zero count.
func BuildSeries(items []domain.NewsItem, topic string, r domain.DateRange, loc *time.Location) []domain.FrequencyPoint {
	counts := map[string]int{}
	for _, item := range items {
		if matches(item, topic) {
			counts[item.Day(loc)]++
		}
	}

	days := r.Days()
	series := make([]domain.FrequencyPoint, 0, len(days))
	for _, d := range days {
		day := d.Format(domain.DayLayout)
		series = append(series, domain.FrequencyPoint{Date: day, Count: counts[day]})
	}
	return series
}

func matches(item domain.NewsItem, topic string) bool {
	return textsim.ContainsFold(item.Title, topic) || textsim.ContainsFold(item.Summary, topic)
}

// Trend summarizes a series. The change rate compares the last point with the
// first non-zero one; the direction compares the means of both halves.
func Trend(series []domain.FrequencyPoint) domain.TrendStats {
	var stats domain.TrendStats
	if len(series) == 0 {
		stats.Direction = DirectionStable
		return stats
	}

	first := -1
	for i, p := range series {
		stats.Total += p.Count
		if p.Count > stats.Peak.Count || i == 0 {
			stats.Peak = p
		}
		if first < 0 && p.Count > 0 {
			first = p.Count
		}
	}
	stats.Average = round2(float64(stats.Total) / float64(len(series)))
	if first > 0 {
		last := series[len(series)-1].Count
		stats.ChangeRate = round2(float64(last-first) / float64(first))
	}
	stats.Direction = direction(series)
	return stats
}

func direction(series []domain.FrequencyPoint) string {
	n := len(series)
	if n < 2 {
		return DirectionStable
	}
	half := n / 2
	older := mean(series[:half])
	newer := mean(series[n-half:])
	switch {
	case newer > older*1.1 && newer > 0:
		return DirectionRising
	case newer < older*0.9:
		return DirectionFalling
	default:
		return DirectionStable
	}
}

func mean(points []domain.FrequencyPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	sum := 0
	for _, p := range points {
		sum += p.Count
	}
	return float64(sum) / float64(len(points))
}
