package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/textsim"
)

const (
	predictTail        = 4
	predictMinPoints   = 3
	maxRelatedKeywords = 5
)

// Predict extrapolates the recent slope of topic and of up to five keywords
// that co-occur with it on the latest day. A window is emitted only for
// series whose growth confidence reaches confidenceThreshold.
func Predict(items []domain.NewsItem, topic string, r domain.DateRange, lookaheadHours int, confidenceThreshold float64, now time.Time, loc *time.Location) (domain.Prediction, error) {
	if lookaheadHours <= 0 {
		return domain.Prediction{}, domain.InvalidParameter(
			fmt.Sprintf("lookahead_hours must be positive, got %d", lookaheadHours), "pass a number of hours such as 6")
	}
	if confidenceThreshold < 0 || confidenceThreshold > 1 {
		return domain.Prediction{}, domain.InvalidParameterf("confidence_threshold %.2f is outside [0, 1]", confidenceThreshold)
	}

	pred := domain.Prediction{
		LookaheadHours:      lookaheadHours,
		ConfidenceThreshold: confidenceThreshold,
		Windows:             []domain.HotWindow{},
	}
	from := now
	to := now.Add(time.Duration(lookaheadHours) * time.Hour)

	candidates := append([]string{topic}, relatedKeywords(items, topic, r, loc)...)
	for _, kw := range candidates {
		series := BuildSeries(items, kw, r, loc)
		slope, confidence := growthConfidence(series)
		if confidence == 0 || confidence < confidenceThreshold {
			continue
		}
		last := float64(series[len(series)-1].Count)
		pred.Windows = append(pred.Windows, domain.HotWindow{
			Topic:         kw,
			From:          from,
			To:            to,
			ExpectedCount: round2(last + slope*float64(lookaheadHours)/24),
			Confidence:    round2(confidence),
			Slope:         round2(slope),
		})
	}
	return pred, nil
}

// growthConfidence fits a least-squares line through the tail of the series
// and scores how consistently it rose.
func growthConfidence(series []domain.FrequencyPoint) (slope, confidence float64) {
	tail := series
	if len(tail) > predictTail {
		tail = tail[len(tail)-predictTail:]
	}
	if len(tail) < predictMinPoints {
		return 0, 0
	}

	n := float64(len(tail))
	var sumX, sumY, sumXY, sumXX float64
	for i, p := range tail {
		x, y := float64(i), float64(p.Count)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope = (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)

	if slope <= 0 || tail[len(tail)-1].Count == 0 {
		return slope, 0
	}
	rises := 0
	for i := 1; i < len(tail); i++ {
		if tail[i].Count > tail[i-1].Count {
			rises++
		}
	}
	return slope, float64(rises) / float64(len(tail)-1)
}

// relatedKeywords lists the significant tokens most often seen next to topic
// on the last day of r.
func relatedKeywords(items []domain.NewsItem, topic string, r domain.DateRange, loc *time.Location) []string {
	lastDay := r.End.Format(domain.DayLayout)
	skip := map[string]bool{}
	for _, tok := range textsim.Tokens(topic) {
		skip[tok] = true
	}

	counts := map[string]int{}
	for _, item := range textsim.Dedup(items) {
		if item.Day(loc) != lastDay || !matches(item, topic) {
			continue
		}
		for _, tok := range textsim.SignificantTokens(item.Title) {
			if !skip[tok] && !strings.Contains(strings.ToLower(topic), tok) {
				counts[tok]++
			}
		}
	}

	keywords := make([]string, 0, len(counts))
	for tok := range counts {
		keywords = append(keywords, tok)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if counts[keywords[i]] != counts[keywords[j]] {
			return counts[keywords[i]] > counts[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if len(keywords) > maxRelatedKeywords {
		keywords = keywords[:maxRelatedKeywords]
	}
	return keywords
}
