// Package analytics derives day-level frequency series for a topic and runs
// trend, lifecycle, virality and short-term prediction analyses over them.
package analytics

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/dates"
	"github.com/baseradar/baseradar/internal/domain"
)

const (
	DefaultThreshold           = 3.0
	DefaultTimeWindowHours     = 24
	DefaultLookaheadHours      = 6
	DefaultConfidenceThreshold = 0.7
	DefaultRangeDays           = 7
)

// Request carries the parameters of one analysis. Numeric fields are used as
// given; callers apply the Default constants for omitted values.
type Request struct {
	Topic               string
	Type                domain.AnalysisType
	Range               domain.DateRange
	Granularity         string
	Threshold           float64
	TimeWindowHours     int
	LookaheadHours      int
	ConfidenceThreshold float64
}

// DefaultRange is the range used when the caller passes none.
func DefaultRange(t domain.AnalysisType, timeWindowHours int, now time.Time) domain.DateRange {
	if t == domain.AnalysisViral {
		w := windowDays(timeWindowHours)
		return dates.Trailing(max(DefaultRangeDays, w+1), now)
	}
	return dates.Trailing(DefaultRangeDays, now)
}

// Analyze runs req over items, which must already be restricted to req.Range.
func Analyze(items []domain.NewsItem, req Request, now time.Time, loc *time.Location) (domain.AnalysisResult, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return domain.AnalysisResult{}, domain.InvalidParameter("topic must not be empty", "pass a keyword such as \"base\"")
	}
	if req.Type == "" {
		req.Type = domain.AnalysisTrend
	}

	res := domain.AnalysisResult{
		Type:  req.Type,
		Topic: topic,
		Start: req.Range.Start.Format(domain.DayLayout),
		End:   req.Range.End.Format(domain.DayLayout),
	}

	switch strings.ToLower(req.Granularity) {
	case "", "day":
	case "hour":
		res.Notes = append(res.Notes, "granularity hour coerced to day: history is stored per day")
	default:
		return domain.AnalysisResult{}, domain.InvalidParameter(
			fmt.Sprintf("unsupported granularity %q", req.Granularity), "use day")
	}

	res.Series = BuildSeries(items, topic, req.Range, loc)

	switch req.Type {
	case domain.AnalysisTrend:
		stats := Trend(res.Series)
		res.Trend = &stats
	case domain.AnalysisLifecycle:
		lc := BuildLifecycle(res.Series)
		res.Lifecycle = &lc
	case domain.AnalysisViral:
		report, err := Viral(res.Series, req.Threshold, req.TimeWindowHours)
		if err != nil {
			return domain.AnalysisResult{}, err
		}
		res.Viral = &report
	case domain.AnalysisPredict:
		pred, err := Predict(items, topic, req.Range, req.LookaheadHours, req.ConfidenceThreshold, now, loc)
		if err != nil {
			return domain.AnalysisResult{}, err
		}
		res.Prediction = &pred
	default:
		return domain.AnalysisResult{}, domain.InvalidParameter(
			fmt.Sprintf("unknown analysis_type %q", req.Type), "use trend, lifecycle, viral or predict")
	}
	return res, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
