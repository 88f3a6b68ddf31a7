package tools

import (
	"context"
	"encoding/json"

	"github.com/baseradar/baseradar/internal/analytics"
	"github.com/baseradar/baseradar/internal/dates"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/insights"
	"github.com/baseradar/baseradar/internal/report"
)

type topicTrendArgs struct {
	Topic               string        `json:"topic"`
	AnalysisType        string        `json:"analysis_type"`
	DateRange           *DateRangeArg `json:"date_range"`
	Granularity         string        `json:"granularity"`
	Threshold           *float64      `json:"threshold"`
	TimeWindow          *int          `json:"time_window"`
	LookaheadHours      *int          `json:"lookahead_hours"`
	ConfidenceThreshold *float64      `json:"confidence_threshold"`
}

func (t *Toolset) analyzeTopicTrend(ctx context.Context, raw json.RawMessage) (any, error) {
	var args topicTrendArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	typ := domain.AnalysisType(args.AnalysisType)
	if typ == "" {
		typ = domain.AnalysisTrend
	}
	window := intOr(args.TimeWindow, analytics.DefaultTimeWindowHours)

	now := t.clock()
	r, err := t.resolveRange(args.DateRange, analytics.DefaultRange(typ, window, now))
	if err != nil {
		return nil, err
	}
	req := analytics.Request{
		Topic:               args.Topic,
		Type:                typ,
		Range:               r,
		Granularity:         args.Granularity,
		Threshold:           floatOr(args.Threshold, analytics.DefaultThreshold),
		TimeWindowHours:     window,
		LookaheadHours:      intOr(args.LookaheadHours, analytics.DefaultLookaheadHours),
		ConfidenceThreshold: floatOr(args.ConfidenceThreshold, analytics.DefaultConfidenceThreshold),
	}
	// Parameter errors come back before touching storage.
	if _, err := analytics.Analyze(nil, req, now, t.loc()); err != nil {
		return nil, err
	}

	items, err := t.queryRange(ctx, r)
	if err != nil {
		return nil, err
	}
	return analytics.Analyze(items, req, now, t.loc())
}

type dataInsightsArgs struct {
	InsightType  string        `json:"insight_type"`
	Topic        string        `json:"topic"`
	DateRange    *DateRangeArg `json:"date_range"`
	MinFrequency *int          `json:"min_frequency"`
	TopN         *int          `json:"top_n"`
}

func (t *Toolset) analyzeDataInsights(ctx context.Context, raw json.RawMessage) (any, error) {
	var args dataInsightsArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	r, err := t.resolveRange(args.DateRange, dates.Trailing(1, t.clock()))
	if err != nil {
		return nil, err
	}
	req := insights.Request{
		Kind:         insights.Kind(args.InsightType),
		Topic:        args.Topic,
		Range:        r,
		MinFrequency: intOr(args.MinFrequency, insights.DefaultMinFrequency),
		TopN:         intOr(args.TopN, insights.DefaultTopN),
	}
	if _, err := insights.Aggregate(nil, req, t.loc()); err != nil {
		return nil, err
	}

	items, err := t.queryRange(ctx, r)
	if err != nil {
		return nil, err
	}
	return insights.Aggregate(items, req, t.loc())
}

type sentimentArgs struct {
	Topic        string        `json:"topic"`
	Platforms    []string      `json:"platforms"`
	DateRange    *DateRangeArg `json:"date_range"`
	Limit        *int          `json:"limit"`
	SortByWeight *bool         `json:"sort_by_weight"`
	IncludeURL   bool          `json:"include_url"`
}

type sentimentResult struct {
	Topic string       `json:"topic,omitempty"`
	Range DateRangeArg `json:"dateRange"`
	insights.SentimentReport
}

func (t *Toolset) analyzeSentiment(ctx context.Context, raw json.RawMessage) (any, error) {
	var args sentimentArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	limit, err := limitOf(args.Limit, maxDetailLimit)
	if err != nil {
		return nil, err
	}
	set, err := t.platformFilter(args.Platforms)
	if err != nil {
		return nil, err
	}
	now := t.clock()
	r, err := t.resolveRange(args.DateRange, dates.Trailing(1, now))
	if err != nil {
		return nil, err
	}

	items, err := t.queryRange(ctx, r)
	if err != nil {
		return nil, err
	}
	rep := insights.AnalyzeSentiment(filterPlatforms(items, set), insights.SentimentOptions{
		Topic:        args.Topic,
		Weights:      t.weights(),
		SortByWeight: boolOr(args.SortByWeight, true),
		Limit:        limit,
		Now:          now,
	})
	if !args.IncludeURL {
		for i := range rep.Items {
			rep.Items[i].NewsItem = rep.Items[i].NewsItem.WithoutLinks()
		}
	}
	return sentimentResult{Topic: args.Topic, Range: rangeView(r), SentimentReport: rep}, nil
}

type summaryArgs struct {
	ReportType string        `json:"report_type"`
	DateRange  *DateRangeArg `json:"date_range"`
}

func (t *Toolset) generateSummaryReport(ctx context.Context, raw json.RawMessage) (any, error) {
	var args summaryArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	typ := report.Type(args.ReportType)
	if typ == "" {
		typ = report.Daily
	}
	if _, err := report.DefaultRange(typ, t.clock()); err != nil {
		return nil, err
	}
	var rng *domain.DateRange
	if args.DateRange != nil {
		r, err := t.resolveRange(args.DateRange, domain.DateRange{})
		if err != nil {
			return nil, err
		}
		rng = &r
	}
	if t.pipeline == nil {
		return nil, errPipelineMissing
	}
	return t.pipeline.Report(ctx, typ, rng)
}
