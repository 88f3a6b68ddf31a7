package tools

import (
	"context"
	"encoding/json"

	"github.com/baseradar/baseradar/internal/dates"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ranking"
	"github.com/baseradar/baseradar/internal/search"
)

const similarLookbackDays = 7

type searchArgs struct {
	Query      string        `json:"query"`
	SearchMode string        `json:"search_mode"`
	DateRange  *DateRangeArg `json:"date_range"`
	Platforms  []string      `json:"platforms"`
	Limit      *int          `json:"limit"`
	SortBy     string        `json:"sort_by"`
	Threshold  *float64      `json:"threshold"`
	IncludeURL bool          `json:"include_url"`
}

type searchResult struct {
	Query   string       `json:"query"`
	Mode    search.Mode  `json:"mode"`
	Range   DateRangeArg `json:"dateRange"`
	Total   int          `json:"total"`
	Results []search.Hit `json:"results"`
}

func (t *Toolset) searchNews(ctx context.Context, raw json.RawMessage) (any, error) {
	var args searchArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	limit, err := limitOf(args.Limit, maxListLimit)
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
	items = filterPlatforms(items, set)

	mode := search.Mode(args.SearchMode)
	if mode == "" {
		mode = search.ModeKeyword
	}
	hits, err := search.Search(items, search.Query{
		Text:      args.Query,
		Mode:      mode,
		SortBy:    search.SortBy(args.SortBy),
		Threshold: floatOr(args.Threshold, search.DefaultFuzzyThreshold),
		Limit:     limit,
	}, ranking.NewWeigher(t.weights(), items, now))
	if err != nil {
		return nil, err
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	if !args.IncludeURL {
		for i := range hits {
			hits[i].NewsItem = hits[i].NewsItem.WithoutLinks()
		}
	}
	return searchResult{Query: args.Query, Mode: mode, Range: rangeView(r), Total: len(hits), Results: hits}, nil
}

type relatedArgs struct {
	ReferenceText string   `json:"reference_text"`
	TimePreset    string   `json:"time_preset"`
	StartDate     string   `json:"start_date"`
	EndDate       string   `json:"end_date"`
	Threshold     *float64 `json:"threshold"`
	Limit         *int     `json:"limit"`
	IncludeURL    bool     `json:"include_url"`
}

type relatedResult struct {
	ReferenceText string                   `json:"referenceText"`
	Preset        dates.Preset             `json:"timePreset"`
	Range         DateRangeArg             `json:"dateRange"`
	Total         int                      `json:"total"`
	Results       []domain.SimilarityMatch `json:"results"`
	Distribution  []domain.FrequencyPoint  `json:"distribution"`
}

func (t *Toolset) searchRelatedHistory(ctx context.Context, raw json.RawMessage) (any, error) {
	var args relatedArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	limit, err := limitOf(args.Limit, maxDetailLimit)
	if err != nil {
		return nil, err
	}
	preset := dates.Preset(args.TimePreset)
	if preset == "" {
		preset = dates.PresetYesterday
	}
	r, err := dates.ResolvePreset(preset, args.StartDate, args.EndDate, t.clock())
	if err != nil {
		return nil, err
	}

	items, err := t.queryRange(ctx, r)
	if err != nil {
		return nil, err
	}
	related, err := search.RelatedHistory(items, args.ReferenceText, r,
		floatOr(args.Threshold, search.DefaultRelatedThreshold), limit, t.loc())
	if err != nil {
		return nil, err
	}
	return relatedResult{
		ReferenceText: args.ReferenceText,
		Preset:        preset,
		Range:         rangeView(r),
		Total:         len(related.Matches),
		Results:       presentMatches(related.Matches, args.IncludeURL),
		Distribution:  related.Distribution,
	}, nil
}

type similarArgs struct {
	ReferenceTitle string   `json:"reference_title"`
	Threshold      *float64 `json:"threshold"`
	Limit          *int     `json:"limit"`
	IncludeURL     bool     `json:"include_url"`
}

type similarResult struct {
	ReferenceTitle string                   `json:"referenceTitle"`
	Range          DateRangeArg             `json:"dateRange"`
	Total          int                      `json:"total"`
	Results        []domain.SimilarityMatch `json:"results"`
}

func (t *Toolset) findSimilarNews(ctx context.Context, raw json.RawMessage) (any, error) {
	var args similarArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	limit, err := limitOf(args.Limit, maxDetailLimit)
	if err != nil {
		return nil, err
	}
	r := dates.Trailing(similarLookbackDays, t.clock())
	items, err := t.queryRange(ctx, r)
	if err != nil {
		return nil, err
	}
	matches, err := search.FindSimilar(items, args.ReferenceTitle,
		floatOr(args.Threshold, search.DefaultSimilarThreshold), limit)
	if err != nil {
		return nil, err
	}
	return similarResult{
		ReferenceTitle: args.ReferenceTitle,
		Range:          rangeView(r),
		Total:          len(matches),
		Results:        presentMatches(matches, args.IncludeURL),
	}, nil
}

func presentMatches(matches []domain.SimilarityMatch, includeURL bool) []domain.SimilarityMatch {
	out := make([]domain.SimilarityMatch, len(matches))
	for i, m := range matches {
		if !includeURL {
			m.Item = m.Item.WithoutLinks()
		}
		out[i] = m
	}
	return out
}
