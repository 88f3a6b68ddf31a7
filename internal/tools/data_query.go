package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/dates"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/insights"
)

type newsList struct {
	Date  string            `json:"date"`
	Total int               `json:"total"`
	News  []domain.NewsItem `json:"news"`
}

type latestArgs struct {
	Platforms  []string `json:"platforms"`
	Limit      *int     `json:"limit"`
	IncludeURL bool     `json:"include_url"`
}

func (t *Toolset) getLatestNews(ctx context.Context, raw json.RawMessage) (any, error) {
	var args latestArgs
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

	today := dates.Today(t.clock())
	items, err := t.queryDay(ctx, today)
	if err != nil {
		return nil, err
	}
	news := t.latestBatch(filterPlatforms(items, set))
	if len(news) > limit {
		news = news[:limit]
	}
	return newsList{Date: dates.Format(today), Total: len(news), News: presentItems(news, args.IncludeURL)}, nil
}

// latestBatch keeps, per platform, the items of its most recent capture,
// ordered by configured platform order then rank.
func (t *Toolset) latestBatch(items []domain.NewsItem) []domain.NewsItem {
	latest := map[string]time.Time{}
	for _, item := range items {
		if ts, ok := latest[item.Platform]; !ok || item.CapturedAt.After(ts) {
			latest[item.Platform] = item.CapturedAt
		}
	}
	var out []domain.NewsItem
	for _, item := range items {
		if item.CapturedAt.Equal(latest[item.Platform]) {
			out = append(out, item)
		}
	}

	order := map[string]int{}
	for i, id := range t.cfg.PlatformIDs() {
		order[id] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, iok := order[out[i].Platform]
		oj, jok := order[out[j].Platform]
		if iok != jok {
			return iok
		}
		if oi != oj {
			return oi < oj
		}
		if out[i].Platform != out[j].Platform {
			return out[i].Platform < out[j].Platform
		}
		return out[i].Rank < out[j].Rank
	})
	return out
}

type byDateArgs struct {
	DateQuery  string   `json:"date_query"`
	Platforms  []string `json:"platforms"`
	Limit      *int     `json:"limit"`
	IncludeURL bool     `json:"include_url"`
}

func (t *Toolset) getNewsByDate(ctx context.Context, raw json.RawMessage) (any, error) {
	var args byDateArgs
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
	query := strings.TrimSpace(args.DateQuery)
	if query == "" {
		query = "today"
	}
	day, err := dates.Resolve(query, now)
	if err != nil {
		return nil, err
	}
	if err := dates.ValidateNotFuture(day, now); err != nil {
		return nil, err
	}
	if err := dates.ValidateNotTooOld(day, now, dates.MaxRelativeDays); err != nil {
		return nil, err
	}

	items, err := t.queryDay(ctx, day)
	if err != nil {
		return nil, err
	}
	news := filterPlatforms(items, set)
	if len(news) > limit {
		news = news[:limit]
	}
	return newsList{Date: dates.Format(day), Total: len(news), News: presentItems(news, args.IncludeURL)}, nil
}

// Trending modes.
const (
	trendingCurrent = "current"
	trendingDaily   = "daily"
)

type trendingArgs struct {
	TopN *int   `json:"top_n"`
	Mode string `json:"mode"`
}

type trendingResult struct {
	Mode   string                  `json:"mode"`
	Date   string                  `json:"date"`
	Items  int                     `json:"items"`
	Topics []insights.KeywordTrend `json:"topics"`
}

func (t *Toolset) getTrendingTopics(ctx context.Context, raw json.RawMessage) (any, error) {
	var args trendingArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	topN := intOr(args.TopN, 10)
	if topN < 1 {
		return nil, domain.InvalidParameter(fmt.Sprintf("top_n must be at least 1, got %d", topN), "pass a positive top_n")
	}
	mode := args.Mode
	if mode == "" {
		mode = trendingCurrent
	}
	if mode != trendingCurrent && mode != trendingDaily {
		return nil, domain.InvalidParameter(fmt.Sprintf("unknown mode %q", mode), "use current or daily")
	}

	today := dates.Today(t.clock())
	items, err := t.queryDay(ctx, today)
	if err != nil {
		return nil, err
	}
	if mode == trendingCurrent {
		items = t.latestBatch(items)
	}
	return trendingResult{
		Mode:   mode,
		Date:   dates.Format(today),
		Items:  len(items),
		Topics: insights.TrendingKeywords(items, t.cfg.Keywords.Groups, topN),
	}, nil
}
