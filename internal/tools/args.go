package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/dates"
	"github.com/baseradar/baseradar/internal/domain"
)

const (
	defaultLimit   = 50
	maxListLimit   = 1000
	maxDetailLimit = 100
)

// DateRangeArg is the {start, end} argument accepted by range-aware tools.
type DateRangeArg struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// resolveRange parses arg, or falls back to def when arg is nil.
func (t *Toolset) resolveRange(arg *DateRangeArg, def domain.DateRange) (domain.DateRange, error) {
	if arg == nil {
		return def, nil
	}
	return dates.ParseRange(arg.Start, arg.End, t.clock())
}

// limitOf applies the default and cap to an optional limit argument.
func limitOf(limit *int, ceiling int) (int, error) {
	if limit == nil {
		return min(defaultLimit, ceiling), nil
	}
	if *limit < 1 {
		return 0, domain.InvalidParameter(fmt.Sprintf("limit must be at least 1, got %d", *limit), "pass a positive limit")
	}
	return min(*limit, ceiling), nil
}

func floatOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// platformFilter validates ids against the configured platforms. An empty
// list means every platform and yields a nil set.
func (t *Toolset) platformFilter(ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	set := make(map[string]bool, len(ids))
	var unknown []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if !t.known[id] {
			unknown = append(unknown, id)
			continue
		}
		set[id] = true
	}
	if len(unknown) > 0 {
		supported := t.cfg.PlatformIDs()
		sort.Strings(supported)
		return nil, domain.UnknownPlatform(unknown, supported)
	}
	return set, nil
}

func filterPlatforms(items []domain.NewsItem, set map[string]bool) []domain.NewsItem {
	if set == nil {
		return items
	}
	out := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		if set[item.Platform] {
			out = append(out, item)
		}
	}
	return out
}

func presentItems(items []domain.NewsItem, includeURL bool) []domain.NewsItem {
	out := make([]domain.NewsItem, len(items))
	for i, item := range items {
		if !includeURL {
			item = item.WithoutLinks()
		}
		out[i] = item
	}
	return out
}

func (t *Toolset) queryRange(ctx context.Context, r domain.DateRange) ([]domain.NewsItem, error) {
	if t.corpus == nil {
		return nil, domain.CorpusUnavailable(fmt.Errorf("corpus not configured"))
	}
	items, err := t.corpus.QueryRange(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", r, err)
	}
	return items, nil
}

func (t *Toolset) queryDay(ctx context.Context, day time.Time) ([]domain.NewsItem, error) {
	if t.corpus == nil {
		return nil, domain.CorpusUnavailable(fmt.Errorf("corpus not configured"))
	}
	items, err := t.corpus.QueryByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", dates.Format(day), err)
	}
	return items, nil
}

func rangeView(r domain.DateRange) DateRangeArg {
	return DateRangeArg{Start: dates.Format(r.Start), End: dates.Format(r.End)}
}
