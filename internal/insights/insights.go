// Package insights aggregates corpus items per platform and per keyword pair,
// and scores headline sentiment weighted by heat.
package insights

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/textsim"
)

// Kind selects an aggregation.
type Kind string

const (
	KindPlatformCompare  Kind = "platform_compare"
	KindPlatformActivity Kind = "platform_activity"
	KindKeywordCooccur   Kind = "keyword_cooccur"
)

const (
	DefaultMinFrequency = 3
	DefaultTopN         = 20
)

// Request describes one aggregation over items already limited to Range.
type Request struct {
	Kind         Kind
	Topic        string
	Range        domain.DateRange
	MinFrequency int
	TopN         int
}

// PlatformCount is the number of matching items on one platform.
type PlatformCount struct {
	Platform string  `json:"platform"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// PlatformActivity describes when and how much a platform published.
type PlatformActivity struct {
	Platform         string `json:"platform"`
	Count            int    `json:"count"`
	ActiveDays       int    `json:"activeDays"`
	BusiestHour      int    `json:"busiestHour"`
	BusiestHourCount int    `json:"busiestHourCount"`
}

// Pair is two significant tokens seen in the same titles.
type Pair struct {
	A     string `json:"a"`
	B     string `json:"b"`
	Count int    `json:"count"`
}

// Result holds the payload of the requested kind.
type Result struct {
	Kind      Kind               `json:"kind"`
	Topic     string             `json:"topic,omitempty"`
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Total     int                `json:"total"`
	Platforms []PlatformCount    `json:"platforms,omitempty"`
	Activity  []PlatformActivity `json:"activity,omitempty"`
	Pairs     []Pair             `json:"pairs,omitempty"`
}

// Aggregate runs req over items.
func Aggregate(items []domain.NewsItem, req Request, loc *time.Location) (Result, error) {
	if req.MinFrequency == 0 {
		req.MinFrequency = DefaultMinFrequency
	}
	if req.TopN == 0 {
		req.TopN = DefaultTopN
	}
	if req.MinFrequency < 1 || req.TopN < 1 {
		return Result{}, domain.InvalidParameter(
			fmt.Sprintf("min_frequency and top_n must be positive, got %d and %d", req.MinFrequency, req.TopN),
			"pass values of at least 1")
	}
	if loc == nil {
		loc = time.UTC
	}

	topic := strings.TrimSpace(req.Topic)
	if topic != "" {
		items = filterTopic(items, topic)
	}
	res := Result{
		Kind:  req.Kind,
		Topic: topic,
		Start: req.Range.Start.Format(domain.DayLayout),
		End:   req.Range.End.Format(domain.DayLayout),
		Total: len(items),
	}

	switch req.Kind {
	case KindPlatformCompare, "":
		res.Kind = KindPlatformCompare
		res.Platforms = ComparePlatforms(items)
	case KindPlatformActivity:
		res.Activity = Activity(items, loc)
	case KindKeywordCooccur:
		res.Pairs = Cooccurrences(items, req.MinFrequency, req.TopN)
	default:
		return Result{}, domain.InvalidParameter(
			fmt.Sprintf("unknown insight_type %q", req.Kind),
			"use platform_compare, platform_activity or keyword_cooccur")
	}
	return res, nil
}

func filterTopic(items []domain.NewsItem, topic string) []domain.NewsItem {
	var out []domain.NewsItem
	for _, item := range items {
		if textsim.ContainsFold(item.Title, topic) || textsim.ContainsFold(item.Summary, topic) {
			out = append(out, item)
		}
	}
	return out
}

// ComparePlatforms counts items per platform, busiest first.
func ComparePlatforms(items []domain.NewsItem) []PlatformCount {
	counts := map[string]int{}
	for _, item := range items {
		counts[item.Platform]++
	}

	out := make([]PlatformCount, 0, len(counts))
	for p, c := range counts {
		out = append(out, PlatformCount{
			Platform: p,
			Count:    c,
			Share:    round2(float64(c) / float64(len(items))),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// Activity reports volume, active days and the busiest hour of each platform.
// Ties between hours go to the earlier one.
func Activity(items []domain.NewsItem, loc *time.Location) []PlatformActivity {
	if loc == nil {
		loc = time.UTC
	}
	type tally struct {
		count int
		days  map[string]bool
		hours [24]int
	}
	byPlatform := map[string]*tally{}
	for _, item := range items {
		t, ok := byPlatform[item.Platform]
		if !ok {
			t = &tally{days: map[string]bool{}}
			byPlatform[item.Platform] = t
		}
		t.count++
		t.days[item.Day(loc)] = true
		t.hours[item.CapturedAt.In(loc).Hour()]++
	}

	out := make([]PlatformActivity, 0, len(byPlatform))
	for p, t := range byPlatform {
		a := PlatformActivity{Platform: p, Count: t.count, ActiveDays: len(t.days)}
		for h, c := range t.hours {
			if c > a.BusiestHourCount {
				a.BusiestHour, a.BusiestHourCount = h, c
			}
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}

// Cooccurrences counts significant token pairs per distinct title and keeps
// pairs seen at least minFrequency times, most frequent first.
func Cooccurrences(items []domain.NewsItem, minFrequency, topN int) []Pair {
	counts := map[[2]string]int{}
	for _, item := range textsim.Dedup(items) {
		tokens := textsim.SignificantTokens(item.Title)
		sort.Strings(tokens)
		for i := 0; i < len(tokens); i++ {
			for j := i + 1; j < len(tokens); j++ {
				counts[[2]string{tokens[i], tokens[j]}]++
			}
		}
	}

	pairs := []Pair{}
	for k, c := range counts {
		if c >= minFrequency {
			pairs = append(pairs, Pair{A: k[0], B: k[1], Count: c})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].Count != pairs[j].Count {
			return pairs[i].Count > pairs[j].Count
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	if len(pairs) > topN {
		pairs = pairs[:topN]
	}
	return pairs
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
