// Package search implements keyword, fuzzy and entity search plus similarity
// lookups over corpus items.
package search

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/textsim"
)

// Mode selects how a query is matched.
type Mode string

const (
	ModeKeyword Mode = "keyword"
	ModeFuzzy   Mode = "fuzzy"
	ModeEntity  Mode = "entity"
)

// SortBy orders the hits.
type SortBy string

const (
	SortRelevance SortBy = "relevance"
	SortWeight    SortBy = "weight"
	SortDate      SortBy = "date"
)

// DefaultFuzzyThreshold is used when a fuzzy query passes no threshold.
const DefaultFuzzyThreshold = 0.6

// Query describes one search.
type Query struct {
	Text      string
	Mode      Mode
	SortBy    SortBy
	Threshold float64
	Limit     int
}

// Hit is a matched item with its relevance and heat weight.
type Hit struct {
	domain.NewsItem
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
}

// Weigher supplies heat weights for sort_by=weight.
type Weigher interface {
	Weight(item domain.NewsItem) float64
}

// Search matches q against items (already filtered by date and platform).
// Duplicate titles collapse to their first occurrence before the limit applies.
func Search(items []domain.NewsItem, q Query, weigher Weigher) ([]Hit, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, domain.InvalidParameter("query must not be empty", "pass a keyword, phrase or entity name")
	}
	if q.Threshold < 0 || q.Threshold > 1 {
		return nil, domain.InvalidParameterf("threshold %.2f is outside [0, 1]", q.Threshold)
	}

	var score func(domain.NewsItem) (float64, bool)
	switch q.Mode {
	case ModeKeyword, "":
		score = keywordScorer(text)
	case ModeFuzzy:
		threshold := q.Threshold
		score = func(item domain.NewsItem) (float64, bool) {
			s := textsim.FuzzySimilarity(text, item.Title)
			return s, s >= threshold
		}
	case ModeEntity:
		score = entityScorer(text)
	default:
		return nil, domain.InvalidParameter(fmt.Sprintf("unknown search_mode %q", q.Mode), "use keyword, fuzzy or entity")
	}

	var hits []Hit
	for _, item := range textsim.Dedup(filter(items, score)) {
		s, _ := score(item)
		hit := Hit{NewsItem: item, Score: round(s)}
		if weigher != nil {
			hit.Weight = weigher.Weight(item)
		}
		hits = append(hits, hit)
	}

	if err := sortHits(hits, q.SortBy); err != nil {
		return nil, err
	}
	if q.Limit > 0 && len(hits) > q.Limit {
		hits = hits[:q.Limit]
	}
	return hits, nil
}

func filter(items []domain.NewsItem, score func(domain.NewsItem) (float64, bool)) []domain.NewsItem {
	var out []domain.NewsItem
	for _, item := range items {
		if _, ok := score(item); ok {
			out = append(out, item)
		}
	}
	return out
}

func keywordScorer(query string) func(domain.NewsItem) (float64, bool) {
	q := strings.ToLower(query)
	return func(item domain.NewsItem) (float64, bool) {
		switch {
		case strings.Contains(strings.ToLower(item.Title), q):
			return 1, true
		case strings.Contains(strings.ToLower(item.Summary), q):
			return 0.5, true
		default:
			return 0, false
		}
	}
}

// entityScorer rewards exact named-span matches over whole-word and substring
// matches.
func entityScorer(query string) func(domain.NewsItem) (float64, bool) {
	q := textsim.NormalizeTitle(strings.TrimPrefix(query, "$"))
	qTokens := textsim.Tokens(q)
	return func(item domain.NewsItem) (float64, bool) {
		title := textsim.NormalizeTitle(item.Title)
		if !strings.Contains(title, q) {
			return 0, false
		}
		for _, span := range namedSpans(item.Title) {
			if span == q {
				return 1, true
			}
		}
		if containsRun(textsim.Tokens(title), qTokens) {
			return 0.7, true
		}
		return 0.4, true
	}
}

// namedSpans lists capitalized words, all-caps words, $TICKERs and maximal
// runs of consecutive capitalized words, lowercased.
func namedSpans(title string) []string {
	var (
		spans []string
		run   []string
	)
	flush := func() {
		if len(run) > 1 {
			spans = append(spans, strings.Join(run, " "))
		}
		run = run[:0]
	}
	for _, word := range strings.Fields(title) {
		word = strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '$'
		})
		ticker := strings.HasPrefix(word, "$")
		word = strings.TrimPrefix(word, "$")
		if word == "" {
			flush()
			continue
		}
		first := []rune(word)[0]
		if ticker || unicode.IsUpper(first) {
			lower := strings.ToLower(word)
			spans = append(spans, lower)
			run = append(run, lower)
			continue
		}
		flush()
	}
	flush()
	return spans
}

func containsRun(tokens, run []string) bool {
	if len(run) == 0 {
		return false
	}
	for i := 0; i+len(run) <= len(tokens); i++ {
		match := true
		for j := range run {
			if tokens[i+j] != run[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func sortHits(hits []Hit, by SortBy) error {
	var less func(a, b Hit) bool
	switch by {
	case SortRelevance, "":
		less = func(a, b Hit) bool {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Rank != b.Rank {
				return a.Rank < b.Rank
			}
			return a.CapturedAt.After(b.CapturedAt)
		}
	case SortWeight:
		less = func(a, b Hit) bool {
			if a.Weight != b.Weight {
				return a.Weight > b.Weight
			}
			return a.Score > b.Score
		}
	case SortDate:
		less = func(a, b Hit) bool {
			if !a.CapturedAt.Equal(b.CapturedAt) {
				return a.CapturedAt.After(b.CapturedAt)
			}
			return a.Rank < b.Rank
		}
	default:
		return domain.InvalidParameter(fmt.Sprintf("unknown sort_by %q", by), "use relevance, weight or date")
	}
	sort.SliceStable(hits, func(i, j int) bool { return less(hits[i], hits[j]) })
	return nil
}

func round(v float64) float64 {
	return float64(int(v*1000+0.5)) / 1000
}
