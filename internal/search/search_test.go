package search

import (
	"errors"
	"testing"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
)

var now = time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)

type mapWeigher map[string]float64

func (m mapWeigher) Weight(item domain.NewsItem) float64 { return m[item.Title] }

func TestKeywordSearchPreservesRank(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Base TVL grows again", Platform: "coindesk", Rank: 1, CapturedAt: now},
		{Title: "Bitcoin halving countdown begins", Platform: "coindesk", Rank: 3, CapturedAt: now},
	}
	hits, err := Search(items, Query{Text: "halving", Mode: ModeKeyword}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].Title != "Bitcoin halving countdown begins" || hits[0].Rank != 3 || hits[0].Score != 1 {
		t.Fatalf("unexpected hit %+v", hits[0])
	}
}

func TestKeywordSummaryMatchScoresLower(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Markets wrap", Summary: "Analysts discuss the halving", Rank: 1, CapturedAt: now},
		{Title: "Halving day is here", Rank: 9, CapturedAt: now},
	}
	hits, err := Search(items, Query{Text: "HALVING"}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 || hits[0].Title != "Halving day is here" || hits[1].Score != 0.5 {
		t.Fatalf("unexpected hits %+v", hits)
	}
}

func TestFuzzyThresholdMonotonic(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Base network outage halts deposits"},
		{Title: "Base network outage halts transactions"},
		{Title: "Outage on Base network"},
		{Title: "Ethereum ETF approved by SEC"},
		{Title: "Coinbase lists new memecoin"},
	}
	query := "base network outage"

	loose, err := Search(items, Query{Text: query, Mode: ModeFuzzy, Threshold: 0.4}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	strict, err := Search(items, Query{Text: query, Mode: ModeFuzzy, Threshold: 0.8}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	inLoose := map[string]bool{}
	for _, h := range loose {
		inLoose[h.Title] = true
	}
	for _, h := range strict {
		if !inLoose[h.Title] {
			t.Fatalf("%q matched at 0.8 but not at 0.4", h.Title)
		}
	}
	if len(strict) > len(loose) {
		t.Fatalf("strict result set larger than loose one")
	}
	for i := 1; i < len(loose); i++ {
		if loose[i].Score > loose[i-1].Score {
			t.Fatalf("fuzzy hits not sorted by score: %+v", loose)
		}
	}
}

func TestEntityScores(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Database upgrade shipped"},
		{Title: "the base layer grows"},
		{Title: "Coinbase launches Base Pay"},
		{Title: "Solana validators vote"},
	}
	hits, err := Search(items, Query{Text: "base", Mode: ModeEntity}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := map[string]float64{
		"Coinbase launches Base Pay": 1,
		"the base layer grows":       0.7,
		"Database upgrade shipped":   0.4,
	}
	if len(hits) != len(want) {
		t.Fatalf("expected %d hits, got %+v", len(want), hits)
	}
	for _, h := range hits {
		if want[h.Title] != h.Score {
			t.Fatalf("%q: expected score %v, got %v", h.Title, want[h.Title], h.Score)
		}
	}
	if hits[0].Title != "Coinbase launches Base Pay" {
		t.Fatalf("named span should rank first, got %q", hits[0].Title)
	}
}

func TestDedupBeforeLimit(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Base hits record", Platform: "a", Rank: 1},
		{Title: "base  hits RECORD", Platform: "b", Rank: 2},
		{Title: "Base hits record", Platform: "c", Rank: 3},
		{Title: "Base fees fall", Platform: "a", Rank: 4},
	}
	hits, err := Search(items, Query{Text: "base", Limit: 2}, nil)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 || hits[0].Platform != "a" || hits[1].Title != "Base fees fall" {
		t.Fatalf("unexpected hits %+v", hits)
	}
}

func TestSortModes(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Base old", Rank: 1, CapturedAt: now.Add(-2 * time.Hour)},
		{Title: "Base new", Rank: 2, CapturedAt: now},
		{Title: "Base mid", Rank: 3, CapturedAt: now.Add(-time.Hour)},
	}
	weigher := mapWeigher{"Base old": 10, "Base new": 20, "Base mid": 30}

	tests := []struct {
		sort  SortBy
		first string
	}{
		{SortRelevance, "Base old"},
		{SortDate, "Base new"},
		{SortWeight, "Base mid"},
	}
	for _, tt := range tests {
		hits, err := Search(items, Query{Text: "base", SortBy: tt.sort}, weigher)
		if err != nil {
			t.Fatalf("%s: %v", tt.sort, err)
		}
		if hits[0].Title != tt.first {
			t.Fatalf("%s: expected %q first, got %q", tt.sort, tt.first, hits[0].Title)
		}
	}
}

func TestSearchRejectsBadInput(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{{Title: "Base"}}
	bad := []Query{
		{Text: "  "},
		{Text: "base", Mode: "regex"},
		{Text: "base", SortBy: "popularity"},
		{Text: "base", Mode: ModeFuzzy, Threshold: 1.5},
		{Text: "base", Mode: ModeFuzzy, Threshold: -0.1},
	}
	for _, q := range bad {
		_, err := Search(items, q, nil)
		var derr *domain.Error
		if !errors.As(err, &derr) || derr.Code != domain.CodeInvalidParameter {
			t.Fatalf("%+v: expected invalid parameter, got %v", q, err)
		}
	}
}

func TestFindSimilarExcludesReference(t *testing.T) {
	t.Parallel()

	reference := "Base network outage halts transactions"
	candidates := []domain.NewsItem{
		{Title: "base network OUTAGE halts transactions"},
		{Title: "Base network outage halts deposits"},
		{Title: "Ethereum ETF approved by SEC"},
	}
	matches, err := FindSimilar(candidates, reference, 0.5, 10)
	if err != nil {
		t.Fatalf("find similar: %v", err)
	}
	if len(matches) != 1 || matches[0].Item.Title != "Base network outage halts deposits" {
		t.Fatalf("unexpected matches %+v", matches)
	}
	if matches[0].Score < 0.5 || matches[0].Score >= 1 {
		t.Fatalf("unexpected score %v", matches[0].Score)
	}
}

func TestRelatedHistoryDistribution(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2024, time.December, 30, 9, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)
	items := []domain.NewsItem{
		{Title: "Base network outage halts deposits", CapturedAt: d1},
		{Title: "Ethereum ETF approved", CapturedAt: d1},
		{Title: "Base network outage halts withdrawals", CapturedAt: d2},
	}
	r := domain.DateRange{
		Start: time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC),
	}

	got, err := RelatedHistory(items, "Base network outage halts transactions", r, DefaultRelatedThreshold, 1, time.UTC)
	if err != nil {
		t.Fatalf("related: %v", err)
	}
	if len(got.Matches) != 1 {
		t.Fatalf("limit not applied: %+v", got.Matches)
	}
	if len(got.Distribution) != 2 || got.Distribution[0].Count != 1 || got.Distribution[1].Count != 1 {
		t.Fatalf("unexpected distribution %+v", got.Distribution)
	}
}

func TestRelatedScoreWeights(t *testing.T) {
	t.Parallel()

	if s := RelatedScore("Base fees", "base FEES"); s != 1 {
		t.Fatalf("identical texts should score 1, got %v", s)
	}
	if s := RelatedScore("Base fees", "zzzz"); s >= 0.3 {
		t.Fatalf("unrelated texts should only carry text similarity, got %v", s)
	}
}
