package ranking

import (
	"math"
	"testing"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
)

var now = time.Date(2025, time.October, 15, 12, 0, 0, 0, time.UTC)

func TestGroupByTitleKeepsEarliestRepresentative(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Base TVL record", Platform: "decrypt", Rank: 4, CapturedAt: now.Add(-time.Hour)},
		{Title: "base  tvl RECORD", Platform: "coindesk", Rank: 2, CapturedAt: now.Add(-3 * time.Hour)},
		{Title: "Other story", Platform: "coindesk", Rank: 1, CapturedAt: now},
	}

	groups := GroupByTitle(items)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	g := groups[0]
	if g.Count != 2 || g.BestRank != 2 || g.Item.Platform != "coindesk" {
		t.Fatalf("unexpected group %+v", g)
	}
	if len(g.Platforms) != 2 || g.Platforms[0] != "coindesk" {
		t.Fatalf("unexpected platforms %v", g.Platforms)
	}
}

func TestHeat(t *testing.T) {
	t.Parallel()

	// 100 * (0.6*1 + 0.3*0.1 + 0.1*1)
	fresh := GroupByTitle([]domain.NewsItem{{Title: "x", Rank: 1, CapturedAt: now}})[0]
	if got := DefaultWeights.Heat(fresh, now); math.Abs(got-73) > 1e-9 {
		t.Fatalf("expected 73, got %f", got)
	}

	stale := GroupByTitle([]domain.NewsItem{{Title: "x", Rank: 1, CapturedAt: now.Add(-24 * time.Hour)}})[0]
	if got := DefaultWeights.Heat(stale, now); math.Abs(got-68) > 1e-9 {
		t.Fatalf("expected 68 after one half-life, got %f", got)
	}

	low := GroupByTitle([]domain.NewsItem{{Title: "x", Rank: 30, CapturedAt: now}})[0]
	if got := DefaultWeights.Heat(low, now); math.Abs(got-13) > 1e-9 {
		t.Fatalf("rank beyond ceiling should score 0 for rank, got %f", got)
	}
}

func TestWeigherPrefersRepeatedStories(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Repeated", Platform: "a", Rank: 5, CapturedAt: now},
		{Title: "Repeated", Platform: "b", Rank: 5, CapturedAt: now},
		{Title: "Repeated", Platform: "c", Rank: 5, CapturedAt: now},
		{Title: "Single", Platform: "a", Rank: 5, CapturedAt: now},
	}
	w := NewWeigher(DefaultWeights, items, now)
	if w.Weight(items[0]) <= w.Weight(items[3]) {
		t.Fatalf("repeated story should outweigh single one")
	}
	if w.Weight(domain.NewsItem{Title: "unseen"}) != 0 {
		t.Fatalf("unseen title should weigh 0")
	}
}
