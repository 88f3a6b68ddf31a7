package report

import (
	"strings"
	"testing"
	"time"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/domain"
)

var now = time.Date(2025, time.October, 15, 20, 0, 0, 0, time.UTC)

func TestDefaultRange(t *testing.T) {
	t.Parallel()

	daily, err := DefaultRange(Daily, now)
	if err != nil || daily.Len() != 1 {
		t.Fatalf("unexpected daily range %s %v", daily, err)
	}
	weekly, err := DefaultRange(Weekly, now)
	if err != nil || weekly.Len() != 7 || weekly.End.Day() != 15 {
		t.Fatalf("unexpected weekly range %s %v", weekly, err)
	}
	if _, err := DefaultRange("monthly", now); domain.CodeOf(err) != domain.CodeInvalidParameter {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
}

func TestGenerateDaily(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Base TVL surges to record", Platform: "coindesk", Rank: 1, URL: "https://coindesk.example/1", CapturedAt: now.Add(-2 * time.Hour)},
		{Title: "Base TVL surges to record", Platform: "decrypt", Rank: 3, CapturedAt: now.Add(-time.Hour)},
		{Title: "Bridge exploit drains funds", Platform: "decrypt", Rank: 2, CapturedAt: now.Add(-time.Hour)},
	}
	r, _ := DefaultRange(Daily, now)

	rep, err := Generate(items, Input{
		Type:   Daily,
		Range:  r,
		Groups: []config.KeywordGroup{{Words: []string{"base"}}, {Words: []string{"exploit", "hack"}}},
		PlatformName: func(id string) string {
			return map[string]string{"coindesk": "CoinDesk", "decrypt": "Decrypt"}[id]
		},
		Now:      now,
		Location: time.UTC,
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if rep.TotalItems != 3 || len(rep.TopNews) != 2 || len(rep.Platforms) != 2 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.Keywords[0].Keyword != "base" || rep.Keywords[0].Count != 2 {
		t.Fatalf("unexpected keywords %+v", rep.Keywords)
	}
	if rep.Sentiment.Positive != 1 || rep.Sentiment.Negative != 1 {
		t.Fatalf("unexpected sentiment %+v", rep.Sentiment)
	}
	for _, want := range []string{"BaseRadar daily report 2025-10-15", "Trending keywords", "[CoinDesk]", "Decrypt: 2 items", "https://coindesk.example/1"} {
		if !strings.Contains(rep.Markdown, want) {
			t.Fatalf("markdown missing %q:\n%s", want, rep.Markdown)
		}
	}
}

func TestGenerateRejectsUnknownType(t *testing.T) {
	t.Parallel()

	if _, err := Generate(nil, Input{Type: "hourly", Now: now}); domain.CodeOf(err) != domain.CodeInvalidParameter {
		t.Fatalf("expected invalid parameter, got %v", err)
	}
}
