package scanner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/logging"
)

type stubSource struct {
	name  string
	crawl func(ctx context.Context) ([]domain.NewsItem, error)
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) Crawl(ctx context.Context) ([]domain.NewsItem, error) {
	return s.crawl(ctx)
}

func register(reg *Registry, id string, fn func(ctx context.Context) ([]domain.NewsItem, error)) {
	reg.Register(id, func(Options) Source { return stubSource{name: id, crawl: fn} })
}

func titles(n int) []domain.NewsItem {
	items := make([]domain.NewsItem, n)
	for i := range items {
		items[i] = domain.NewsItem{Title: "headline " + string(rune('a'+i)), URL: "https://example.org/" + string(rune('a'+i))}
	}
	return items
}

var batchTime = time.Date(2025, time.October, 15, 8, 0, 0, 0, time.UTC)

func newTestOrchestrator(reg *Registry, timeout time.Duration) *Orchestrator {
	return NewOrchestrator(reg, OrchestratorConfig{
		Timeout: timeout,
		Logger:  logging.Discard(),
		Now:     func() time.Time { return batchTime },
	})
}

func TestRunIsolatesFailures(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	register(reg, "alpha", func(context.Context) ([]domain.NewsItem, error) { return titles(3), nil })
	register(reg, "beta", func(context.Context) ([]domain.NewsItem, error) { return nil, errors.New("503 upstream") })
	register(reg, "gamma", func(context.Context) ([]domain.NewsItem, error) { panic("boom") })
	register(reg, "delta", func(ctx context.Context) ([]domain.NewsItem, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	register(reg, "epsilon", func(context.Context) ([]domain.NewsItem, error) { return nil, nil })

	orch := newTestOrchestrator(reg, 50*time.Millisecond)
	results := orch.Run(context.Background(), []string{"alpha", "beta", "gamma", "delta", "epsilon", "zeta"}, "")

	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}

	fetch, unknown := domain.CodeSourceFetchFailure, domain.CodeUnknownPlatform
	want := []struct {
		platform string
		ok       bool
		errPart  string
		code     domain.Code
	}{
		{"alpha", true, "", ""},
		{"beta", false, "503", fetch},
		{"gamma", false, "panic", fetch},
		{"delta", false, "timeout", fetch},
		{"epsilon", true, "", ""},
		{"zeta", false, "unknown platform", unknown},
	}
	for i, w := range want {
		got := results[i]
		if got.Platform != w.platform || got.OK() != w.ok || got.Code != w.code || !strings.Contains(got.Error, w.errPart) {
			t.Fatalf("result %d: got %+v, want %+v", i, got, w)
		}
	}

	alpha := results[0].Items
	if len(alpha) != 3 {
		t.Fatalf("expected 3 alpha items, got %d", len(alpha))
	}
	for i, item := range alpha {
		if item.Rank != i+1 || item.Platform != "alpha" || !item.CapturedAt.Equal(batchTime) {
			t.Fatalf("item %d not normalized: %+v", i, item)
		}
	}
}

func TestRunDefaultsToAllPlatforms(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, id := range []string{"one", "two", "three"} {
		register(reg, id, func(context.Context) ([]domain.NewsItem, error) { return titles(1), nil })
	}

	results := newTestOrchestrator(reg, time.Second).Run(context.Background(), nil, "")
	if len(results) != 3 || results[0].Platform != "one" || results[2].Platform != "three" {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestRunCancelledKeepsFinished(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := NewRegistry()
	register(reg, "fast", func(context.Context) ([]domain.NewsItem, error) { return titles(2), nil })
	register(reg, "slow", func(ctx context.Context) ([]domain.NewsItem, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	})

	orch := NewOrchestrator(reg, OrchestratorConfig{Timeout: time.Second, Concurrency: 1, Logger: logging.Discard()})
	results := orch.Run(ctx, []string{"fast", "slow"}, "")

	if !results[0].OK() || len(results[0].Items) != 2 {
		t.Fatalf("finished source lost its result: %+v", results[0])
	}
	if results[1].OK() || results[1].Error != "cancelled" {
		t.Fatalf("expected cancelled result, got %+v", results[1])
	}
}

func TestNormalizeCapsAndRanks(t *testing.T) {
	t.Parallel()

	items := append([]domain.NewsItem{{Title: ""}}, titles(26)...)
	items = append(items, titles(26)...)
	got := Normalize("p", items, batchTime)
	if len(got) != MaxItems {
		t.Fatalf("expected %d items, got %d", MaxItems, len(got))
	}
	if got[0].Rank != 1 || got[MaxItems-1].Rank != MaxItems {
		t.Fatalf("unexpected ranks %d..%d", got[0].Rank, got[MaxItems-1].Rank)
	}
}

func TestRegistryMissing(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	register(reg, "one", func(context.Context) ([]domain.NewsItem, error) { return nil, nil })
	register(reg, "two", func(context.Context) ([]domain.NewsItem, error) { return nil, nil })

	got := reg.Missing([]string{"two", "ghost", "one", "phantom"})
	if len(got) != 2 || got[0] != "ghost" || got[1] != "phantom" {
		t.Fatalf("unexpected missing ids %v", got)
	}
	if reg.Missing(reg.IDs()) != nil {
		t.Fatalf("registered ids reported missing")
	}
}
