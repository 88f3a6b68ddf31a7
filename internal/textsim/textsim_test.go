package textsim

import (
	"testing"

	"github.com/baseradar/baseradar/internal/domain"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	if got := NormalizeTitle("  Base   Hits  NEW High "); got != "base hits new high" {
		t.Fatalf("unexpected normalized title %q", got)
	}
}

func TestSignificantTokens(t *testing.T) {
	t.Parallel()

	got := SignificantTokens("The Base chain is live on the Superchain, base fees drop 40%")
	want := []string{"base", "chain", "live", "superchain", "fees", "drop"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestSimilarityBounds(t *testing.T) {
	t.Parallel()

	if s := FuzzySimilarity("Bitcoin halving is near", "bitcoin  HALVING is near"); s != 1 {
		t.Fatalf("identical titles should score 1, got %f", s)
	}
	if s := FuzzySimilarity("Bitcoin halving", ""); s != 0 {
		t.Fatalf("empty comparison should score 0, got %f", s)
	}
	s := FuzzySimilarity("Base TVL hits record", "Solana outage halts network")
	if s < 0 || s > 0.5 {
		t.Fatalf("unrelated titles should score low, got %f", s)
	}
}

func TestFuzzyMonotonicity(t *testing.T) {
	t.Parallel()

	ref := "Coinbase launches Base mainnet"
	near := FuzzySimilarity(ref, "Coinbase launches Base mainnet today")
	far := FuzzySimilarity(ref, "Coinbase stock falls after earnings")
	if near <= far {
		t.Fatalf("expected closer title to score higher: %f <= %f", near, far)
	}
}

func TestJaccard(t *testing.T) {
	t.Parallel()

	got := Jaccard([]string{"a", "b", "c"}, []string{"b", "c", "d"})
	if got != 0.5 {
		t.Fatalf("expected 0.5, got %f", got)
	}
}

func TestDedup(t *testing.T) {
	t.Parallel()

	items := []domain.NewsItem{
		{Title: "Base Hits Record", Platform: "coindesk"},
		{Title: "base  hits record", Platform: "decrypt"},
		{Title: "Other", Platform: "decrypt"},
	}
	got := Dedup(items)
	if len(got) != 2 || got[0].Platform != "coindesk" {
		t.Fatalf("unexpected dedup result: %+v", got)
	}
}
