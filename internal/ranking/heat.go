// Package ranking computes the heat weight of headlines: how high they ranked,
// how many sources repeated them and how fresh they are.
package ranking

import (
	"math"
	"sort"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/textsim"
)

const (
	rankCeiling     = 11
	repetitionCap   = 10
	recencyHalfLife = 24 * time.Hour
)

// Weights blends the three heat components.
type Weights struct {
	Rank      float64
	Frequency float64
	Recency   float64
}

// DefaultWeights favours rank, then repetition, then freshness.
var DefaultWeights = Weights{Rank: 0.6, Frequency: 0.3, Recency: 0.1}

// Group is every occurrence of one normalized title.
type Group struct {
	Item      domain.NewsItem `json:"item"`
	Count     int             `json:"count"`
	Platforms []string        `json:"platforms"`
	BestRank  int             `json:"bestRank"`
	Weight    float64         `json:"weight"`

	ranks  []int
	latest time.Time
}

// GroupByTitle merges items sharing a normalized title. The representative
// item is the earliest capture; groups keep first-seen order.
func GroupByTitle(items []domain.NewsItem) []*Group {
	index := map[string]*Group{}
	var groups []*Group
	for _, item := range items {
		key := textsim.NormalizeTitle(item.Title)
		g, ok := index[key]
		if !ok {
			g = &Group{Item: item, BestRank: item.Rank}
			index[key] = g
			groups = append(groups, g)
		}
		g.Count++
		g.ranks = append(g.ranks, item.Rank)
		if item.Rank < g.BestRank {
			g.BestRank = item.Rank
		}
		if item.CapturedAt.Before(g.Item.CapturedAt) {
			g.Item = item
		}
		if item.CapturedAt.After(g.latest) {
			g.latest = item.CapturedAt
		}
		if !contains(g.Platforms, item.Platform) {
			g.Platforms = append(g.Platforms, item.Platform)
		}
	}
	for _, g := range groups {
		sort.Strings(g.Platforms)
	}
	return groups
}

// Heat scores a group on a 0..100 scale.
func (w Weights) Heat(g *Group, now time.Time) float64 {
	var rankScore float64
	for _, r := range g.ranks {
		rankScore += rankComponent(r)
	}
	if len(g.ranks) > 0 {
		rankScore /= float64(len(g.ranks))
	}

	repetition := math.Min(float64(g.Count), repetitionCap) / repetitionCap
	heat := 100 * (w.Rank*rankScore + w.Frequency*repetition + w.Recency*recency(g.latest, now))
	return math.Round(heat*100) / 100
}

// Score groups items and fills in every group's weight.
func (w Weights) Score(items []domain.NewsItem, now time.Time) []*Group {
	groups := GroupByTitle(items)
	for _, g := range groups {
		g.Weight = w.Heat(g, now)
	}
	return groups
}

// Weigher looks up the heat weight of individual items.
type Weigher struct {
	byTitle map[string]float64
}

// NewWeigher scores items once so lookups are cheap.
func NewWeigher(w Weights, items []domain.NewsItem, now time.Time) *Weigher {
	wg := &Weigher{byTitle: map[string]float64{}}
	for _, g := range w.Score(items, now) {
		wg.byTitle[textsim.NormalizeTitle(g.Item.Title)] = g.Weight
	}
	return wg
}

// Weight returns the heat weight of item's title group, 0 when unseen.
func (wg *Weigher) Weight(item domain.NewsItem) float64 {
	return wg.byTitle[textsim.NormalizeTitle(item.Title)]
}

func rankComponent(rank int) float64 {
	if rank < 1 {
		rank = 1
	}
	if rank > rankCeiling {
		rank = rankCeiling
	}
	return float64(rankCeiling-rank) / 10
}

func recency(captured, now time.Time) float64 {
	if captured.IsZero() {
		return 0
	}
	age := now.Sub(captured)
	if age <= 0 {
		return 1
	}
	return math.Exp(-math.Ln2 * age.Hours() / recencyHalfLife.Hours())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
