package insights

import (
	"sort"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/textsim"
)

const sampleTitles = 3

// KeywordTrend is how often one configured keyword group matched.
type KeywordTrend struct {
	Keyword   string   `json:"keyword"`
	Count     int      `json:"count"`
	Platforms []string `json:"platforms"`
	Titles    []string `json:"titles"`
}

// TrendingKeywords counts the items matching each keyword group. Repeats of a
// headline on several platforms all count; sample titles are distinct.
// Groups without matches are omitted. topN <= 0 keeps every group.
func TrendingKeywords(items []domain.NewsItem, groups []config.KeywordGroup, topN int) []KeywordTrend {
	trends := []KeywordTrend{}
	for _, g := range groups {
		kt := KeywordTrend{Keyword: g.Label(), Platforms: []string{}, Titles: []string{}}
		seenTitle := map[string]bool{}
		seenPlatform := map[string]bool{}
		for _, item := range items {
			if !g.Match(item.Title) {
				continue
			}
			kt.Count++
			if !seenPlatform[item.Platform] {
				seenPlatform[item.Platform] = true
				kt.Platforms = append(kt.Platforms, item.Platform)
			}
			key := textsim.NormalizeTitle(item.Title)
			if len(kt.Titles) < sampleTitles && !seenTitle[key] {
				seenTitle[key] = true
				kt.Titles = append(kt.Titles, item.Title)
			}
		}
		if kt.Count > 0 {
			sort.Strings(kt.Platforms)
			trends = append(trends, kt)
		}
	}

	sort.SliceStable(trends, func(i, j int) bool {
		if trends[i].Count != trends[j].Count {
			return trends[i].Count > trends[j].Count
		}
		return trends[i].Keyword < trends[j].Keyword
	})
	if topN > 0 && len(trends) > topN {
		trends = trends[:topN]
	}
	return trends
}
