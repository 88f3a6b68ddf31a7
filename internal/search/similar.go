package search

import (
	"sort"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/textsim"
)

const (
	DefaultSimilarThreshold = 0.6
	DefaultRelatedThreshold = 0.4

	keywordOverlapWeight = 0.7
	textSimilarityWeight = 0.3
)

// FindSimilar ranks candidates by fuzzy similarity to reference. Items sharing
// the reference's normalized title are skipped.
func FindSimilar(candidates []domain.NewsItem, reference string, threshold float64, limit int) ([]domain.SimilarityMatch, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, domain.InvalidParameter("reference_title must not be empty", "pass the headline to compare against")
	}
	if threshold < 0 || threshold > 1 {
		return nil, domain.InvalidParameterf("threshold %.2f is outside [0, 1]", threshold)
	}

	self := textsim.NormalizeTitle(reference)
	var matches []domain.SimilarityMatch
	for _, item := range textsim.Dedup(candidates) {
		if textsim.NormalizeTitle(item.Title) == self {
			continue
		}
		if s := textsim.FuzzySimilarity(reference, item.Title); s >= threshold {
			matches = append(matches, domain.SimilarityMatch{Item: item, Score: round(s)})
		}
	}
	return capMatches(matches, limit), nil
}

// RelatedScore blends keyword overlap with character-level similarity.
func RelatedScore(reference, title string) float64 {
	overlap := textsim.Jaccard(textsim.SignificantTokens(reference), textsim.SignificantTokens(title))
	return keywordOverlapWeight*overlap + textSimilarityWeight*textsim.SequenceRatio(reference, title)
}

// Related is the outcome of a history lookup.
type Related struct {
	Matches      []domain.SimilarityMatch `json:"matches"`
	Distribution []domain.FrequencyPoint  `json:"distribution"`
}

// RelatedHistory finds past items related to text within the given range.
// The distribution counts every match per day, before limit applies.
func RelatedHistory(items []domain.NewsItem, text string, r domain.DateRange, threshold float64, limit int, loc *time.Location) (Related, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Related{}, domain.InvalidParameter("reference_text must not be empty", "pass a headline or short description")
	}
	if threshold < 0 || threshold > 1 {
		return Related{}, domain.InvalidParameterf("threshold %.2f is outside [0, 1]", threshold)
	}
	if loc == nil {
		loc = time.UTC
	}

	perDay := map[string]int{}
	var matches []domain.SimilarityMatch
	for _, item := range textsim.Dedup(items) {
		s := RelatedScore(text, item.Title)
		if s < threshold {
			continue
		}
		matches = append(matches, domain.SimilarityMatch{Item: item, Score: round(s)})
		perDay[item.Day(loc)]++
	}

	dist := make([]domain.FrequencyPoint, 0, r.Len())
	for _, d := range r.Days() {
		day := d.Format(domain.DayLayout)
		dist = append(dist, domain.FrequencyPoint{Date: day, Count: perDay[day]})
	}
	return Related{Matches: capMatches(matches, limit), Distribution: dist}, nil
}

func capMatches(matches []domain.SimilarityMatch, limit int) []domain.SimilarityMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Item.CapturedAt.After(matches[j].Item.CapturedAt)
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
