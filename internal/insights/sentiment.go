package insights

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ranking"
	"github.com/baseradar/baseradar/internal/textsim"
)

// Polarity is a coarse sentiment bucket.
type Polarity string

const (
	Positive Polarity = "positive"
	Negative Polarity = "negative"
	Neutral  Polarity = "neutral"
)

const polarityCutoff = 0.1

// Lexicon weights, lowercase. Entries match whole tokens and their plain
// inflections; a trailing "*" marks a stem that matches any token it prefixes.
// Multi-word entries match consecutive tokens.
var positiveWords = lexicon(map[string]float64{
	"bullish": 0.7, "rally": 0.6, "rallies": 0.6, "surge": 0.7, "soar": 0.7, "jump": 0.5,
	"record": 0.5, "all-time high": 0.7, "breakout": 0.6, "gains": 0.4,
	"launch": 0.4, "adoption": 0.5, "partnership": 0.5, "integrat*": 0.4,
	"approv*": 0.6, "inflow": 0.5, "upgrade": 0.5, "growth": 0.4,
	"milestone": 0.5, "recovery": 0.5, "expansion": 0.4, "funding": 0.4,
})

var negativeWords = lexicon(map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6, "selloff": 0.7,
	"sell-off": 0.7, "hack": 0.8, "exploit": 0.8, "outage": 0.6, "scam": 0.8,
	"fraud": 0.8, "lawsuit": 0.6, "banned": 0.6, "outflow": 0.5, "drop": 0.4,
	"falls": 0.4, "fell": 0.4, "falling": 0.4, "liquidat*": 0.6, "warning": 0.5,
	"delay": 0.3, "investigation": 0.5, "loss": 0.4, "rug pull": 0.8, "drain": 0.6,
})

type term struct {
	words  []string
	stem   bool
	weight float64
}

func lexicon(words map[string]float64) []term {
	terms := make([]term, 0, len(words))
	for w, weight := range words {
		stem := strings.HasSuffix(w, "*")
		terms = append(terms, term{
			words:  textsim.Tokens(strings.TrimSuffix(w, "*")),
			stem:   stem,
			weight: weight,
		})
	}
	return terms
}

// in reports whether the term occurs in tokens.
func (t term) in(tokens []string) bool {
	n := len(t.words)
	for i := 0; i+n <= len(tokens); i++ {
		ok := true
		for j, w := range t.words {
			last := j == n-1
			if !matchWord(tokens[i+j], w, last && t.stem, last) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func matchWord(tok, word string, stem, inflect bool) bool {
	switch {
	case tok == word:
		return true
	case stem:
		return strings.HasPrefix(tok, word)
	case !inflect || !strings.HasPrefix(tok, word):
		return false
	}
	switch suffix := tok[len(word):]; suffix {
	case "s", "es", "ed", "d", "ing":
		return true
	default:
		// Doubled final consonant: dropped, slumping.
		return len(suffix) > 1 && suffix[0] == word[len(word)-1] && (suffix[1:] == "ed" || suffix[1:] == "ing")
	}
}

func weigh(terms []term, tokens []string) float64 {
	var sum float64
	for _, t := range terms {
		if t.in(tokens) {
			sum += t.weight
		}
	}
	return sum
}

// ScoreText returns a score in [-1, 1] and its polarity bucket.
func ScoreText(text string) (float64, Polarity) {
	tokens := textsim.Tokens(text)
	pos, neg := weigh(positiveWords, tokens), weigh(negativeWords, tokens)
	if pos+neg == 0 {
		return 0, Neutral
	}
	score := (pos - neg) / (pos + neg)
	return score, polarityOf(score)
}

func polarityOf(score float64) Polarity {
	switch {
	case score > polarityCutoff:
		return Positive
	case score < -polarityCutoff:
		return Negative
	default:
		return Neutral
	}
}

// Distribution counts items per polarity.
type Distribution struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// ScoredItem is a deduplicated headline with its heat and sentiment.
type ScoredItem struct {
	domain.NewsItem
	Weight    float64  `json:"weight"`
	Count     int      `json:"count"`
	Platforms []string `json:"platforms"`
	Score     float64  `json:"sentimentScore"`
	Sentiment Polarity `json:"sentiment"`
}

// SentimentReport is the outcome of AnalyzeSentiment.
type SentimentReport struct {
	Total        int          `json:"total"`
	Distribution Distribution `json:"distribution"`
	Overall      Polarity     `json:"overall"`
	AverageScore float64      `json:"averageScore"`
	Items        []ScoredItem `json:"items"`
}

// SentimentOptions tunes AnalyzeSentiment. Limit 0 keeps every item.
type SentimentOptions struct {
	Topic        string
	Weights      ranking.Weights
	SortByWeight bool
	Limit        int
	Now          time.Time
}

// AnalyzeSentiment collapses repeated headlines into one item each, weighs them
// by heat and buckets them by polarity. The distribution covers every
// distinct headline; Limit only trims the item list.
func AnalyzeSentiment(items []domain.NewsItem, opts SentimentOptions) SentimentReport {
	if topic := strings.TrimSpace(opts.Topic); topic != "" {
		items = filterTopic(items, topic)
	}
	if opts.Weights == (ranking.Weights{}) {
		opts.Weights = ranking.DefaultWeights
	}

	report := SentimentReport{Overall: Neutral, Items: []ScoredItem{}}
	var sum float64
	for _, g := range opts.Weights.Score(items, opts.Now) {
		score, pol := ScoreText(g.Item.Title + " " + g.Item.Summary)
		sum += score
		switch pol {
		case Positive:
			report.Distribution.Positive++
		case Negative:
			report.Distribution.Negative++
		default:
			report.Distribution.Neutral++
		}
		report.Items = append(report.Items, ScoredItem{
			NewsItem:  g.Item,
			Weight:    g.Weight,
			Count:     g.Count,
			Platforms: g.Platforms,
			Score:     math.Round(score*100) / 100,
			Sentiment: pol,
		})
	}

	report.Total = len(report.Items)
	if report.Total > 0 {
		avg := sum / float64(report.Total)
		report.AverageScore = math.Round(avg*100) / 100
		report.Overall = polarityOf(avg)
	}
	if opts.SortByWeight {
		sort.SliceStable(report.Items, func(i, j int) bool {
			return report.Items[i].Weight > report.Items[j].Weight
		})
	}
	if opts.Limit > 0 && len(report.Items) > opts.Limit {
		report.Items = report.Items[:opts.Limit]
	}
	return report
}
