// Package textsim holds the title normalization and similarity measures shared by
// search, ranking and analytics.
package textsim

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/baseradar/baseradar/internal/domain"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "is": true, "it": true, "its": true,
	"this": true, "that": true, "are": true, "was": true, "were": true, "be": true,
	"been": true, "has": true, "have": true, "had": true, "will": true, "would": true,
	"could": true, "should": true, "may": true, "might": true, "can": true, "not": true,
	"how": true, "what": true, "when": true, "where": true, "who": true, "which": true,
	"why": true, "all": true, "more": true, "most": true, "than": true, "just": true,
	"about": true, "into": true, "over": true, "after": true, "before": true,
	"out": true, "up": true, "down": true, "our": true, "your": true, "you": true,
	"they": true, "their": true, "new": true, "says": true, "said": true, "amid": true,
	"as": true, "vs": true, "here": true, "now": true, "why's": true, "s": true,
}

// NormalizeTitle lowercases and collapses whitespace so titles that differ only
// in case or spacing compare equal.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// Tokens splits text into lowercase letter/digit runs.
func Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// SignificantTokens drops stop words, very short tokens and pure numbers, and
// returns each remaining token once in encounter order.
func SignificantTokens(text string) []string {
	seen := map[string]bool{}
	var out []string
	for _, tok := range Tokens(text) {
		if utf8.RuneCountInString(tok) < 3 || stopWords[tok] || isNumber(tok) || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// Jaccard is |a∩b| / |a∪b| over the distinct members of a and b.
func Jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, tok := range a {
		setA[tok] = true
	}
	setB := make(map[string]bool, len(b))
	for _, tok := range b {
		setB[tok] = true
	}

	inter := 0
	for tok := range setA {
		if setB[tok] {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

// TokenJaccard compares the token sets of two texts.
func TokenJaccard(a, b string) float64 {
	return Jaccard(Tokens(a), Tokens(b))
}

// SequenceRatio is 1 - editDistance/maxLen over the normalized texts.
func SequenceRatio(a, b string) float64 {
	na, nb := NormalizeTitle(a), NormalizeTitle(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	maxLen := utf8.RuneCountInString(na)
	if n := utf8.RuneCountInString(nb); n > maxLen {
		maxLen = n
	}
	dist := levenshtein.ComputeDistance(na, nb)
	return 1 - float64(dist)/float64(maxLen)
}

// FuzzySimilarity blends character-level and token-level similarity equally.
func FuzzySimilarity(a, b string) float64 {
	return 0.5*SequenceRatio(a, b) + 0.5*TokenJaccard(a, b)
}

// Dedup keeps the first item for every normalized title.
func Dedup(items []domain.NewsItem) []domain.NewsItem {
	seen := make(map[string]bool, len(items))
	out := make([]domain.NewsItem, 0, len(items))
	for _, item := range items {
		key := NormalizeTitle(item.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// ContainsFold reports whether needle occurs in haystack ignoring case.
func ContainsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func isNumber(tok string) bool {
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
