package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// KeywordsConfig lists the interest keyword groups counted by trending topics
// and reports.
type KeywordsConfig struct {
	FrequencyFile string         `yaml:"frequencyFile" json:"frequencyFile,omitempty"`
	Groups        []KeywordGroup `yaml:"groups" json:"groups"`
}

// KeywordGroup matches a title when it contains any of Words, all of Required
// and none of Excluded.
type KeywordGroup struct {
	Words    []string `yaml:"words" json:"words"`
	Required []string `yaml:"required" json:"required,omitempty"`
	Excluded []string `yaml:"excluded" json:"excluded,omitempty"`
}

// Label names the group by its words.
func (g KeywordGroup) Label() string {
	if len(g.Words) > 0 {
		return strings.Join(g.Words, " ")
	}
	return strings.Join(g.Required, " ")
}

// Match reports whether text satisfies the group, ignoring case.
func (g KeywordGroup) Match(text string) bool {
	lower := strings.ToLower(text)
	for _, w := range g.Excluded {
		if strings.Contains(lower, strings.ToLower(w)) {
			return false
		}
	}
	for _, w := range g.Required {
		if !strings.Contains(lower, strings.ToLower(w)) {
			return false
		}
	}
	if len(g.Words) == 0 {
		return len(g.Required) > 0
	}
	for _, w := range g.Words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}

// ParseFrequencyWords reads the frequency_words.txt format: groups separated by
// blank lines, one word per line, "+" marks a required word and "!" an excluded
// one. Lines starting with "#" are comments.
func ParseFrequencyWords(r io.Reader) ([]KeywordGroup, error) {
	var (
		groups  []KeywordGroup
		current KeywordGroup
	)
	flush := func() {
		if len(current.Words) > 0 || len(current.Required) > 0 {
			groups = append(groups, current)
		}
		current = KeywordGroup{}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "+"):
			if w := strings.TrimSpace(line[1:]); w != "" {
				current.Required = append(current.Required, w)
			}
		case strings.HasPrefix(line, "!"):
			if w := strings.TrimSpace(line[1:]); w != "" {
				current.Excluded = append(current.Excluded, w)
			}
		default:
			current.Words = append(current.Words, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan frequency words: %w", err)
	}
	flush()
	return groups, nil
}

func defaultKeywordGroups() []KeywordGroup {
	return []KeywordGroup{
		{Words: []string{"base chain", "base network", "coinbase l2"}},
		{Words: []string{"superchain", "optimism", "op stack"}},
		{Words: []string{"airdrop"}},
		{Words: []string{"bitcoin", "btc"}},
		{Words: []string{"ethereum", "eth"}},
		{Words: []string{"etf"}},
		{Words: []string{"stablecoin", "usdc", "usdt"}},
		{Words: []string{"defi"}},
		{Words: []string{"sec", "regulation"}},
		{Words: []string{"hack", "exploit"}},
	}
}
