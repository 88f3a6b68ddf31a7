// Package report builds daily and weekly summaries of the corpus.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/dates"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/insights"
	"github.com/baseradar/baseradar/internal/ranking"
)

// Type selects the report period.
type Type string

const (
	Daily  Type = "daily"
	Weekly Type = "weekly"
)

const (
	topKeywords = 10
	topNews     = 10
)

// DefaultRange is 1 day for daily reports and 7 for weekly ones, ending today.
func DefaultRange(t Type, now time.Time) (domain.DateRange, error) {
	switch t {
	case Daily, "":
		return dates.Trailing(1, now), nil
	case Weekly:
		return dates.Trailing(7, now), nil
	default:
		return domain.DateRange{}, domain.InvalidParameter(
			fmt.Sprintf("unknown report_type %q", t), "use daily or weekly")
	}
}

// Input is everything Generate needs besides the items.
type Input struct {
	Type         Type
	Range        domain.DateRange
	Groups       []config.KeywordGroup
	Weights      ranking.Weights
	PlatformName func(id string) string
	Now          time.Time
	Location     *time.Location
}

// Report is a structured summary plus its Markdown rendering.
type Report struct {
	Type        Type                        `json:"type"`
	Title       string                      `json:"title"`
	Start       string                      `json:"start"`
	End         string                      `json:"end"`
	GeneratedAt time.Time                   `json:"generatedAt"`
	TotalItems  int                         `json:"totalItems"`
	Keywords    []insights.KeywordTrend     `json:"keywords"`
	Platforms   []insights.PlatformActivity `json:"platforms"`
	TopNews     []insights.ScoredItem       `json:"topNews"`
	Sentiment   insights.Distribution       `json:"sentiment"`
	Overall     insights.Polarity           `json:"overall"`
	Markdown    string                      `json:"markdown"`
}

// Generate summarizes items, which must already be limited to in.Range.
func Generate(items []domain.NewsItem, in Input) (Report, error) {
	if in.Type == "" {
		in.Type = Daily
	}
	if in.Type != Daily && in.Type != Weekly {
		return Report{}, domain.InvalidParameter(
			fmt.Sprintf("unknown report_type %q", in.Type), "use daily or weekly")
	}
	if in.Location == nil {
		in.Location = time.UTC
	}
	if in.PlatformName == nil {
		in.PlatformName = func(id string) string { return id }
	}

	sentiment := insights.AnalyzeSentiment(items, insights.SentimentOptions{
		Weights:      in.Weights,
		SortByWeight: true,
		Limit:        topNews,
		Now:          in.Now,
	})

	r := Report{
		Type:        in.Type,
		Start:       in.Range.Start.Format(domain.DayLayout),
		End:         in.Range.End.Format(domain.DayLayout),
		GeneratedAt: in.Now,
		TotalItems:  len(items),
		Keywords:    insights.TrendingKeywords(items, in.Groups, topKeywords),
		Platforms:   insights.Activity(items, in.Location),
		TopNews:     sentiment.Items,
		Sentiment:   sentiment.Distribution,
		Overall:     sentiment.Overall,
	}
	if in.Type == Weekly {
		r.Title = fmt.Sprintf("BaseRadar weekly report %s to %s", r.Start, r.End)
	} else {
		r.Title = fmt.Sprintf("BaseRadar daily report %s", r.End)
	}
	r.Markdown = render(r, in.PlatformName)
	return r, nil
}

func render(r Report, name func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", r.Title)
	fmt.Fprintf(&b, "%d headlines from %d platforms, overall sentiment %s\n", r.TotalItems, len(r.Platforms), r.Overall)

	if len(r.Keywords) > 0 {
		b.WriteString("\n*Trending keywords*\n")
		for i, kw := range r.Keywords {
			fmt.Fprintf(&b, "%d. %s (%d)\n", i+1, kw.Keyword, kw.Count)
			for _, title := range kw.Titles {
				fmt.Fprintf(&b, "   - %s\n", title)
			}
		}
	}

	if len(r.TopNews) > 0 {
		b.WriteString("\n*Top news*\n")
		for i, item := range r.TopNews {
			fmt.Fprintf(&b, "%d. %s [%s] heat %.1f\n", i+1, item.Title, name(item.Platform), item.Weight)
			if item.URL != "" {
				fmt.Fprintf(&b, "   %s\n", item.URL)
			}
		}
	}

	if len(r.Platforms) > 0 {
		b.WriteString("\n*Platform activity*\n")
		for _, p := range r.Platforms {
			fmt.Fprintf(&b, "- %s: %d items over %d days, busiest %02d:00\n", name(p.Platform), p.Count, p.ActiveDays, p.BusiestHour)
		}
	}

	fmt.Fprintf(&b, "\n*Sentiment*: %d positive, %d negative, %d neutral\n",
		r.Sentiment.Positive, r.Sentiment.Negative, r.Sentiment.Neutral)
	return b.String()
}
