package domain

import "time"

// DayLayout is the calendar-day format used across storage and tool arguments.
const DayLayout = "2006-01-02"

// NewsItem is one headline captured from a platform during a crawl batch.
type NewsItem struct {
	Title      string    `json:"title"`
	URL        string    `json:"url,omitempty"`
	MobileURL  string    `json:"mobileUrl,omitempty"`
	Platform   string    `json:"platform"`
	Rank       int       `json:"rank"`
	Summary    string    `json:"summary,omitempty"`
	CapturedAt time.Time `json:"capturedAt"`
}

// Day returns the calendar day the item belongs to, in the given location.
func (n NewsItem) Day(loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return n.CapturedAt.In(loc).Format(DayLayout)
}

// WithoutLinks strips URL fields, used when callers ask to save tokens.
func (n NewsItem) WithoutLinks() NewsItem {
	n.URL = ""
	n.MobileURL = ""
	return n
}

// SourceStatus is the outcome of crawling one platform.
type SourceStatus string

const (
	StatusSuccess SourceStatus = "success"
	StatusFailure SourceStatus = "failure"
)

// SourceResult carries either the items of a platform or the reason it failed.
type SourceResult struct {
	Platform string       `json:"platform"`
	Status   SourceStatus `json:"status"`
	Items    []NewsItem   `json:"items,omitempty"`
	Error    string       `json:"error,omitempty"`
	Code     Code         `json:"code,omitempty"`
}

// OK reports whether the crawl succeeded.
func (r SourceResult) OK() bool {
	return r.Status == StatusSuccess
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Days lists every day in the range, oldest first.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Len is the number of days covered.
func (r DateRange) Len() int {
	return len(r.Days())
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	return !day.Before(r.Start) && !day.After(r.End)
}

func (r DateRange) String() string {
	return r.Start.Format(DayLayout) + ".." + r.End.Format(DayLayout)
}

// FrequencyPoint is the number of matching items on one day.
type FrequencyPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// SimilarityMatch pairs an item with its similarity to a reference text.
type SimilarityMatch struct {
	Item  NewsItem `json:"item"`
	Score float64  `json:"score"`
}
