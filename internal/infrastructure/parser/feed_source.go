package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/scanner"
)

// FeedSpec describes an RSS/Atom platform.
type FeedSpec struct {
	URL string
	// Keywords, when set, keep only entries whose title or description mentions
	// one of them; up to Scan entries are examined.
	Keywords []string
	Scan     int
}

// FeedSource crawls one RSS/Atom feed.
type FeedSource struct {
	name   string
	spec   FeedSpec
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Source = (*FeedSource)(nil)

// NewFeedSource wires an HTTP client with a feed definition.
func NewFeedSource(name string, spec FeedSpec, opts scanner.Options) *FeedSource {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &FeedSource{name: name, spec: spec, client: client, logger: loggerOr(opts.Logger)}
}

// Name identifies the platform inside the registry.
func (f *FeedSource) Name() string {
	return f.name
}

// Crawl downloads the feed and keeps up to scanner.MaxItems entries.
func (f *FeedSource) Crawl(ctx context.Context) ([]domain.NewsItem, error) {
	items, err := f.crawl(ctx)
	if err != nil {
		f.logger.Warn("feed crawl failed", "platform", f.name, "url", f.spec.URL, "error", err)
		return nil, err
	}
	return items, nil
}

func (f *FeedSource) crawl(ctx context.Context) ([]domain.NewsItem, error) {
	body, err := fetchBody(ctx, f.client, f.spec.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	scan := f.spec.Scan
	if scan <= 0 {
		scan = scanner.MaxItems
	}
	keywords := lowerAll(f.spec.Keywords)

	var items []domain.NewsItem
	for i, entry := range feed.Items {
		if i >= scan || len(items) == scanner.MaxItems {
			break
		}
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			continue
		}

		desc := entry.Description
		if desc == "" {
			desc = entry.Content
		}
		summary := cleanHTML(desc)

		if !containsAny(title+" "+desc, keywords) {
			continue
		}

		items = append(items, domain.NewsItem{
			Title:     title,
			URL:       link,
			MobileURL: link,
			Summary:   summary,
		})
	}

	f.logger.Debug("feed parsed", "platform", f.name, "entries", len(feed.Items), "kept", len(items))
	return items, nil
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}
