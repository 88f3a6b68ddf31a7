package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baseradar/baseradar/internal/scanner"
)

const rssFixture = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Fixture</title>
<item><title>Base chain TVL doubles</title><link>https://news.example/a</link>
  <description><![CDATA[<p>Activity on the <b>Base chain</b> keeps growing.</p>]]></description></item>
<item><title>Bitcoin ETF inflows</title><link>https://news.example/b</link>
  <description>Spot products see demand.</description></item>
<item><title>Superchain upgrade ships</title><link>https://news.example/c</link>
  <description>OP Stack chains move together.</description></item>
<item><title></title><link>https://news.example/d</link></item>
</channel></rss>`

func TestFeedSourceCrawl(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFixture))
	}))
	defer server.Close()

	opts := scanner.Options{Client: server.Client()}

	all, err := NewFeedSource("fixture", FeedSpec{URL: server.URL}, opts).Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 items, got %d", len(all))
	}
	if all[0].Summary != "Activity on the Base chain keeps growing." {
		t.Fatalf("unexpected summary %q", all[0].Summary)
	}
	if all[0].MobileURL != all[0].URL {
		t.Fatalf("mobile url should mirror url")
	}

	filtered, err := NewFeedSource("fixture", FeedSpec{URL: server.URL, Keywords: baseKeywords, Scan: 100}, opts).Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl error: %v", err)
	}
	if len(filtered) != 2 || filtered[0].Title != "Base chain TVL doubles" || filtered[1].Title != "Superchain upgrade ships" {
		t.Fatalf("unexpected filtered items %+v", filtered)
	}
}

func TestFeedSourceHTTPError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewFeedSource("fixture", FeedSpec{URL: server.URL}, scanner.Options{Client: server.Client()}).Crawl(context.Background())
	if err == nil || !strings.Contains(err.Error(), "503") {
		t.Fatalf("expected 503 error, got %v", err)
	}
}

const pageFixture = `<html><body>
<div class="news-card"><h3>Base network hits a new activity record</h3><a href="/news/1">read</a><p>base</p></div>
<div class="news-card"><h3>Base network hits a new activity record</h3><a href="/news/1b">dup</a></div>
<div class="news-card"><h3>Short</h3><a href="/news/2">base</a></div>
<div class="news-card"><h3>Solana validators upgrade client</h3><a href="/news/3">read</a></div>
<div class="sidebar"><h3>Base sidebar entry that is long</h3><a href="/x">x</a></div>
<article class="Post"><h2>Coinbase L2 onboarding grows</h2><a href="https://other.example/y">y</a></article>
</body></html>`

func TestPageSourceExtract(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageFixture))
	}))
	defer server.Close()

	src := NewPageSource("fixture", PageSpec{
		URL:         server.URL + "/news",
		Containers:  "article, div",
		ClassHints:  []string{"news", "post"},
		Keywords:    []string{"base", "coinbase l2"},
		MinTitleLen: 10,
	}, scanner.Options{Client: server.Client()})

	items, err := src.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", items)
	}
	if items[0].URL != server.URL+"/news/1" {
		t.Fatalf("relative url not resolved: %s", items[0].URL)
	}
	if items[1].Title != "Coinbase L2 onboarding grows" || items[1].URL != "https://other.example/y" {
		t.Fatalf("unexpected second item %+v", items[1])
	}
}

func TestPageSourceLinksMode(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<a href="/base/post-1">Building consumer apps onchain</a>
<a href="/eth/post-2">Ethereum roadmap explained in depth</a>
<a href="/p/3">Why the Superchain matters</a>
<a href="/p/4">base</a>
</body></html>`))
	}))
	defer server.Close()

	src := NewPageSource("mirror", PageSpec{
		URL:         server.URL,
		Containers:  "a[href]",
		Links:       true,
		Keywords:    []string{"base", "superchain"},
		MinTitleLen: 10,
	}, scanner.Options{Client: server.Client()})

	items, err := src.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl error: %v", err)
	}
	if len(items) != 2 || items[0].Title != "Building consumer apps onchain" || items[1].Title != "Why the Superchain matters" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestFallbackSource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/feed" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`<div class="post-item"><h2>Fallback headline</h2><a href="/p">p</a></div>`))
	}))
	defer server.Close()

	opts := scanner.Options{Client: server.Client()}
	src := NewFallbackSource("fixture", opts,
		NewFeedSource("fixture", FeedSpec{URL: server.URL + "/feed"}, opts),
		NewPageSource("fixture", PageSpec{URL: server.URL, Containers: "div", ClassHints: []string{"post"}}, opts),
	)
	items, err := src.Crawl(context.Background())
	if err != nil {
		t.Fatalf("Crawl error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Fallback headline" {
		t.Fatalf("unexpected items %+v", items)
	}

	broken := NewFallbackSource("fixture", opts,
		NewFeedSource("fixture", FeedSpec{URL: server.URL + "/feed"}, opts),
		NewFeedSource("fixture", FeedSpec{URL: server.URL + "/feed"}, opts),
	)
	if _, err := broken.Crawl(context.Background()); err == nil || !strings.Contains(err.Error(), "attempt 2") {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestRegisterPlatforms(t *testing.T) {
	t.Parallel()

	reg := scanner.NewRegistry()
	RegisterPlatforms(reg)

	ids := reg.IDs()
	if len(ids) != 15 {
		t.Fatalf("expected 15 platforms, got %d: %v", len(ids), ids)
	}
	for _, id := range ids {
		src, ok := reg.Get(id, scanner.Options{})
		if !ok || src.Name() != id {
			t.Fatalf("platform %s built %v", id, src)
		}
	}
}
