package parser

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/scanner"
)

const defaultTitleSelector = "h1, h2, h3, h4, a"

// PageSpec describes how to scrape headlines out of an HTML page.
type PageSpec struct {
	URL string
	// Containers is a CSS selector for candidate blocks, e.g. "article, div".
	Containers string
	// ClassHints keep only containers whose class attribute contains one of the
	// fragments (case-insensitive). Empty keeps every container.
	ClassHints []string
	// TitleSelector picks the first matching element inside a container.
	TitleSelector string
	// Keywords keep containers whose text, title or link mentions one of them.
	Keywords []string
	// MinTitleLen drops titles that are not longer than this many characters.
	MinTitleLen int
	// Scan bounds how many containers are examined.
	Scan int
	// Links treats every matched container as an anchor: its text is the title
	// and its own href the link.
	Links bool
}

// PageSource scrapes one HTML page.
type PageSource struct {
	name   string
	spec   PageSpec
	client *http.Client
	logger *slog.Logger
}

var _ scanner.Source = (*PageSource)(nil)

// NewPageSource wires an HTTP client with a page definition.
func NewPageSource(name string, spec PageSpec, opts scanner.Options) *PageSource {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	if spec.TitleSelector == "" {
		spec.TitleSelector = defaultTitleSelector
	}
	if spec.Scan <= 0 {
		spec.Scan = 100
	}
	return &PageSource{name: name, spec: spec, client: client, logger: loggerOr(opts.Logger)}
}

// Name identifies the platform inside the registry.
func (p *PageSource) Name() string {
	return p.name
}

// Crawl fetches the page and extracts headlines from matching containers.
func (p *PageSource) Crawl(ctx context.Context) ([]domain.NewsItem, error) {
	doc, err := fetchDocument(ctx, p.client, p.spec.URL)
	if err != nil {
		p.logger.Warn("page crawl failed", "platform", p.name, "url", p.spec.URL, "error", err)
		return nil, fmt.Errorf("fetch page: %w", err)
	}

	base, _ := url.Parse(p.spec.URL)
	items := p.extract(doc, base)
	p.logger.Debug("page parsed", "platform", p.name, "kept", len(items))
	return items, nil
}

func (p *PageSource) extract(doc *goquery.Document, base *url.URL) []domain.NewsItem {
	var (
		items    []domain.NewsItem
		seen     = map[string]struct{}{}
		examined int
		keywords = lowerAll(p.spec.Keywords)
		hints    = lowerAll(p.spec.ClassHints)
	)

	doc.Find(p.spec.Containers).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !hasClassHint(sel, hints) {
			return true
		}
		if examined == p.spec.Scan {
			return false
		}
		examined++

		title, href, ok := p.titleAndLink(sel)
		if !ok {
			return true
		}

		haystack := sel.Text() + " " + title
		if p.spec.Links {
			haystack += " " + href
		}
		if !containsAny(haystack, keywords) {
			return true
		}

		if utf8.RuneCountInString(title) <= p.spec.MinTitleLen {
			return true
		}
		if _, dup := seen[title]; dup {
			return true
		}
		seen[title] = struct{}{}

		link := resolveURL(base, href)
		items = append(items, domain.NewsItem{Title: title, URL: link, MobileURL: link})
		return len(items) < scanner.MaxItems
	})

	return items
}

func (p *PageSource) titleAndLink(sel *goquery.Selection) (string, string, bool) {
	if p.spec.Links {
		href, ok := sel.Attr("href")
		title := collapse(sel.Text())
		return title, href, ok && title != ""
	}

	titleSel := sel.Find(p.spec.TitleSelector).First()
	linkSel := sel.Find("a[href]").First()
	if titleSel.Length() == 0 || linkSel.Length() == 0 {
		return "", "", false
	}
	href, _ := linkSel.Attr("href")
	title := collapse(titleSel.Text())
	return title, href, title != ""
}

func hasClassHint(sel *goquery.Selection, hints []string) bool {
	if len(hints) == 0 {
		return true
	}
	class, ok := sel.Attr("class")
	if !ok {
		return false
	}
	class = strings.ToLower(class)
	for _, h := range hints {
		if strings.Contains(class, h) {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
