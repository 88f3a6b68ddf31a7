// Package httpclient builds the outbound HTTP client shared by all source
// adapters: browser-like headers, optional proxy and per-host throttling.
package httpclient

import (
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Options configures New.
type Options struct {
	Timeout           time.Duration
	ProxyURL          string
	UserAgent         string
	RequestsPerSecond float64
}

// New returns a client whose transport sets default headers and waits on a
// per-host token bucket before each request.
func New(opts Options) (*http.Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		base.Proxy = http.ProxyURL(proxy)
	}

	var rt http.RoundTripper = base
	if opts.RequestsPerSecond > 0 {
		rt = &throttledTransport{next: rt, limit: rate.Limit(opts.RequestsPerSecond), limiters: map[string]*rate.Limiter{}}
	}
	rt = &headerTransport{next: rt, userAgent: opts.UserAgent}

	return &http.Client{Transport: rt, Timeout: opts.Timeout}, nil
}

type headerTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	setDefault(req.Header, "User-Agent", t.userAgent)
	setDefault(req.Header, "Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	setDefault(req.Header, "Accept-Language", "en-US,en;q=0.9")
	setDefault(req.Header, "Cache-Control", "no-cache")
	return t.next.RoundTrip(req)
}

func setDefault(h http.Header, key, value string) {
	if value != "" && h.Get(key) == "" {
		h.Set(key, value)
	}
}

type throttledTransport struct {
	next  http.RoundTripper
	limit rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func (t *throttledTransport) limiter(host string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.limiters[host]
	if !ok {
		l = rate.NewLimiter(t.limit, 1)
		t.limiters[host] = l
	}
	return l
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter(req.URL.Host).Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("rate limit %s: %w", req.URL.Host, err)
	}
	return t.next.RoundTrip(req)
}
