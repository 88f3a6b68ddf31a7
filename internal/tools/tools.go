// Package tools exposes the news engine as named, JSON-argument tool calls.
// Every call returns a Response; no error or panic escapes Dispatch.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ports"
	"github.com/baseradar/baseradar/internal/ranking"
	"github.com/baseradar/baseradar/internal/usecase"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope returned by every tool.
type Response struct {
	Status string     `json:"status"`
	Data   any        `json:"data,omitempty"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// ErrorBody describes a failed call.
type ErrorBody struct {
	Code       domain.Code `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Info names and describes one tool.
type Info struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type handler func(ctx context.Context, args json.RawMessage) (any, error)

type tool struct {
	description string
	run         handler
}

// Options configure a Toolset.
type Options struct {
	Corpus   ports.Corpus
	Pipeline *usecase.Pipeline
	Config   config.Config
	Logger   *slog.Logger
	Version  string
	Now      func() time.Time
}

// Toolset is the handle every tool call runs against. Build one at startup
// and share it; it is safe for concurrent use.
type Toolset struct {
	corpus   ports.Corpus
	pipeline *usecase.Pipeline
	cfg      config.Config
	logger   *slog.Logger
	version  string
	now      func() time.Time
	started  time.Time
	known    map[string]bool
	tools    map[string]tool
}

// New builds the toolset.
func New(opts Options) *Toolset {
	t := &Toolset{
		corpus:   opts.Corpus,
		pipeline: opts.Pipeline,
		cfg:      opts.Config,
		logger:   opts.Logger,
		version:  opts.Version,
		now:      opts.Now,
		known:    map[string]bool{},
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	if t.now == nil {
		t.now = time.Now
	}
	if t.version == "" {
		t.version = "dev"
	}
	for _, id := range t.cfg.PlatformIDs() {
		t.known[id] = true
	}
	t.started = t.clock()

	t.tools = map[string]tool{
		"get_latest_news":             {"Latest crawl batch per platform from today's corpus.", t.getLatestNews},
		"get_news_by_date":            {"News captured on one day; accepts natural language dates.", t.getNewsByDate},
		"get_trending_topics":         {"Configured keyword groups ranked by matches in the latest batch or the whole day.", t.getTrendingTopics},
		"search_news":                 {"Keyword, fuzzy or entity search over a date range.", t.searchNews},
		"search_related_news_history": {"Past news related to a reference text within a preset window.", t.searchRelatedHistory},
		"analyze_topic_trend":         {"Trend, lifecycle, virality or short-term prediction of a topic.", t.analyzeTopicTrend},
		"analyze_data_insights":       {"Platform comparison, platform activity or keyword co-occurrence.", t.analyzeDataInsights},
		"analyze_sentiment":           {"Sentiment distribution of deduplicated headlines weighted by heat.", t.analyzeSentiment},
		"find_similar_news":           {"Headlines from the last 7 days similar to a reference title.", t.findSimilarNews},
		"generate_summary_report":     {"Daily or weekly Markdown report.", t.generateSummaryReport},
		"trigger_crawl":               {"Crawl platforms now, optionally saving the batch.", t.triggerCrawl},
		"get_current_config":          {"Current configuration by section.", t.getCurrentConfig},
		"get_system_status":           {"Version, corpus statistics and last crawl.", t.getSystemStatus},
	}
	return t
}

// List returns every tool sorted by name.
func (t *Toolset) List() []Info {
	out := make([]Info, 0, len(t.tools))
	for name, tl := range t.tools {
		out = append(out, Info{Name: name, Description: tl.description})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch runs the named tool. Failures, including panics, come back as an
// error Response.
func (t *Toolset) Dispatch(ctx context.Context, name string, args json.RawMessage) (resp Response) {
	tl, ok := t.tools[name]
	if !ok {
		return errorResponse(&domain.Error{
			Code:       domain.CodeUnknownTool,
			Message:    fmt.Sprintf("unknown tool %q", name),
			Suggestion: "call GET /api/v1/tools for the list of tools",
		})
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("tool panicked", "tool", name, "panic", r)
			resp = errorResponse(&domain.Error{Code: domain.CodeInternal, Message: fmt.Sprintf("internal error: %v", r)})
		}
	}()

	data, err := tl.run(ctx, args)
	if err != nil {
		level := slog.LevelWarn
		if domain.CodeOf(err) == domain.CodeInternal || domain.CodeOf(err) == domain.CodeCorpusUnavailable {
			level = slog.LevelError
		}
		t.logger.Log(ctx, level, "tool failed", "tool", name, "error", err)
		return errorResponse(err)
	}
	t.logger.Debug("tool finished", "tool", name, "duration", time.Since(start))
	return Response{Status: StatusSuccess, Data: data}
}

func errorResponse(err error) Response {
	body := &ErrorBody{Code: domain.CodeInternal, Message: err.Error()}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Code = de.Code
		body.Message = de.Message
		body.Suggestion = de.Suggestion
		if de.Err != nil {
			body.Message = fmt.Sprintf("%s: %v", de.Message, de.Err)
		}
	}
	return Response{Status: StatusError, Error: body}
}

// decode reads JSON args into v. Empty input leaves v at its defaults.
func decode(args json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &domain.Error{
			Code:       domain.CodeInvalidParameter,
			Message:    fmt.Sprintf("invalid arguments: %v", err),
			Suggestion: "pass a JSON object with the documented argument names",
		}
	}
	return nil
}

func (t *Toolset) clock() time.Time {
	return t.now().In(t.cfg.Location())
}

func (t *Toolset) loc() *time.Location {
	return t.cfg.Location()
}

func (t *Toolset) weights() ranking.Weights {
	if t.pipeline == nil {
		return ranking.DefaultWeights
	}
	return t.pipeline.Weights()
}
