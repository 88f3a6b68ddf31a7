package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/baseradar/baseradar/internal/config"
	"github.com/baseradar/baseradar/internal/domain"
	"github.com/baseradar/baseradar/internal/ports"
	"github.com/baseradar/baseradar/internal/usecase"
)

var errPipelineMissing = errors.New("pipeline not configured")

type crawlArgs struct {
	Platforms   []string `json:"platforms"`
	SaveToLocal bool     `json:"save_to_local"`
	IncludeURL  bool     `json:"include_url"`
}

type crawledPlatform struct {
	Platform string `json:"platform"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
}

type failedPlatform struct {
	Platform string      `json:"platform"`
	Name     string      `json:"name"`
	Code     domain.Code `json:"code,omitempty"`
	Error    string      `json:"error"`
}

type crawlResult struct {
	BatchID   string            `json:"batchId"`
	Day       string            `json:"day"`
	Success   []crawledPlatform `json:"successfulPlatforms"`
	Failed    []failedPlatform  `json:"failedPlatforms"`
	TotalNews int               `json:"totalNews"`
	Saved     bool              `json:"saved"`
	SaveError string            `json:"saveError,omitempty"`
	News      []domain.NewsItem `json:"news"`
}

// triggerCrawl passes unknown ids through; they come back as failed platforms.
func (t *Toolset) triggerCrawl(ctx context.Context, raw json.RawMessage) (any, error) {
	var args crawlArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	if t.pipeline == nil {
		return nil, errPipelineMissing
	}

	out, err := t.pipeline.Crawl(ctx, args.Platforms, args.SaveToLocal)
	if err != nil {
		return nil, fmt.Errorf("crawl: %w", err)
	}

	res := crawlResult{
		BatchID:   out.BatchID,
		Day:       out.Day,
		Success:   []crawledPlatform{},
		Failed:    []failedPlatform{},
		TotalNews: out.Items,
		Saved:     args.SaveToLocal && out.SaveError == "",
		SaveError: out.SaveError,
	}
	var news []domain.NewsItem
	for _, r := range out.Results {
		name := t.cfg.PlatformName(r.Platform)
		if !r.OK() {
			res.Failed = append(res.Failed, failedPlatform{Platform: r.Platform, Name: name, Code: r.Code, Error: r.Error})
			continue
		}
		res.Success = append(res.Success, crawledPlatform{Platform: r.Platform, Name: name, Count: len(r.Items)})
		news = append(news, r.Items...)
	}
	res.News = presentItems(news, args.IncludeURL)
	return res, nil
}

// Config sections.
const (
	sectionAll          = "all"
	sectionCrawler      = "crawler"
	sectionNotification = "notification"
	sectionKeywords     = "keywords"
	sectionWeights      = "weights"
)

type configArgs struct {
	Section string `json:"section"`
}

type crawlerView struct {
	TimeoutSeconds    int                     `json:"timeoutSeconds"`
	ProxyEnabled      bool                    `json:"proxyEnabled"`
	RequestsPerSecond float64                 `json:"requestsPerSecond"`
	Concurrency       int                     `json:"concurrency"`
	Platforms         []config.PlatformConfig `json:"platforms"`
}

type notificationView struct {
	TelegramEnabled bool   `json:"telegramEnabled"`
	TelegramChatID  string `json:"telegramChatId,omitempty"`
	TelegramToken   string `json:"telegramToken,omitempty"`
	Schedule        string `json:"schedule"`
	ScheduleEnabled bool   `json:"scheduleEnabled"`
	Timezone        string `json:"timezone"`
}

type configView struct {
	Crawler      *crawlerView           `json:"crawler,omitempty"`
	Notification *notificationView      `json:"notification,omitempty"`
	Keywords     *config.KeywordsConfig `json:"keywords,omitempty"`
	Weights      *config.WeightsConfig  `json:"weights,omitempty"`
}

func (t *Toolset) getCurrentConfig(_ context.Context, raw json.RawMessage) (any, error) {
	var args configArgs
	if err := decode(raw, &args); err != nil {
		return nil, err
	}
	section := args.Section
	if section == "" {
		section = sectionAll
	}

	var view configView
	all := section == sectionAll
	switch section {
	case sectionAll, sectionCrawler, sectionNotification, sectionKeywords, sectionWeights:
	default:
		return nil, domain.InvalidParameter(fmt.Sprintf("unknown section %q", section),
			"use all, crawler, notification, keywords or weights")
	}

	if all || section == sectionCrawler {
		c := t.cfg.Crawler
		view.Crawler = &crawlerView{
			TimeoutSeconds:    int(c.Timeout() / time.Second),
			ProxyEnabled:      c.ProxyURL != "",
			RequestsPerSecond: c.RequestsPerSecond,
			Concurrency:       c.Concurrency,
			Platforms:         t.cfg.Platforms,
		}
	}
	if all || section == sectionNotification {
		tg := t.cfg.Notifications.Telegram
		view.Notification = &notificationView{
			TelegramEnabled: tg.Enabled(),
			TelegramChatID:  tg.ChatID,
			TelegramToken:   redact(tg.BotToken),
			Schedule:        t.cfg.Scheduler.CronExpression,
			ScheduleEnabled: t.cfg.Scheduler.Enabled,
			Timezone:        t.loc().String(),
		}
	}
	if all || section == sectionKeywords {
		kw := t.cfg.Keywords
		view.Keywords = &kw
	}
	if all || section == sectionWeights {
		w := config.WeightsConfig(t.weights())
		view.Weights = &w
	}
	return view, nil
}

// redact keeps the last four characters of a secret.
func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

type systemStatus struct {
	Version   string                `json:"version"`
	StartedAt time.Time             `json:"startedAt"`
	Uptime    string                `json:"uptime"`
	Platforms []string              `json:"platforms"`
	Corpus    *ports.Stats          `json:"corpus,omitempty"`
	CorpusErr string                `json:"corpusError,omitempty"`
	LastCrawl *usecase.CrawlOutcome `json:"lastCrawl,omitempty"`
}

func (t *Toolset) getSystemStatus(ctx context.Context, raw json.RawMessage) (any, error) {
	if err := decode(raw, &struct{}{}); err != nil {
		return nil, err
	}
	now := t.clock()
	status := systemStatus{
		Version:   t.version,
		StartedAt: t.started,
		Uptime:    now.Sub(t.started).Round(time.Second).String(),
		Platforms: t.cfg.PlatformIDs(),
	}

	switch c := t.corpus.(type) {
	case nil:
		status.CorpusErr = "corpus not configured"
	case ports.CorpusStats:
		stats, err := c.Stats(ctx)
		if err != nil {
			status.CorpusErr = err.Error()
		} else {
			status.Corpus = &stats
		}
	}

	if t.pipeline != nil {
		if last, ok := t.pipeline.LastCrawl(); ok {
			status.LastCrawl = &last
		}
	}
	return status, nil
}
