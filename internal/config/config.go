package config

import (
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "UTC"
	configPathEnv     = "BASERADAR_CONFIG"
	storageDriverEnv  = "BASERADAR_STORAGE_DRIVER"
	storageDSNEnv     = "BASERADAR_STORAGE_DSN"
	proxyURLEnv       = "BASERADAR_PROXY_URL"
	logLevelEnv       = "BASERADAR_LOG_LEVEL"
	serverAddrEnv     = "BASERADAR_SERVER_ADDR"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Crawler       CrawlerConfig      `yaml:"crawler"`
	Platforms     []PlatformConfig   `yaml:"platforms"`
	Keywords      KeywordsConfig     `yaml:"keywords"`
	Weights       WeightsConfig      `yaml:"weights"`
	Storage       StorageConfig      `yaml:"storage"`
	Server        ServerConfig       `yaml:"server"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CrawlerConfig tunes outbound fetching.
type CrawlerConfig struct {
	TimeoutSeconds    int     `yaml:"timeoutSeconds"`
	ProxyURL          string  `yaml:"proxyUrl"`
	UserAgent         string  `yaml:"userAgent"`
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	Concurrency       int     `yaml:"concurrency"`
}

// Timeout is the per-source crawl deadline.
func (c CrawlerConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PlatformConfig maps a platform id to its display name.
type PlatformConfig struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// WeightsConfig drives the heat weight of ranked news.
type WeightsConfig struct {
	Rank      float64 `yaml:"rank" json:"rank"`
	Frequency float64 `yaml:"frequency" json:"frequency"`
	Recency   float64 `yaml:"recency" json:"recency"`
}

// StorageConfig describes where crawl batches are kept.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// ServerConfig configures the HTTP tool transport.
type ServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// SchedulerConfig defines when the crawl job should run.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	BaseURL  string `yaml:"baseUrl"`
}

// Enabled reports whether both token and chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// Location is the timezone used to assign items to calendar days.
func (c Config) Location() *time.Location {
	return c.Scheduler.Location()
}

// PlatformIDs lists configured platform ids in order.
func (c Config) PlatformIDs() []string {
	ids := make([]string, 0, len(c.Platforms))
	for _, p := range c.Platforms {
		ids = append(ids, p.ID)
	}
	return ids
}

// PlatformName returns the display name of id, or id itself when unknown.
func (c Config) PlatformName(id string) string {
	for _, p := range c.Platforms {
		if p.ID == id && p.Name != "" {
			return p.Name
		}
	}
	return id
}

// Load reads YAML configuration pointed to by BASERADAR_CONFIG (if present)
// and applies environment overrides.
func Load() Config {
	return LoadFile(os.Getenv(configPathEnv))
}

// LoadFile is Load with an explicit path; an empty path yields defaults.
func LoadFile(path string) Config {
	cfg := defaultConfig()

	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	cfg.loadFrequencyWords()

	if len(cfg.Platforms) == 0 {
		cfg.Platforms = defaultConfig().Platforms
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storageDriverEnv); v != "" {
		c.Storage.Driver = v
	}

	if v := os.Getenv(storageDSNEnv); v != "" {
		c.Storage.DSN = v
	}

	if v := os.Getenv(proxyURLEnv); v != "" {
		c.Crawler.ProxyURL = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func (c *Config) loadFrequencyWords() {
	if c.Keywords.FrequencyFile == "" {
		return
	}
	f, err := os.Open(c.Keywords.FrequencyFile)
	if err != nil {
		log.Printf("config: cannot read %s: %v (keeping inline keyword groups)", c.Keywords.FrequencyFile, err)
		return
	}
	defer f.Close()

	groups, err := ParseFrequencyWords(f)
	if err != nil {
		log.Printf("config: cannot parse %s: %v (keeping inline keyword groups)", c.Keywords.FrequencyFile, err)
		return
	}
	c.Keywords.Groups = groups
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Crawler.TimeoutSeconds > 0 {
		base.Crawler.TimeoutSeconds = override.Crawler.TimeoutSeconds
	}
	if override.Crawler.ProxyURL != "" {
		base.Crawler.ProxyURL = override.Crawler.ProxyURL
	}
	if override.Crawler.UserAgent != "" {
		base.Crawler.UserAgent = override.Crawler.UserAgent
	}
	if override.Crawler.RequestsPerSecond > 0 {
		base.Crawler.RequestsPerSecond = override.Crawler.RequestsPerSecond
	}
	if override.Crawler.Concurrency > 0 {
		base.Crawler.Concurrency = override.Crawler.Concurrency
	}

	if len(override.Platforms) > 0 {
		base.Platforms = override.Platforms
	}

	if override.Keywords.FrequencyFile != "" {
		base.Keywords.FrequencyFile = override.Keywords.FrequencyFile
	}
	if len(override.Keywords.Groups) > 0 {
		base.Keywords.Groups = override.Keywords.Groups
	}

	if override.Weights != (WeightsConfig{}) {
		base.Weights = override.Weights
	}

	if override.Storage.Driver != "" {
		base.Storage.Driver = override.Storage.Driver
	}
	if override.Storage.DSN != "" {
		base.Storage.DSN = override.Storage.DSN
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if len(override.Server.CORSOrigins) > 0 {
		base.Server.CORSOrigins = override.Server.CORSOrigins
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.BaseURL != "" {
		base.Notifications.Telegram.BaseURL = override.Notifications.Telegram.BaseURL
	}

	return base
}

// Default returns the built-in configuration without reading files or env.
func Default() Config {
	cfg := defaultConfig()
	cfg.bindTimezone()
	return cfg
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Crawler: CrawlerConfig{
			TimeoutSeconds:    15,
			UserAgent:         defaultUserAgent,
			RequestsPerSecond: 2,
			Concurrency:       8,
		},
		Platforms: []PlatformConfig{
			{ID: "coindesk", Name: "CoinDesk"},
			{ID: "cointelegraph", Name: "Cointelegraph"},
			{ID: "decrypt", Name: "Decrypt"},
			{ID: "beincrypto", Name: "BeInCrypto"},
			{ID: "coingape", Name: "CoinGape"},
			{ID: "cryptonews", Name: "Cryptonews"},
			{ID: "theblock", Name: "The Block"},
			{ID: "coinpedia", Name: "Coinpedia"},
			{ID: "base-blog", Name: "Base Blog"},
			{ID: "mirror-xyz", Name: "Mirror"},
			{ID: "base-mirror", Name: "Base on Mirror"},
			{ID: "defillama", Name: "DefiLlama"},
			{ID: "messari", Name: "Messari"},
			{ID: "airdrops-io", Name: "Airdrops.io"},
			{ID: "cryptoslate", Name: "CryptoSlate"},
		},
		Keywords: KeywordsConfig{Groups: defaultKeywordGroups()},
		Weights:  WeightsConfig{Rank: 0.6, Frequency: 0.3, Recency: 0.1},
		Storage:  StorageConfig{Driver: "sqlite", DSN: "file:baseradar.db?_pragma=busy_timeout(5000)"},
		Server:   ServerConfig{Addr: ":3333", CORSOrigins: []string{"*"}},
		Scheduler: SchedulerConfig{
			CronExpression: "0 */2 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BaseURL: "https://api.telegram.org"},
		},
	}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
