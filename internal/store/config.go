package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Bot struct {
		Prefix      string `yaml:"prefix"`
		Description string `yaml:"description"`
	} `yaml:"bot"`
	Cache struct {
		Backend  string `yaml:"backend"` // SQLITE, FILE or MEMORY
		Path     string `yaml:"path"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"cache"`
	Lookup struct {
		Provider       string `yaml:"provider"` // YAHOO, CSV or KITE
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		CSV            struct {
			URL    string `yaml:"url"`
			Format string `yaml:"format"`
		} `yaml:"csv"`
		Kite struct {
			Exchange string `yaml:"exchange"`
		} `yaml:"kite"`
	} `yaml:"lookup"`
	News struct {
		Source          string         `yaml:"source"` // CLUSTERS, RSS or SCRAPE
		URL             string         `yaml:"url"`
		MaxCandidates   int            `yaml:"max_candidates"`
		ExcludedSources []string       `yaml:"excluded_sources"`
		TimeoutSeconds  int            `yaml:"timeout_seconds"`
		ScrapeSources   []ScrapeSource `yaml:"scrape_sources"`
	} `yaml:"news"`
	Sentiment struct {
		Provider    string  `yaml:"provider"` // LEXICON, OPENAI, CLAUDE or NONE
		LexiconPath string  `yaml:"lexicon_path"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"sentiment"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
}

// ScrapeSource describes a news site scraped with CSS selectors.
type ScrapeSource struct {
	Name       string `yaml:"name"`
	BaseURL    string `yaml:"base_url"`
	SearchPath string `yaml:"search_path"` // e.g. "/quote/{symbol}/news"
	Container  string `yaml:"container"`
	Title      string `yaml:"title"`
	Link       string `yaml:"link"`
}

// CacheTTL is the configured freshness window of the resolution cache.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLHours) * time.Hour
}

func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Lookup.TimeoutSeconds) * time.Second
}

func (c *Config) NewsTimeout() time.Duration {
	return time.Duration(c.News.TimeoutSeconds) * time.Second
}

func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "SQLITE", "FILE", "MEMORY":
	default:
		return fmt.Errorf("invalid cache.backend '%s': must be 'SQLITE', 'FILE' or 'MEMORY'", c.Cache.Backend)
	}
	if c.Cache.TTLHours <= 0 {
		return fmt.Errorf("cache.ttl_hours must be positive, got %d", c.Cache.TTLHours)
	}
	switch c.Lookup.Provider {
	case "YAHOO", "KITE":
	case "CSV":
		if c.Lookup.CSV.URL == "" {
			return errors.New("lookup.csv.url is required for the CSV provider")
		}
	default:
		return fmt.Errorf("invalid lookup.provider '%s': must be 'YAHOO', 'CSV' or 'KITE'", c.Lookup.Provider)
	}
	switch c.News.Source {
	case "CLUSTERS", "RSS":
		if c.News.URL == "" {
			return fmt.Errorf("news.url is required for the %s source", c.News.Source)
		}
	case "SCRAPE":
		if len(c.News.ScrapeSources) == 0 {
			return errors.New("news.scrape_sources cannot be empty for the SCRAPE source")
		}
	default:
		return fmt.Errorf("invalid news.source '%s': must be 'CLUSTERS', 'RSS' or 'SCRAPE'", c.News.Source)
	}
	if c.News.MaxCandidates < 0 {
		return fmt.Errorf("news.max_candidates cannot be negative, got %d", c.News.MaxCandidates)
	}
	switch c.Sentiment.Provider {
	case "LEXICON", "OPENAI", "CLAUDE", "NONE":
	default:
		return fmt.Errorf("invalid sentiment.provider '%s': must be 'LEXICON', 'OPENAI', 'CLAUDE' or 'NONE'", c.Sentiment.Provider)
	}
	if strings.TrimSpace(c.Bot.Prefix) == "" {
		return errors.New("bot.prefix cannot be empty")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseConfig(b)
}

// ParseConfig decodes YAML, fills defaults, applies environment overrides and validates.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

// Default returns a configuration that works without a config file.
func Default() *Config {
	var c Config
	c.applyDefaults()
	c.applyEnv()
	return &c
}

func (c *Config) applyDefaults() {
	if c.Bot.Prefix == "" {
		c.Bot.Prefix = "!"
	}
	if c.Bot.Description == "" {
		c.Bot.Description = "ticker-bot resolves tickers and finds the news behind the move"
	}

	c.Cache.Backend = strings.ToUpper(c.Cache.Backend)
	if c.Cache.Backend == "" {
		c.Cache.Backend = "SQLITE"
	}
	if c.Cache.TTLHours == 0 {
		c.Cache.TTLHours = 24
	}
	if c.Cache.Path == "" {
		c.Cache.Path = defaultCachePath(c.Cache.Backend)
	}

	c.Lookup.Provider = strings.ToUpper(c.Lookup.Provider)
	if c.Lookup.Provider == "" {
		c.Lookup.Provider = "YAHOO"
	}
	if c.Lookup.TimeoutSeconds == 0 {
		c.Lookup.TimeoutSeconds = 10
	}
	if c.Lookup.CSV.Format == "" {
		c.Lookup.CSV.Format = "n"
	}
	if c.Lookup.Kite.Exchange == "" {
		c.Lookup.Kite.Exchange = "NSE"
	}

	c.News.Source = strings.ToUpper(c.News.Source)
	if c.News.Source == "" {
		c.News.Source = "RSS"
	}
	if c.News.URL == "" && c.News.Source == "RSS" {
		c.News.URL = "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US"
	}
	if c.News.MaxCandidates == 0 {
		c.News.MaxCandidates = 10
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 15
	}

	c.Sentiment.Provider = strings.ToUpper(c.Sentiment.Provider)
	if c.Sentiment.Provider == "" {
		c.Sentiment.Provider = "LEXICON"
	}
	if c.Sentiment.MaxTokens == 0 {
		c.Sentiment.MaxTokens = 64
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
}

// applyEnv lets deployments override file settings without editing YAML.
func (c *Config) applyEnv() {
	if v := os.Getenv("TICKERBOT_CACHE_PATH"); v != "" {
		c.Cache.Path = v
	}
	if v := os.Getenv("TICKERBOT_CACHE_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Cache.TTLHours = n
		}
	}
	if v := os.Getenv("TICKERBOT_LOOKUP_PROVIDER"); v != "" {
		c.Lookup.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("TICKERBOT_SENTIMENT_PROVIDER"); v != "" {
		c.Sentiment.Provider = strings.ToUpper(v)
	}
	if v := os.Getenv("TICKERBOT_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
}

func defaultCachePath(backend string) string {
	switch backend {
	case "SQLITE":
		return filepath.Join(xdg.CacheHome, "ticker-bot", "company_cache.db")
	case "FILE":
		return filepath.Join(xdg.CacheHome, "ticker-bot", "company_cache")
	default:
		return ""
	}
}
