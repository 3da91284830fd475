package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"DrawdownSentinel/internal/cache"
	"DrawdownSentinel/internal/collector"
	"DrawdownSentinel/internal/model"
	"DrawdownSentinel/internal/strategy"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

const (
	DefaultPath = "configs/config.yaml"

	MinRefreshInterval = 3 * time.Second
	MaxRefreshInterval = 120 * time.Second

	ProviderYahoo    = "yahoo"
	ProviderVsTrader = "vstrader"
	ProviderMock     = "mock"
)

// DefaultInstruments is the ticker set shown when none is configured.
var DefaultInstruments = []string{"QQQ", "SMH", "VGT", "IYW"}

// Config holds all application configuration.
type Config struct {
	Instruments       []string            `yaml:"instruments"`
	Thresholds        strategy.Thresholds `yaml:"thresholds"`
	RefreshInterval   time.Duration       `yaml:"refresh_interval"`
	ReferenceHigh     string              `yaml:"reference_high"`
	IntradayIntervals []string            `yaml:"intraday_intervals"`
	HistorySize       int                 `yaml:"history_size"` // negative disables history
	DataSource        struct {
		Provider  string        `yaml:"provider"`
		BaseURL   string        `yaml:"base_url"`
		APIKey    string        `yaml:"api_key"`
		RateLimit int           `yaml:"rate_limit"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Cache struct {
		cache.TTLs `yaml:",inline"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Telegram struct {
		BotToken      string         `yaml:"bot_token"`
		ChatID        string         `yaml:"chat_id"`
		AlertStatuses []model.Status `yaml:"alert_statuses"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("INSTRUMENTS"); v != "" {
		c.Instruments = splitList(v)
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := parseInterval(v)
		if err != nil {
			return fmt.Errorf("REFRESH_INTERVAL: %w", err)
		}
		c.RefreshInterval = d
	}
	if v := os.Getenv("REFERENCE_HIGH"); v != "" {
		c.ReferenceHigh = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		c.DataSource.Provider = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		c.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		c.DataSource.APIKey = v
	}
	return nil
}

// parseInterval accepts a Go duration or a bare number of seconds.
func parseInterval(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) applyDefaults() {
	if len(c.Instruments) == 0 {
		c.Instruments = append([]string(nil), DefaultInstruments...)
	}
	if c.Thresholds == (strategy.Thresholds{}) {
		c.Thresholds = strategy.DefaultThresholds()
	}
	if c.RefreshInterval == 0 {
		c.RefreshInterval = 10 * time.Second
	}
	if c.ReferenceHigh == "" {
		c.ReferenceHigh = string(model.HighAdjusted)
	}
	if len(c.IntradayIntervals) == 0 {
		c.IntradayIntervals = append([]string(nil), collector.DefaultIntradayIntervals...)
	}
	if c.HistorySize == 0 {
		c.HistorySize = 360
	}
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = ProviderYahoo
	}
	if c.DataSource.RateLimit == 0 {
		c.DataSource.RateLimit = 5
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 15 * time.Second
	}

	def := cache.DefaultTTLs()
	if c.Cache.Realtime == 0 {
		c.Cache.Realtime = def.Realtime
	}
	if c.Cache.PreviousClose == 0 {
		c.Cache.PreviousClose = def.PreviousClose
	}
	if c.Cache.Intraday == 0 {
		c.Cache.Intraday = def.Intraday
	}
	if c.Cache.ReferenceHigh == 0 {
		c.Cache.ReferenceHigh = def.ReferenceHigh
	}

	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if len(c.Telegram.AlertStatuses) == 0 {
		c.Telegram.AlertStatuses = []model.Status{model.StatusBuy}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// HighKind returns the configured reference-high convention.
func (c *Config) HighKind() model.ReferenceHighKind {
	return model.ReferenceHighKind(c.ReferenceHigh)
}

// TelegramEnabled reports whether alerts and commands should run.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Validate checks that the configuration can run a dashboard.
func (c *Config) Validate() error {
	if len(c.Instruments) == 0 {
		return fmt.Errorf("%w: instruments must not be empty", ErrInvalidConfig)
	}
	seen := make(map[string]bool, len(c.Instruments))
	for _, sym := range c.Instruments {
		if sym == "" {
			return fmt.Errorf("%w: empty instrument symbol", ErrInvalidConfig)
		}
		if seen[sym] {
			return fmt.Errorf("%w: duplicate instrument %q", ErrInvalidConfig, sym)
		}
		seen[sym] = true
	}
	if err := c.Thresholds.Validate(); err != nil {
		return fmt.Errorf("%w: thresholds: %v", ErrInvalidConfig, err)
	}
	if c.RefreshInterval < MinRefreshInterval || c.RefreshInterval > MaxRefreshInterval {
		return fmt.Errorf("%w: refresh_interval %s outside [%s, %s]",
			ErrInvalidConfig, c.RefreshInterval, MinRefreshInterval, MaxRefreshInterval)
	}
	switch c.HighKind() {
	case model.HighAdjusted, model.HighUnadjusted:
	default:
		return fmt.Errorf("%w: reference_high must be adjusted or unadjusted, got %q", ErrInvalidConfig, c.ReferenceHigh)
	}
	switch c.DataSource.Provider {
	case ProviderYahoo, ProviderMock:
	case ProviderVsTrader:
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("%w: data_source.base_url is required for vstrader", ErrInvalidConfig)
		}
		if c.HighKind() == model.HighAdjusted {
			return fmt.Errorf("%w: vstrader serves unadjusted history only", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown data_source.provider %q", ErrInvalidConfig, c.DataSource.Provider)
	}
	return nil
}
