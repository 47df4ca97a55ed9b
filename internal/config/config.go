package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"StockBoard/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr           string   `yaml:"addr" validate:"required"`
		AllowedOrigins []string `yaml:"allowed_origins" validate:"min=1"`
	} `yaml:"server"`
	DataSource struct {
		Provider string `yaml:"provider" validate:"oneof=yahoo rest static"`
		BaseURL  string `yaml:"base_url" validate:"required_if=Provider rest"`
		APIKey   string `yaml:"api_key"`
	} `yaml:"data_source"`
	Dashboard struct {
		DefaultPeriod   model.Period   `yaml:"default_period"`
		DefaultInterval model.Interval `yaml:"default_interval"`
		Currency        string         `yaml:"currency"`
	} `yaml:"dashboard"`
	Companies []model.Company `yaml:"companies" validate:"min=1,dive"`
	Cache     struct {
		Disabled bool           `yaml:"disabled"`
		TTL      *time.Duration `yaml:"ttl"` // nil means default; 0 disables caching
	} `yaml:"cache"`
	Schedule struct {
		RefreshCron string `yaml:"refresh_cron"`
		DigestCron  string `yaml:"digest_cron"`
		PurgeCron   string `yaml:"purge_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// DefaultCompanies is the preset company table used when none is configured.
var DefaultCompanies = []model.Company{
	{Label: "Fuji Media Holdings", Symbol: "4676.T"},
	{Label: "Nippon Television", Symbol: "9404.T"},
	{Label: "TV Asahi", Symbol: "9409.T"},
	{Label: "TBS Holdings", Symbol: "9401.T"},
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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

	// Environment variable overrides
	if v := os.Getenv("STOCKBOARD_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("REST_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("REST_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = &d
	}
	if v := os.Getenv("REFRESH_CRON"); v != "" {
		cfg.Schedule.RefreshCron = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "yahoo"
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Provider = "rest"
		}
	}
	if cfg.Dashboard.DefaultPeriod == "" {
		cfg.Dashboard.DefaultPeriod = model.Period1Month
	}
	if cfg.Dashboard.DefaultInterval == "" {
		cfg.Dashboard.DefaultInterval = model.IntervalDay
	}
	if cfg.Dashboard.Currency == "" {
		cfg.Dashboard.Currency = "JPY"
	}
	if len(cfg.Companies) == 0 {
		cfg.Companies = append([]model.Company(nil), DefaultCompanies...)
	}
	if cfg.Cache.TTL == nil {
		d := 5 * time.Minute
		cfg.Cache.TTL = &d
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 */30 9-15 * * 1-5"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 30 15 * * 1-5"
	}
	if cfg.Schedule.PurgeCron == "" {
		cfg.Schedule.PurgeCron = "0 0 * * * *"
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := model.ParsePeriod(string(c.Dashboard.DefaultPeriod)); err != nil {
		return fmt.Errorf("dashboard.default_period: %w", err)
	}
	if _, err := model.ParseInterval(string(c.Dashboard.DefaultInterval)); err != nil {
		return fmt.Errorf("dashboard.default_interval: %w", err)
	}
	labels := make(map[string]bool, len(c.Companies))
	symbols := make(map[string]bool, len(c.Companies))
	for i, co := range c.Companies {
		if labels[co.Label] {
			return fmt.Errorf("companies[%d]: duplicate label %q", i, co.Label)
		}
		if symbols[co.Symbol] {
			return fmt.Errorf("companies[%d]: duplicate symbol %q", i, co.Symbol)
		}
		labels[co.Label] = true
		symbols[co.Symbol] = true
	}
	if c.Cache.TTL != nil && *c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	return nil
}

// CacheTTL returns the effective memoization TTL; zero means no caching.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.Disabled || c.Cache.TTL == nil {
		return 0
	}
	return *c.Cache.TTL
}

// DefaultSelection returns the dashboard's initial state: default period and
// interval with every company selected.
func (c *Config) DefaultSelection() model.Selection {
	return model.Selection{
		Period:    c.Dashboard.DefaultPeriod,
		Interval:  c.Dashboard.DefaultInterval,
		Companies: append([]model.Company(nil), c.Companies...),
	}
}

// SelectCompanies resolves symbols to configured companies. The result follows
// the configured order and holds each company once; unknown symbols are an error.
func (c *Config) SelectCompanies(symbols []string) ([]model.Company, error) {
	wanted := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if _, ok := c.CompanyBySymbol(sym); !ok {
			return nil, fmt.Errorf("unknown symbol %q", sym)
		}
		wanted[sym] = true
	}
	var out []model.Company
	for _, co := range c.Companies {
		if wanted[co.Symbol] {
			out = append(out, co)
		}
	}
	return out, nil
}

// CompanyBySymbol looks up a configured company.
func (c *Config) CompanyBySymbol(symbol string) (model.Company, bool) {
	for _, co := range c.Companies {
		if co.Symbol == symbol {
			return co, true
		}
	}
	return model.Company{}, false
}
