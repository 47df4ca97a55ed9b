package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"StockBoard/internal/collector"
	"StockBoard/internal/config"
)

var configPath = flag.String("config", "", "Path to the YAML config file (default $CONFIG_PATH or configs/config.yaml)")

// app holds the wiring shared by all subcommands.
type app struct {
	cfg       *config.Config
	cache     *collector.CachingFetcher
	collector *collector.Collector
}

func loadConfig() (*config.Config, error) {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	if *configPath != "" {
		cfgPath = *configPath
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "rest":
		return collector.NewRESTFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "static":
		return &collector.StaticFetcher{}
	default:
		return collector.NewYahooFetcher(cfg.Proxy)
	}
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	fetcher := newFetcher(cfg)
	log.Printf("[INFO] data source: %s", fetcher.Name())

	cache := collector.NewCachingFetcher(fetcher, cfg.CacheTTL())
	return &app{
		cfg:       cfg,
		cache:     cache,
		collector: collector.NewCollector(cache),
	}, nil
}
