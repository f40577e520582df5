package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type SearchConfig struct {
	PageSize   int `env:"CENSUS_PAGE_SIZE, default=100"`
	MaxResults int `env:"CENSUS_MAX_RESULTS, default=1000"`
	MaxRetries int `env:"CENSUS_MAX_RETRIES, default=3"`
}

func NewSearchConfigFromEnv() (*SearchConfig, error) {
	var cfg SearchConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		return nil, fmt.Errorf("CENSUS_PAGE_SIZE must be between 1 and 100, got %d", cfg.PageSize)
	}
	if cfg.MaxResults < 1 {
		return nil, fmt.Errorf("CENSUS_MAX_RESULTS must be positive, got %d", cfg.MaxResults)
	}
	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("CENSUS_MAX_RETRIES must not be negative, got %d", cfg.MaxRetries)
	}

	return &cfg, nil
}
