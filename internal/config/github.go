package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/sethvargo/go-envconfig"
)

type GitHubConfig struct {
	Token   string `env:"GITHUB_TOKEN, required"`
	BaseURL string `env:"GITHUB_API_URL, default=https://api.github.com"`
}

func NewGitHubConfigFromEnv() (*GitHubConfig, error) {
	var cfg GitHubConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("GITHUB_API_URL must not be empty")
	}

	return &cfg, nil
}
