package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type StorageConfig struct {
	DataDir    string `env:"CENSUS_DATA_DIR, default=data"`
	ReportPath string `env:"CENSUS_REPORT_PATH, default=report.html"`
}

func NewStorageConfigFromEnv() (*StorageConfig, error) {
	var cfg StorageConfig
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, err
	}
	if cfg.DataDir == "" {
		return nil, fmt.Errorf("CENSUS_DATA_DIR must not be empty")
	}
	if cfg.ReportPath == "" {
		return nil, fmt.Errorf("CENSUS_REPORT_PATH must not be empty")
	}

	return &cfg, nil
}
