package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type StoreDriver string

const (
	StoreSQLite   StoreDriver = "sqlite"
	StorePostgres StoreDriver = "postgres"
	StoreFile     StoreDriver = "file"
)

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminUserID      int64  `env:"ADMIN_USER"`

	// Storage
	StoreDriver StoreDriver `env:"STORE_DRIVER" envDefault:"sqlite"`
	StoreDSN    string      `env:"STORE_DSN" envDefault:"data/requests.db"`

	// Marketing description shown by /about
	DescriptionURL     string        `env:"DESCRIPTION_URL"`
	DescriptionTimeout time.Duration `env:"DESCRIPTION_TIMEOUT" envDefault:"5s"`

	// Admin notification and persistence are bounded by this timeout
	SubmitTimeout time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"10s"`

	// Daily digest for the admin, empty disables it
	ReportCron string `env:"REPORT_CRON" envDefault:"0 21 * * *"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"LOG_DEV"`
}

func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is empty")
	}
	switch cfg.StoreDriver {
	case StoreSQLite, StorePostgres, StoreFile:
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
	return cfg, nil
}
