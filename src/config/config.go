package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"exchange-core/src/engine"
)

// Config holds every runtime setting. Values load from a yaml file and may
// be overridden through environment variables afterwards.
type Config struct {
	Server struct {
		Port               int `yaml:"port"`
		ShutdownTimeoutSec int `yaml:"shutdown_timeout_sec"`
	} `yaml:"server"`

	EventLog struct {
		Dir string `yaml:"dir"`
	} `yaml:"event_log"`

	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	Trading struct {
		// PriceScale is the number of decimal places kept when request
		// prices are converted to integer ticks.
		PriceScale           int32  `yaml:"price_scale"`
		DefaultTradingStatus string `yaml:"default_trading_status"`
		SnapshotDepth        int    `yaml:"snapshot_depth"`
	} `yaml:"trading"`

	RateLimit struct {
		Max               int `yaml:"max"`
		ExpirationSeconds int `yaml:"expiration_seconds"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.Server.Port = 3000
	cfg.Server.ShutdownTimeoutSec = 10
	cfg.EventLog.Dir = "data/eventlog"
	cfg.Kafka.Topic = "exchange.events"
	cfg.Trading.PriceScale = 4
	cfg.Trading.DefaultTradingStatus = string(engine.OpenForTrading)
	cfg.Trading.SnapshotDepth = 10
	cfg.RateLimit.Max = 100
	cfg.RateLimit.ExpirationSeconds = 60
	cfg.Logging.Level = "info"
	cfg.Logging.MaxSizeMB = 100
	cfg.Logging.MaxBackups = 5
	cfg.Logging.MaxAgeDays = 14
	return &cfg
}

// Load reads the yaml file at path, applies environment overrides and
// validates the result. A missing file is not an error: defaults plus
// environment overrides apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env overrides
	default:
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.EventLog.Dir == "" {
		return fmt.Errorf("event log dir is required")
	}
	if c.Trading.PriceScale < 0 || c.Trading.PriceScale > 12 {
		return fmt.Errorf("price scale must be between 0 and 12, got %d", c.Trading.PriceScale)
	}
	if c.Trading.SnapshotDepth <= 0 {
		return fmt.Errorf("snapshot depth must be positive")
	}
	switch engine.TradingStatus(c.Trading.DefaultTradingStatus) {
	case engine.OpenForTrading, engine.Closed, engine.Halted,
		engine.PreOpen, engine.NotAvailableForTrading:
	default:
		return fmt.Errorf("unknown default trading status: %s", c.Trading.DefaultTradingStatus)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return fmt.Errorf("kafka topic is required when brokers are set")
	}
	return nil
}

// overrideWithEnv overwrites settings for which an environment variable is
// present.
func overrideWithEnv(cfg *Config) {
	if port := os.Getenv("EXCHANGE_PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = n
		}
	}
	if dir := os.Getenv("EXCHANGE_EVENT_LOG_DIR"); dir != "" {
		cfg.EventLog.Dir = dir
	}
	if brokers := os.Getenv("EXCHANGE_KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = strings.Split(brokers, ",")
	}
	if topic := os.Getenv("EXCHANGE_KAFKA_TOPIC"); topic != "" {
		cfg.Kafka.Topic = topic
	}
	if level := os.Getenv("EXCHANGE_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
	if file := os.Getenv("EXCHANGE_LOG_FILE"); file != "" {
		cfg.Logging.File = file
	}
}
