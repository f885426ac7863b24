package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/invmis/tenderledger/pkg/domain/services"
)

const envPrefix = "TENDERLEDGER"

type Config struct {
	Env           string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	ValuationMode string `mapstructure:"VALUATION_MODE"`
	ReceiptPolicy string `mapstructure:"RECEIPT_POLICY"`
	DatabaseDSN   string `mapstructure:"DATABASE_DSN"`
	MetricsAddr   string `mapstructure:"METRICS_ADDR"`
}

// Load reads an optional .env file and TENDERLEDGER_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("VALUATION_MODE", services.ReceivedWeighted.String())
	v.SetDefault("RECEIPT_POLICY", services.CountAllDeliveries.String())
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("METRICS_ADDR", "")

	for _, key := range []string{"ENV", "LOG_LEVEL", "VALUATION_MODE", "RECEIPT_POLICY", "DATABASE_DSN", "METRICS_ADDR"} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Mode(); err != nil {
		return fmt.Errorf("%s_VALUATION_MODE: %w", envPrefix, err)
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("%s_RECEIPT_POLICY: %w", envPrefix, err)
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("%s_LOG_LEVEL: %w", envPrefix, err)
	}
	return nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Mode() (services.ValuationMode, error) {
	return services.ParseValuationMode(c.ValuationMode)
}

func (c *Config) Policy() (services.ReceiptPolicy, error) {
	return services.ParseReceiptPolicy(c.ReceiptPolicy)
}
