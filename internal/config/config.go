// Package config loads settings from an optional file and CART_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/currency"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

type Config struct {
	HTTP     HTTPConfig    `mapstructure:"http"`
	Catalog  CatalogConfig `mapstructure:"catalog"`
	Storage  StorageConfig `mapstructure:"storage"`
	Log      LogConfig     `mapstructure:"log"`
	Tracing  TracingConfig `mapstructure:"tracing"`
	Notify   NotifyConfig  `mapstructure:"notify"`
	Currency string        `mapstructure:"currency"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type CatalogConfig struct {
	BaseURL string `mapstructure:"base_url"`
	// zero means no timeout
	Timeout time.Duration `mapstructure:"timeout"`
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver"`
	Key      string         `mapstructure:"key"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type NotifyConfig struct {
	// undrained toasts kept for GET /notifications
	Buffer int `mapstructure:"buffer"`
}

type TracingConfig struct {
	// empty disables tracing export
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

// Load reads path when it is not empty, then applies environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("catalog.base_url", "http://localhost:3333")
	v.SetDefault("catalog.timeout", time.Duration(0))
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("storage.key", "@RocketShoes:cart")
	v.SetDefault("storage.postgres.dsn", "")
	v.SetDefault("storage.redis.addr", "localhost:6379")
	v.SetDefault("log.level", "info")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.service_name", "cartd")
	v.SetDefault("notify.buffer", 100)
	v.SetDefault("currency", "BRL")

	v.SetEnvPrefix("CART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("v.ReadInConfig: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("v.Unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("cfg.Validate: %w", err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is empty"))
	}
	if c.Catalog.BaseURL == "" {
		errs = append(errs, errors.New("catalog.base_url is empty"))
	}
	if c.Catalog.Timeout < 0 {
		errs = append(errs, errors.New("catalog.timeout is negative"))
	}
	if c.Notify.Buffer <= 0 {
		errs = append(errs, errors.New("notify.buffer is not positive"))
	}
	if c.Storage.Key == "" {
		errs = append(errs, errors.New("storage.key is empty"))
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Storage.Postgres.DSN == "" {
			errs = append(errs, errors.New("storage.postgres.dsn is empty"))
		}
	case DriverRedis:
		if c.Storage.Redis.Addr == "" {
			errs = append(errs, errors.New("storage.redis.addr is empty"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver[%s] is not supported", c.Storage.Driver))
	}

	if _, err := c.CurrencyUnit(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (c Config) CurrencyUnit() (currency.Unit, error) {
	unit, err := currency.ParseISO(c.Currency)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("currency[%s] is not valid: %w", c.Currency, err)
	}

	return unit, nil
}
