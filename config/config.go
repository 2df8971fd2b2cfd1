// Package config loads catalog settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/goliatone/go-recipe-catalog/cache"
)

// Prefix is prepended to every variable name, as in CATALOG_DB_DRIVER.
const Prefix = "CATALOG"

// Environment names the deployment environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds the catalog configuration.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBDSN    string `envconfig:"DB_DSN" default:"file:catalog.db?_foreign_keys=on"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	CacheCapacity           int           `envconfig:"CACHE_CAPACITY" default:"10000"`
	CacheShards             int           `envconfig:"CACHE_SHARDS" default:"64"`
	CacheTTL                time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	CacheMaxTTL             time.Duration `envconfig:"CACHE_MAX_TTL" default:"1h"`
	CacheEvictionPercentage int           `envconfig:"CACHE_EVICTION_PERCENTAGE" default:"10"`

	// ListTTL is how long entity lists stay cached.
	ListTTL time.Duration `envconfig:"LIST_TTL" default:"5m"`
}

// Load reads the optional dotenv files, then the environment. Missing dotenv
// files are ignored but malformed ones fail; variables already set in the
// environment win.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field values and their combinations.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Environment, validation.In(EnvDevelopment, EnvTesting, EnvProduction)),
		validation.Field(&c.DBDriver, validation.Required, validation.In(DriverSQLite, DriverPostgres, DriverMemory)),
		validation.Field(&c.DBDSN, validation.When(c.DBDriver != DriverMemory, validation.Required)),
		validation.Field(&c.LogLevel, validation.In("trace", "debug", "info", "warn", "error", "disabled")),
		validation.Field(&c.LogFormat, validation.In("json", "console")),
		validation.Field(&c.ListTTL, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := c.Cache().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Cache returns the cache settings.
func (c Config) Cache() cache.Config {
	return cache.Config{
		Capacity:           c.CacheCapacity,
		NumShards:          c.CacheShards,
		TTL:                c.CacheTTL,
		MaxTTL:             c.CacheMaxTTL,
		EvictionPercentage: c.CacheEvictionPercentage,
	}
}
