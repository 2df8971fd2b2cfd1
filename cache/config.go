package cache

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-recipe-catalog/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	Capacity           int
	NumShards          int
	TTL                time.Duration
	MaxTTL             time.Duration
	EvictionPercentage int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewCacheService constructs the default cache service implementation using the provided configuration.
// The service is meant to be built once per process and shared by every catalog service.
func NewCacheService(cfg Config, logger zerolog.Logger) (CacheService, error) {
	svc, err := cacheinfra.NewSturdycService(cfg.toInternal(), cacheinfra.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return statsAdapter{svc}, nil
}

// statsAdapter converts the infrastructure counters into the public Stats type.
type statsAdapter struct {
	*cacheinfra.SturdycService
}

func (s statsAdapter) Stats() Stats {
	st := s.SturdycService.Stats()
	return Stats{Hits: st.Hits, Misses: st.Misses, Stores: st.Stores, Evictions: st.Evictions}
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		MaxTTL:             c.MaxTTL,
		EvictionPercentage: c.EvictionPercentage,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		MaxTTL:             cfg.MaxTTL,
		EvictionPercentage: cfg.EvictionPercentage,
	}
}
