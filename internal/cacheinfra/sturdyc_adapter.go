package cacheinfra

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
	"github.com/viccon/sturdyc"
)

// maxKeyLength mirrors cache.MaxKeyLength. Keys above it bypass the store.
const maxKeyLength = 256

// Config holds the configuration for the sturdyc cache adapter.
type Config struct {
	// Capacity defines the maximum number of entries that the cache can store.
	Capacity int

	// NumShards determines the number of cache shards for concurrent access.
	NumShards int

	// TTL is applied when a caller passes a non-positive ttl.
	TTL time.Duration

	// MaxTTL caps every per-entry ttl. It is also the hard lifetime sturdyc
	// enforces underneath the per-entry expiry.
	MaxTTL time.Duration

	// EvictionPercentage specifies what percentage of entries to evict
	// when the cache reaches its capacity. Must be between 1-100.
	EvictionPercentage int
}

// DefaultConfig returns a Config with sensible defaults for most use cases.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          64,
		TTL:                5 * time.Minute,
		MaxTTL:             time.Hour,
		EvictionPercentage: 10,
	}
}

// ToSturdycOptions converts the Config to sturdyc options.
// Capacity, NumShards, MaxTTL and EvictionPercentage go to sturdyc.New directly.
func (c Config) ToSturdycOptions() []sturdyc.Option {
	// Expiry is checked lazily on read, a background sweep is not needed.
	return []sturdyc.Option{sturdyc.WithNoContinuousEvictions()}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	if c.Capacity <= 0 {
		return &ConfigError{Field: "Capacity", Message: "must be greater than 0"}
	}

	if c.NumShards <= 0 {
		return &ConfigError{Field: "NumShards", Message: "must be greater than 0"}
	}

	if c.TTL <= 0 {
		return &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	}

	if c.MaxTTL < c.TTL {
		return &ConfigError{Field: "MaxTTL", Message: "must be greater than or equal to TTL"}
	}

	if c.EvictionPercentage < 1 || c.EvictionPercentage > 100 {
		return &ConfigError{Field: "EvictionPercentage", Message: "must be between 1 and 100"}
	}

	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}

// Stats holds counter snapshots.
type Stats struct {
	Hits      int64
	Misses    int64
	Stores    int64
	Evictions int64
}

// Option customizes a SturdycService.
type Option func(*SturdycService)

// WithLogger sets the logger used for cache diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *SturdycService) {
		s.logger = logger.With().Str("component", "cache").Logger()
	}
}

// WithClock replaces the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *SturdycService) {
		if now != nil {
			s.now = now
		}
	}
}

type entry struct {
	value     any
	expiresAt time.Time
}

// SturdycService is a keyed TTL cache holding values of any type on top of
// a sharded sturdyc client.
type SturdycService struct {
	client *sturdyc.Client[entry]
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time

	hits      *xsync.Counter
	misses    *xsync.Counter
	stores    *xsync.Counter
	evictions *xsync.Counter
}

// NewSturdycService validates cfg and builds the service.
func NewSturdycService(cfg Config, opts ...Option) (*SturdycService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &SturdycService{
		client: sturdyc.New[entry](
			cfg.Capacity,
			cfg.NumShards,
			cfg.MaxTTL,
			cfg.EvictionPercentage,
			cfg.ToSturdycOptions()...,
		),
		cfg:       cfg,
		logger:    zerolog.Nop(),
		now:       time.Now,
		hits:      xsync.NewCounter(),
		misses:    xsync.NewCounter(),
		stores:    xsync.NewCounter(),
		evictions: xsync.NewCounter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetOrCreate returns the live entry for key if accepts approves it, otherwise
// it calls factory and stores a non-nil result for ttl.
func (s *SturdycService) GetOrCreate(ctx context.Context, key string, ttl time.Duration, accepts func(any) bool, factory func(context.Context) (any, error)) (any, error) {
	if !validKey(key) {
		s.logger.Warn().Str("key", printable(key)).Msg("invalid cache key, bypassing cache")
		return factory(ctx)
	}

	if value, ok := s.lookup(key, accepts); ok {
		return value, nil
	}

	value, err := factory(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("cache factory failed")
		return nil, err
	}

	if isNil(value) {
		return value, nil
	}

	s.store(key, value, ttl)
	return value, nil
}

func (s *SturdycService) lookup(key string, accepts func(any) bool) (value any, found bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("key", key).Msg("cache lookup failed")
			value, found = nil, false
		}
	}()

	e, ok := s.client.Get(key)
	if !ok {
		s.misses.Inc()
		return nil, false
	}

	if !s.now().Before(e.expiresAt) {
		s.evict(key)
		s.misses.Inc()
		return nil, false
	}

	if accepts != nil && !accepts(e.value) {
		s.logger.Warn().
			Str("key", key).
			Str("cached_type", fmt.Sprintf("%T", e.value)).
			Msg("cached value has unexpected type, replacing")
		s.evict(key)
		s.misses.Inc()
		return nil, false
	}

	s.hits.Inc()
	return e.value, true
}

func (s *SturdycService) store(key string, value any, ttl time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("key", key).Msg("cache store failed")
		}
	}()

	s.client.Set(key, entry{value: value, expiresAt: s.now().Add(s.effectiveTTL(ttl))})
	s.stores.Inc()
}

func (s *SturdycService) effectiveTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = s.cfg.TTL
	}
	if ttl > s.cfg.MaxTTL {
		ttl = s.cfg.MaxTTL
	}
	return ttl
}

func (s *SturdycService) evict(key string) {
	s.client.Delete(key)
	s.evictions.Inc()
}

// Remove deletes one key. Missing keys are ignored.
func (s *SturdycService) Remove(ctx context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	s.client.Delete(key)
	return nil
}

// RemoveMany deletes each key in keys.
func (s *SturdycService) RemoveMany(ctx context.Context, keys []string) error {
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// RemoveByPrefix deletes every key starting with prefix.
func (s *SturdycService) RemoveByPrefix(ctx context.Context, prefix string) error {
	if prefix == "" {
		return nil
	}
	for _, key := range s.client.ScanKeys() {
		if strings.HasPrefix(key, prefix) {
			s.client.Delete(key)
		}
	}
	return nil
}

// Stats returns a snapshot of the cache counters.
func (s *SturdycService) Stats() Stats {
	return Stats{
		Hits:      s.hits.Value(),
		Misses:    s.misses.Value(),
		Stores:    s.stores.Value(),
		Evictions: s.evictions.Value(),
	}
}

// Size returns the number of stored entries, expired ones included.
func (s *SturdycService) Size() int {
	return s.client.Size()
}

func validKey(key string) bool {
	if strings.TrimSpace(key) == "" || len(key) > maxKeyLength {
		return false
	}
	return strings.IndexFunc(key, unicode.IsControl) < 0
}

func printable(key string) string {
	if len(key) > 64 {
		key = key[:64]
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '?'
		}
		return r
	}, key)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
