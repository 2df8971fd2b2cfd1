// Package di wires the catalog together from a Config: logger, cache
// service, data store and entity services.
package di

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/catalog"
	"github.com/goliatone/go-recipe-catalog/config"
	"github.com/goliatone/go-recipe-catalog/datastore/bunstore"
	"github.com/goliatone/go-recipe-catalog/datastore/memstore"
	"github.com/goliatone/go-recipe-catalog/internal/logging"
)

// ServiceName tags every log line written by the container's logger.
const ServiceName = "recipe-catalog"

// Container owns the singletons the catalog runs on.
type Container struct {
	config        config.Config
	logger        zerolog.Logger
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	db            *bunstore.DB
	catalog       *catalog.Catalog
}

// Option customizes the container.
type Option func(*containerOptions)

type containerOptions struct {
	logOutput io.Writer
	logger    *zerolog.Logger
}

// WithLogOutput redirects the log stream built from the configuration.
func WithLogOutput(w io.Writer) Option {
	return func(o *containerOptions) { o.logOutput = w }
}

// WithLogger replaces the configured logger altogether.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *containerOptions) { o.logger = &logger }
}

// NewContainer validates cfg and builds every component. A database
// connection opened here is released by Close.
func NewContainer(cfg config.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o containerOptions
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.New(logging.Options{
		Service: ServiceName,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  o.logOutput,
	})
	if o.logger != nil {
		logger = *o.logger
	}

	cacheService, err := cache.NewCacheService(cfg.Cache(), logger)
	if err != nil {
		return nil, fmt.Errorf("cache service: %w", err)
	}

	c := &Container{
		config:        cfg,
		logger:        logger,
		cacheService:  cacheService,
		keySerializer: cache.NewDefaultKeySerializer(),
	}

	tables, err := c.openTables()
	if err != nil {
		return nil, err
	}

	c.catalog = catalog.New(tables, cacheService,
		catalog.WithLogger(logger),
		catalog.WithListTTL(cfg.ListTTL),
		catalog.WithKeySerializer(c.keySerializer),
	)

	logger.Info().
		Str("driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Msg("catalog ready")
	return c, nil
}

func (c *Container) openTables() (catalog.Tables, error) {
	if c.config.DBDriver == config.DriverMemory {
		return catalog.MemoryTables(memstore.New()), nil
	}

	db, err := bunstore.Open(c.config.DBDriver, c.config.DBDSN)
	if err != nil {
		return catalog.Tables{}, fmt.Errorf("open database: %w", err)
	}
	c.db = db
	return catalog.SQLTables(db), nil
}

// Migrate creates the schema. It is a no-op for the memory driver.
func (c *Container) Migrate(ctx context.Context) error {
	if c.db == nil {
		return nil
	}
	if err := c.db.CreateSchema(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	c.logger.Info().Msg("schema up to date")
	return nil
}

// Close releases the database connection, if any.
func (c *Container) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

func (c *Container) Catalog() *catalog.Catalog { return c.catalog }

func (c *Container) CacheService() cache.CacheService { return c.cacheService }

func (c *Container) KeySerializer() cache.KeySerializer { return c.keySerializer }

func (c *Container) Logger() zerolog.Logger { return c.logger }

// Config returns a copy of the configuration the container was built from.
func (c *Container) Config() config.Config { return c.config }
