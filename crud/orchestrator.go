package crud

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-recipe-catalog/cache"
	"github.com/goliatone/go-recipe-catalog/guard"
	"github.com/goliatone/go-recipe-catalog/result"
)

// DefaultListTTL is used for cached lists when no TTL is configured.
const DefaultListTTL = 5 * time.Minute

// Stamper is implemented by records carrying a creation timestamp.
type Stamper interface {
	StampCreation(now time.Time)
}

// Validator checks a record before it is written. A nil error means valid.
type Validator[M any] func(record *M) error

// Hook runs after a successful mutation.
type Hook[M any] func(ctx context.Context, record *M)

type settings struct {
	logger     zerolog.Logger
	serializer cache.KeySerializer
	listTTL    time.Duration
	now        func() time.Time
}

// Option customizes an Orchestrator.
type Option func(*settings)

// WithLogger sets the logger used for operation logs.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithKeySerializer replaces the default cache key serializer.
func WithKeySerializer(serializer cache.KeySerializer) Option {
	return func(s *settings) {
		if serializer != nil {
			s.serializer = serializer
		}
	}
}

// WithListTTL sets how long cached lists live.
func WithListTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.listTTL = ttl
		}
	}
}

// WithClock replaces the time source used for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Orchestrator runs the CRUD template for records of type M.
type Orchestrator[M any] struct {
	cache      cache.CacheService
	serializer cache.KeySerializer
	listTTL    time.Duration
	now        func() time.Time
	logger     zerolog.Logger

	namespace string
	noun      string
}

// New builds an Orchestrator for M backed by the shared cache service.
func New[M any](cacheService cache.CacheService, opts ...Option) *Orchestrator[M] {
	s := settings{
		logger:     zerolog.Nop(),
		serializer: cache.NewDefaultKeySerializer(),
		listTTL:    DefaultListTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}

	namespace := toSnake(reflect.TypeOf((*M)(nil)).Elem().Name())
	return &Orchestrator[M]{
		cache:      cacheService,
		serializer: s.serializer,
		listTTL:    s.listTTL,
		now:        s.now,
		logger:     s.logger.With().Str("entity", namespace).Logger(),
		namespace:  namespace,
		noun:       humanize(namespace),
	}
}

// Namespace is the cache key prefix owned by this orchestrator.
func (o *Orchestrator[M]) Namespace() string { return o.namespace }

// Key builds a cache key inside the orchestrator namespace.
func (o *Orchestrator[M]) Key(method string, args ...any) string {
	return o.serializer.SerializeKey(o.namespace+cache.KeySeparator+method, args...)
}

// NotFoundMessage renders "<Entity> with ID <id> not found".
func (o *Orchestrator[M]) NotFoundMessage(id int64) string {
	return fmt.Sprintf("%s with ID %d not found", title(o.noun), id)
}

func (o *Orchestrator[M]) opLogger(operation string) zerolog.Logger {
	return o.logger.With().
		Str("operation", operation).
		Str("op_id", uuid.NewString()).
		Logger()
}

// GetAllCached serves a list through the cache. A failing fetch is logged and
// an empty list is returned. Callers receive copies, so editing a returned
// record never alters the cached list.
func (o *Orchestrator[M]) GetAllCached(ctx context.Context, key string, fetchAll func(context.Context) ([]*M, error)) []*M {
	log := o.opLogger("get_all")

	items, err := cache.GetOrCreate(ctx, o.cache, key, o.listTTL, cache.FactoryFn[[]*M](fetchAll))
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("list fetch failed, returning empty list")
		return []*M{}
	}
	return cloneAll(items)
}

// Cloner is implemented by records holding pointers or slices that a plain
// struct copy would share.
type Cloner[M any] interface {
	Clone() *M
}

func cloneAll[M any](items []*M) []*M {
	out := make([]*M, 0, len(items))
	for _, item := range items {
		out = append(out, cloneRecord(item))
	}
	return out
}

func cloneRecord[M any](record *M) *M {
	if record == nil {
		return nil
	}
	if c, ok := any(record).(Cloner[M]); ok {
		return c.Clone()
	}
	c := *record
	return &c
}

// GetByIDCore loads a single record.
func (o *Orchestrator[M]) GetByIDCore(ctx context.Context, id int64, fetchSingle func(context.Context, int64) (*M, error), notFoundMessage string) result.Result[*M] {
	log := o.opLogger("get_by_id")

	record, err := fetchSingle(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("fetch failed")
		return result.FromError[*M](err, "loading", o.noun)
	}
	if record == nil {
		log.Debug().Int64("id", id).Msg("record not found")
		return result.NotFound[*M](notFoundMessage)
	}
	return result.Success(record)
}

// CreateCore validates, stamps and inserts record. onSuccess runs only when
// the store returned the created record.
func (o *Orchestrator[M]) CreateCore(ctx context.Context, record *M, validate Validator[M], insert func(context.Context, *M) (*M, error), onSuccess Hook[M]) result.Result[*M] {
	log := o.opLogger("create")

	if err := guard.First(
		func() error { return guard.RequireNotNil(record, title(o.noun)) },
		func() error { return runValidator(validate, record) },
	); err != nil {
		log.Debug().Err(err).Msg("validation failed")
		return result.Invalid[*M](err)
	}

	if stamper, ok := any(record).(Stamper); ok {
		stamper.StampCreation(o.now())
	}

	created, err := insert(ctx, record)
	if err != nil {
		log.Error().Err(err).Msg("insert failed")
		return result.FromError[*M](err, "creating", o.noun)
	}
	if created == nil {
		log.Error().Msg("insert returned no record")
		return result.Failed[*M](fmt.Sprintf("Failed to create the %s", o.noun))
	}

	o.afterMutation(ctx, created, onSuccess)
	log.Info().Interface("id", recordID(created)).Msg("created")
	return result.Success(created)
}

// UpdateCore replaces the record stored under id.
func (o *Orchestrator[M]) UpdateCore(ctx context.Context, id int64, record *M, validate Validator[M], update func(context.Context, int64, *M) (*M, error), onSuccess Hook[M]) result.Result[*M] {
	log := o.opLogger("update")

	if err := guard.First(
		func() error { return guard.RequirePositive(id, "ID") },
		func() error { return guard.RequireNotNil(record, title(o.noun)) },
		func() error { return runValidator(validate, record) },
	); err != nil {
		log.Debug().Err(err).Int64("id", id).Msg("validation failed")
		return result.Invalid[*M](err)
	}

	updated, err := update(ctx, id, record)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("update failed")
		return result.FromError[*M](err, "updating", o.noun)
	}
	if updated == nil {
		log.Error().Int64("id", id).Msg("update returned no record")
		return result.Failed[*M](fmt.Sprintf("Failed to update the %s", o.noun))
	}

	o.afterMutation(ctx, updated, onSuccess)
	log.Info().Int64("id", id).Msg("updated")
	return result.Success(updated)
}

// DeleteCore removes the record stored under id after confirming it exists.
// The deleted record is passed to onSuccess.
func (o *Orchestrator[M]) DeleteCore(ctx context.Context, id int64, getExisting func(context.Context, int64) (*M, error), del func(context.Context, int64) error, onSuccess Hook[M], notFoundMessage string) result.Result[bool] {
	log := o.opLogger("delete")

	if err := guard.RequirePositive(id, "ID"); err != nil {
		log.Debug().Err(err).Int64("id", id).Msg("validation failed")
		return result.Invalid[bool](err)
	}

	existing, err := getExisting(ctx, id)
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("existence check failed")
		return result.FromError[bool](err, "deleting", o.noun)
	}
	if existing == nil {
		log.Debug().Int64("id", id).Msg("record not found")
		return result.NotFound[bool](notFoundMessage)
	}

	if err := del(ctx, id); err != nil {
		log.Error().Err(err).Int64("id", id).Msg("delete failed")
		return result.FromError[bool](err, "deleting", o.noun)
	}

	o.afterMutation(ctx, existing, onSuccess)
	log.Info().Int64("id", id).Msg("deleted")
	return result.Success(true)
}

// Invalidate removes every cached key under the given namespaces, plus any
// keys attached to ctx with WithInvalidationTags. Failures are logged.
func (o *Orchestrator[M]) Invalidate(ctx context.Context, namespaces ...string) {
	for _, ns := range namespaces {
		if ns == "" {
			continue
		}
		if err := o.cache.RemoveByPrefix(ctx, ns+cache.KeySeparator); err != nil {
			o.logger.Warn().Err(err).Str("namespace", ns).Msg("cache invalidation failed")
		}
	}

	if tags := invalidationTagsFromContext(ctx); len(tags) > 0 {
		if err := o.cache.RemoveMany(ctx, tags); err != nil {
			o.logger.Warn().Err(err).Strs("keys", tags).Msg("cache invalidation failed")
		}
	}
}

func (o *Orchestrator[M]) afterMutation(ctx context.Context, record *M, onSuccess Hook[M]) {
	if onSuccess != nil {
		onSuccess(ctx, record)
		return
	}
	o.Invalidate(ctx, o.namespace)
}

func runValidator[M any](validate Validator[M], record *M) error {
	if validate == nil {
		return nil
	}
	return validate(record)
}

func recordID(record any) any {
	if r, ok := record.(interface{ GetID() int64 }); ok {
		return r.GetID()
	}
	return nil
}
