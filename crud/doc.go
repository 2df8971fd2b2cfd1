// Package crud holds the create/read/update/delete template shared by the
// catalog entity services.
//
// An Orchestrator is built once per entity type on top of the shared cache
// service. Entity services supply the store calls and validators as closures:
//
//	recipes := crud.New[model.Recipe](cacheService, crud.WithLogger(logger))
//
//	res := recipes.CreateCore(ctx, rec, validateRecipe, store.Insert,
//		func(ctx context.Context, created *model.Recipe) {
//			recipes.Invalidate(ctx, "recipe")
//		})
//
// # Guarantees
//
//   - Validation runs before any store call; a failing validator short-circuits.
//   - Update and delete reject non-positive ids before touching the store.
//   - Delete confirms the record exists before deleting it.
//   - GetAllCached never fails: a fetch error yields an empty list.
//   - Invalidation happens synchronously in the success hook, so the next
//     cached read misses.
//
// # Cache keys
//
// Each orchestrator owns a namespace derived from the entity type name in
// snake_case (Recipe -> "recipe", BookAuthor -> "book_author"). Keys are built
// with the cache KeySerializer as "<namespace>::<method>::<args>" and are
// invalidated by namespace prefix.
package crud
