package crud

import (
	"context"
)

type invalidationTagsContextKey struct{}

// WithInvalidationTags attaches extra cache keys to ctx. They are removed,
// together with the entity namespaces, by the next successful mutation that
// runs with this context.
func WithInvalidationTags(ctx context.Context, keys ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(keys) == 0 {
		return ctx
	}

	combined := dedupeStrings(append(invalidationTagsFromContext(ctx), keys...))
	if len(combined) == 0 {
		return ctx
	}
	return context.WithValue(ctx, invalidationTagsContextKey{}, combined)
}

func invalidationTagsFromContext(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(invalidationTagsContextKey{}).([]string); ok {
		return append([]string(nil), tags...)
	}
	return nil
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
