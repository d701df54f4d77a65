package store

import "context"

type primaryKey struct{}

// WithPrimary marks the context so reads skip the replica
// used right after a write when replica lag would hide the new rows
func WithPrimary(ctx context.Context) context.Context {
	return context.WithValue(ctx, primaryKey{}, true)
}

// PrefersPrimary reports if the context asked for primary reads
func PrefersPrimary(ctx context.Context) bool {
	v := ctx.Value(primaryKey{})
	b, _ := v.(bool)
	return b
}
