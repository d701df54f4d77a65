package store

import "context"

// ReadRouter sends reads to the replica and writes to the primary
// a nil replica means everything goes to the primary
type ReadRouter struct {
	primary RowQuerier
	replica RowQuerier
}

var _ RowQuerier = (*ReadRouter)(nil)

// NewReadRouter builds a router over primary and an optional replica
func NewReadRouter(primary, replica RowQuerier) *ReadRouter {
	if primary == nil {
		panic("store: read router needs a primary")
	}
	return &ReadRouter{primary: primary, replica: replica}
}

// Reads returns a router over the store's pg seams
func (s *Store) Reads() *ReadRouter {
	var rep RowQuerier
	if s.Replica != nil {
		rep = s.Replica
	}
	return NewReadRouter(s.PG, rep)
}

func (r *ReadRouter) pick(ctx context.Context) RowQuerier {
	if r.replica == nil || PrefersPrimary(ctx) {
		return r.primary
	}
	return r.replica
}

// Exec always runs on the primary
func (r *ReadRouter) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return r.primary.Exec(ctx, sql, args...)
}

// Query runs on the replica unless ctx prefers the primary
func (r *ReadRouter) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	return r.pick(ctx).Query(ctx, sql, args...)
}

// QueryRow runs on the replica unless ctx prefers the primary
func (r *ReadRouter) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return r.pick(ctx).QueryRow(ctx, sql, args...)
}
