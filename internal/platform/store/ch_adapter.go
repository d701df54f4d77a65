package store

import (
	"context"
	"fmt"

	"agora/internal/platform/store/ch"
)

// chSeam exposes *ch.CH as Clickhouse; Exec, Ping and Close come straight from the client
type chSeam struct{ *ch.CH }

var (
	_ Clickhouse = chSeam{}
	_ Pinger     = chSeam{}
)

func newCHAdapter(c *ch.CH) Clickhouse { return chSeam{c} }

// Insert accepts row batches only
func (s chSeam) Insert(ctx context.Context, table string, data any) error {
	rows, ok := data.([][]any)
	if !ok {
		return fmt.Errorf("store: unsupported clickhouse insert shape %T", data)
	}
	return s.CH.Insert(ctx, table, rows)
}

func (s chSeam) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	r, err := s.CH.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return chRows{r}, nil
}

// chRows drops the error from driver Close
type chRows struct{ ch.Rows }

func (r chRows) Close() { _ = r.Rows.Close() }
