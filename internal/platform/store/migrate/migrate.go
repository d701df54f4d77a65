// Package migrate applies the embedded schema to postgres and clickhouse
package migrate

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"agora/internal/platform/logger"
	"agora/internal/platform/store"
)

//go:embed sql/pg/*.up.sql sql/ch/*.up.sql
var files embed.FS

const ledgerDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Result lists what a run applied and what it skipped
type Result struct {
	Applied []string
	Skipped []string
}

// Versions returns the embedded migration names for dir in apply order
func Versions(fsys fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Postgres applies pending pg migrations, one transaction per file
// applied versions are recorded in schema_migrations
func Postgres(ctx context.Context, db store.TxRunner) (Result, error) {
	return postgres(ctx, db, files, "sql/pg")
}

func postgres(ctx context.Context, db store.TxRunner, fsys fs.FS, dir string) (Result, error) {
	var res Result
	log := logger.C(ctx)

	if _, err := db.Exec(ctx, ledgerDDL); err != nil {
		return res, fmt.Errorf("ensure schema_migrations: %w", err)
	}

	versions, err := Versions(fsys, dir)
	if err != nil {
		return res, err
	}

	for _, v := range versions {
		done, err := store.Scalar[bool](ctx, db,
			`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, v)
		if err != nil {
			return res, fmt.Errorf("check migration %s: %w", v, err)
		}
		if done {
			res.Skipped = append(res.Skipped, v)
			continue
		}

		body, err := fs.ReadFile(fsys, path.Join(dir, v))
		if err != nil {
			return res, fmt.Errorf("read migration %s: %w", v, err)
		}

		err = db.Tx(ctx, func(q store.RowQuerier) error {
			if _, err := q.Exec(ctx, string(body)); err != nil {
				return fmt.Errorf("execute migration %s: %w", v, err)
			}
			if _, err := q.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, v); err != nil {
				return fmt.Errorf("record migration %s: %w", v, err)
			}
			return nil
		})
		if err != nil {
			return res, err
		}
		log.Info().Str("version", v).Msg("migration applied")
		res.Applied = append(res.Applied, v)
	}
	return res, nil
}

// Clickhouse applies the clickhouse DDL; every statement is idempotent
func Clickhouse(ctx context.Context, ch store.Clickhouse) (Result, error) {
	return clickhouse(ctx, ch, files, "sql/ch")
}

func clickhouse(ctx context.Context, ch store.Clickhouse, fsys fs.FS, dir string) (Result, error) {
	var res Result
	versions, err := Versions(fsys, dir)
	if err != nil {
		return res, err
	}
	for _, v := range versions {
		body, err := fs.ReadFile(fsys, path.Join(dir, v))
		if err != nil {
			return res, fmt.Errorf("read migration %s: %w", v, err)
		}
		if err := ch.Exec(ctx, string(body)); err != nil {
			return res, fmt.Errorf("execute ch migration %s: %w", v, err)
		}
		res.Applied = append(res.Applied, v)
	}
	return res, nil
}
