package main

import (
	"context"
	"time"

	"agora/internal/platform/config"
	"agora/internal/platform/logger"
	"agora/internal/platform/store"
)

type backends struct {
	ch    bool
	redis bool
}

// openStore reads SERVICE_PGSQL_*, SERVICE_CLICKHOUSE_* and SERVICE_REDIS_*
// clickhouse and redis come up only when asked for and configured
func openStore(ctx context.Context, root config.Conf, tag string, want backends) (*store.Store, error) {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	rdsCfg := root.Prefix("SERVICE_REDIS_")

	chURL := chCfg.MayString("DBURL", "")
	rdsURL := rdsCfg.MayString("URL", "")

	return store.Open(ctx, store.Config{
		AppName: "agora-" + tag,
		PG: store.PGConfig{
			Enabled:    true,
			URL:        pgCfg.MustString("DBURL"),
			ReplicaURL: pgCfg.MayString("REPLICA_DBURL", ""),
			MaxConns:   int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQuery:  time.Duration(pgCfg.MayInt("SLOW_MS", 500)) * time.Millisecond,
			LogSQL:     pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled: want.ch && chURL != "",
			URL:     chURL,
		},
		RDS: store.RedisConfig{
			Enabled: want.redis && rdsURL != "",
			URL:     rdsURL,
		},
	}, store.WithLogger(*logger.Get()))
}

func closeStore(st *store.Store) {
	if err := st.Close(context.Background()); err != nil {
		logger.Get().Error().Err(err).Msg("failed to close store")
	}
}
