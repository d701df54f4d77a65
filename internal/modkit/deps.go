// Package modkit provides module wiring and core deps
package modkit

import (
	"agora/internal/modkit/repokit"
	"agora/internal/platform/config"
	"agora/internal/platform/logger"
	"agora/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse

	// Reads routes reads to the replica when one is configured; nil means PG
	Reads store.RowQuerier
	// RDS is optional; modules fall back to uncached paths without it
	RDS *redis.Client
}

// ReadQuerier returns Reads, or PG when no read router was wired
func (d Deps) ReadQuerier() store.RowQuerier {
	if d.Reads != nil {
		return d.Reads
	}
	if d.PG == nil {
		return nil
	}
	return d.PG
}
