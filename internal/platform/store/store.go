// Package store opens the optional postgres, clickhouse and redis backends
package store

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/platform/logger"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store holds whichever backends were enabled; the rest stay nil
type Store struct {
	Log logger.Logger

	PG TxRunner
	// Replica serves reads and is PG itself without a replica url
	Replica TxRunner
	CH      Clickhouse
	RDS     *redis.Client
}

// Option mutates Store during Open
type Option func(*Store)

// WithLogger sets the logger handed to the backends
func WithLogger(log logger.Logger) Option {
	return func(s *Store) { s.Log = log }
}

// Open brings up every enabled backend and unwinds on the first failure
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}

	fail := func(err error) (*Store, error) {
		_ = s.Close(ctx)
		return nil, err
	}

	if cfg.PG.Enabled {
		primary, err := openPG(ctx, cfg.PG.URL, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG, s.Replica = primary, primary
		if cfg.PG.ReplicaURL != "" {
			if s.Replica, err = openPG(ctx, cfg.PG.ReplicaURL, cfg, s); err != nil {
				s.Replica = primary
				return fail(fmt.Errorf("replica: %w", err))
			}
		}
	}
	if cfg.CH.Enabled {
		ch, err := openCH(ctx, cfg, s)
		if err != nil {
			return fail(err)
		}
		s.CH = ch
	}
	if cfg.RDS.Enabled {
		rc, err := openRedis(ctx, cfg, s)
		if err != nil {
			return fail(err)
		}
		s.RDS = rc
	}
	return s, nil
}

// seam pairs a backend with the label its errors carry
type seam struct {
	name string
	v    any
}

func (s *Store) seams() []seam {
	out := make([]seam, 0, 4)
	if s.PG != nil {
		out = append(out, seam{"pg", s.PG})
	}
	if s.Replica != nil && s.Replica != s.PG {
		out = append(out, seam{"pg replica", s.Replica})
	}
	if s.CH != nil {
		out = append(out, seam{"ch", s.CH})
	}
	if s.RDS != nil {
		out = append(out, seam{"redis", redisPinger{s.RDS}})
	}
	return out
}

type redisPinger struct{ c *redis.Client }

func (r redisPinger) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }
func (r redisPinger) Close() error                   { return r.c.Close() }

// Guard pings every backend that can be pinged and joins the failures
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	var errs []error
	for _, b := range s.seams() {
		if p, ok := b.v.(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", b.name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Close releases backends in reverse open order
func (s *Store) Close(context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	all := s.seams()
	for i := len(all) - 1; i >= 0; i-- {
		if c, ok := all[i].v.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", all[i].name, err))
			}
		}
	}
	return errors.Join(errs...)
}
