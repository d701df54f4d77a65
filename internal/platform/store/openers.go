package store

import (
	"context"
	"fmt"
	"time"

	chx "agora/internal/platform/store/ch"
	"agora/internal/platform/store/pg"

	"github.com/jpillora/backoff"
	"github.com/redis/go-redis/v9"
)

const (
	defaultConnectRetries = 20
	defaultPingTimeout    = 3 * time.Second
	backoffStart          = 150 * time.Millisecond
	backoffCeiling        = 2 * time.Second
)

// openPG opens pg at url and wraps it with our sql adapter
// the adapter is published only after the pool answers a ping
func openPG(ctx context.Context, url string, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      url,
		AppName:  cfg.AppName,
		MaxConns: cfg.PG.MaxConns,
		Slow:     cfg.PG.SlowQuery,
	}, tracer)
	if err != nil {
		return nil, err
	}

	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = defaultConnectRetries
	}
	timeout := cfg.PG.PingTimeout
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}

	// ping the pool directly so the probe never shows up as a traced query
	err = retry(ctx, attempts, func() error {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return p.Pool.Ping(toCtx)
	})
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return newPGAdapter(p), nil
}

func openCH(ctx context.Context, cfg Config, _ *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.AppName})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}

func openRedis(ctx context.Context, cfg Config, s *Store) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RDS.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.AppName != "" {
		opts.ClientName = cfg.AppName
	}
	rc := redis.NewClient(opts)

	err = retry(ctx, 5, func() error {
		toCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
		defer cancel()
		return rc.Ping(toCtx).Err()
	})
	if err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	s.Log.Debug().Str("addr", opts.Addr).Int("db", opts.DB).Msg("redis connected")
	return rc, nil
}

// retry runs fn until it succeeds, attempts run out, or ctx ends
// sleeps between attempts grow exponentially with jitter
func retry(ctx context.Context, attempts int, fn func() error) error {
	b := &backoff.Backoff{Min: backoffStart, Max: backoffCeiling, Factor: 2, Jitter: true}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if i == attempts-1 {
			break
		}
		timer := time.NewTimer(b.Duration())
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
