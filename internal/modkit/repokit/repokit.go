// Package repokit holds the seams repositories bind to and the transaction wrappers modules stack
package repokit

import (
	"context"
	"time"

	perr "agora/internal/platform/errors"
	"agora/internal/platform/logger"
	"agora/internal/platform/store"

	"github.com/jpillora/backoff"
)

type (
	// Queryer is the read and write surface a repo is bound to
	Queryer = store.RowQuerier

	// TxRunner runs fn inside one transaction
	TxRunner = store.TxRunner

	// Rows is a query result set
	Rows = store.Rows

	// Row is a single row result
	Row = store.Row

	// CommandTag is the result of a write
	CommandTag = store.CommandTag
)

// Binder makes a T bound to q, a tx or the pool
type Binder[T any] interface {
	Bind(q Queryer) T
}

// BindFunc adapts a func to Binder
type BindFunc[T any] func(Queryer) T

// Bind calls f
func (f BindFunc[T]) Bind(q Queryer) T { return f(q) }

// BeginHook runs first inside every transaction, on the tx bound Queryer
type BeginHook func(ctx context.Context, q Queryer) error

// WithBeginHooks runs hooks before fn in the same transaction
func WithBeginHooks(inner TxRunner, hooks ...BeginHook) TxRunner {
	return &wrapped{TxRunner: inner, tx: func(ctx context.Context, fn func(Queryer) error) error {
		return inner.Tx(ctx, func(q Queryer) error {
			for _, h := range hooks {
				if err := h(ctx, q); err != nil {
					return err
				}
			}
			return fn(q)
		})
	}}
}

// RetryOptions bounds WithRetries
type RetryOptions struct {
	Attempts int
	Min, Max time.Duration
}

// WithRetries reruns the whole transaction when it fails on contention
// fn must not keep state across attempts
func WithRetries(inner TxRunner, o RetryOptions) TxRunner {
	if o.Attempts < 1 {
		o.Attempts = 1
	}
	if o.Min <= 0 {
		o.Min = 20 * time.Millisecond
	}
	if o.Max <= 0 {
		o.Max = 500 * time.Millisecond
	}
	return &wrapped{TxRunner: inner, tx: func(ctx context.Context, fn func(Queryer) error) error {
		b := &backoff.Backoff{Min: o.Min, Max: o.Max, Factor: 2, Jitter: true}
		var err error
		for attempt := 1; ; attempt++ {
			err = inner.Tx(ctx, fn)
			if err == nil || attempt >= o.Attempts || !perr.IsRetryable(err) {
				return err
			}
			wait := b.Duration()
			logger.C(ctx).Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("retrying transaction")
			select {
			case <-ctx.Done():
				return err
			case <-time.After(wait):
			}
		}
	}}
}

// wrapped delegates plain statements and swaps Tx
type wrapped struct {
	TxRunner
	tx func(ctx context.Context, fn func(Queryer) error) error
}

func (w *wrapped) Tx(ctx context.Context, fn func(q Queryer) error) error { return w.tx(ctx, fn) }
