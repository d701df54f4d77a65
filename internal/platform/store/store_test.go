package store

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seamStub is a TxRunner that optionally pings and closes
type seamStub struct {
	countingQ
	pingErr  error
	closeErr error
	closed   *[]string
	name     string
}

func (s *seamStub) Ping(context.Context) error { return s.pingErr }
func (s *seamStub) Close() error {
	if s.closed != nil {
		*s.closed = append(*s.closed, s.name)
	}
	return s.closeErr
}

func TestOpen_RedisOnly(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	ctx := context.Background()

	s, err := Open(ctx, Config{AppName: "agora-test", RDS: RedisConfig{Enabled: true, URL: "redis://" + mr.Addr() + "/0"}})
	require.NoError(t, err)
	require.NotNil(t, s.RDS)
	assert.Nil(t, s.PG)
	assert.Nil(t, s.Replica)
	assert.Nil(t, s.CH)

	require.NoError(t, s.Guard(ctx))
	require.NoError(t, s.Close(ctx))
}

func TestOpen_Failures(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	cases := map[string]Config{
		"bad redis url": {RDS: RedisConfig{Enabled: true, URL: "http://nope"}},
		"bad pg url":    {PG: PGConfig{Enabled: true, URL: "://bad", MaxConns: 1}},
		"pg fails before redis": {
			PG:  PGConfig{Enabled: true, URL: "://bad"},
			RDS: RedisConfig{Enabled: true, URL: "redis://" + mr.Addr()},
		},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := Open(context.Background(), cfg)
			assert.Error(t, err)
			assert.Nil(t, s)
		})
	}
}

func TestOpen_WithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s, err := Open(context.Background(), Config{}, WithLogger(zerolog.New(&buf)))
	require.NoError(t, err)

	s.Log.Info().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.NoError(t, s.Close(context.Background()))
}

func TestGuard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	var nilStore *Store
	assert.Error(t, nilStore.Guard(ctx))
	assert.NoError(t, (&Store{}).Guard(ctx))
	assert.NoError(t, (&Store{PG: &countingQ{}}).Guard(ctx), "non pinger is skipped")
	assert.NoError(t, (&Store{PG: &seamStub{}}).Guard(ctx))

	pg := &seamStub{pingErr: errors.New("boom")}
	err := (&Store{PG: pg, Replica: pg}).Guard(ctx)
	require.Error(t, err)
	assert.Equal(t, "pg: boom", err.Error(), "shared replica is pinged once")

	err = (&Store{PG: &seamStub{}, Replica: &seamStub{pingErr: errors.New("lag")}}).Guard(ctx)
	require.Error(t, err)
	assert.Equal(t, "pg replica: lag", err.Error())
}

func TestGuard_Redis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	s, err := Open(context.Background(), Config{RDS: RedisConfig{Enabled: true, URL: "redis://" + mr.Addr()}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	mr.Close()
	err = s.Guard(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis: ")
}

func TestClose_ReverseOrder(t *testing.T) {
	t.Parallel()

	var closed []string
	s := &Store{
		PG:      &seamStub{name: "primary", closed: &closed},
		Replica: &seamStub{name: "replica", closed: &closed, closeErr: errors.New("stuck")},
	}
	err := s.Close(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pg replica: stuck")
	assert.Equal(t, []string{"replica", "primary"}, closed)

	var nilStore *Store
	assert.NoError(t, nilStore.Close(context.Background()))
}
