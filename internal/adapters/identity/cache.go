package identity

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"agora/internal/platform/logger"
	"agora/internal/services/comments/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how stale a cached display name can get
const DefaultTTL = 10 * time.Minute

const keyPrefix = "agora:actor:"

// Cached fronts another lookup with redis
// one MGET per call, and the inner lookup only sees the misses
type Cached struct {
	rdb   *redis.Client
	inner domain.IdentityLookup
	ttl   time.Duration
	log   logger.Logger
}

var _ domain.IdentityLookup = (*Cached)(nil)

// NewCached wraps inner; a ttl of zero means DefaultTTL
func NewCached(rdb *redis.Client, inner domain.IdentityLookup, ttl time.Duration) *Cached {
	if rdb == nil {
		panic("identity.Cached requires a non nil redis client")
	}
	if inner == nil {
		panic("identity.Cached requires a non nil inner lookup")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cached{rdb: rdb, inner: inner, ttl: ttl, log: *logger.Named("identity")}
}

func key(id int64) string { return keyPrefix + strconv.FormatInt(id, 10) }

// Resolve serves hits from redis and fills misses from the inner lookup
// redis failures fall through to the inner lookup
func (c *Cached) Resolve(ctx context.Context, ids []int64) (map[int64]domain.Author, error) {
	out := make(map[int64]domain.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	misses := ids
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		c.log.Warn().Err(err).Int("ids", len(ids)).Msg("identity cache read failed")
	} else {
		misses = misses[:0:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			var a domain.Author
			if err := json.Unmarshal([]byte(s), &a); err != nil {
				misses = append(misses, ids[i])
				continue
			}
			a.ID = ids[i]
			out[ids[i]] = a
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	found, err := c.inner.Resolve(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, a := range found {
		out[id] = a
	}
	c.store(ctx, found)
	return out, nil
}

// Forget drops a cached actor, e.g. after a rename
func (c *Cached) Forget(ctx context.Context, ids ...int64) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cached) store(ctx context.Context, found map[int64]domain.Author) {
	if len(found) == 0 {
		return
	}
	_, err := c.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for id, a := range found {
			b, err := json.Marshal(a)
			if err != nil {
				continue
			}
			p.Set(ctx, key(id), b, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.log.Warn().Err(err).Int("ids", len(found)).Msg("identity cache write failed")
	}
}
