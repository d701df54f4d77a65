// Package identity resolves comment author display info from postgres with an optional redis cache
package identity

import (
	"context"

	"agora/internal/platform/store"
	"agora/internal/services/comments/domain"
)

// PG reads actors straight from postgres
type PG struct {
	q store.RowQuerier
}

var _ domain.IdentityLookup = (*PG)(nil)

// NewPG binds the lookup to a querier, usually the read router
func NewPG(q store.RowQuerier) *PG {
	if q == nil {
		panic("identity.PG requires a non nil RowQuerier")
	}
	return &PG{q: q}
}

type actorRow struct {
	id     int64
	author domain.Author
}

const selectActors = `
select actor_id, actor_name, actor_avatar_url
from agora_actors
where actor_id = any($1)`

// Resolve fetches every known id in one query
func (p *PG) Resolve(ctx context.Context, ids []int64) (map[int64]domain.Author, error) {
	out := make(map[int64]domain.Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := store.Many(ctx, p.q, scanActor, selectActors, ids)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.id] = r.author
	}
	return out, nil
}

func scanActor(r store.Row) (actorRow, error) {
	var a actorRow
	if err := r.Scan(&a.id, &a.author.Name, &a.author.AvatarURL); err != nil {
		return actorRow{}, err
	}
	a.author.ID = a.id
	return a, nil
}
