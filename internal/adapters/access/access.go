// Package access answers page, restriction, block and rights questions from postgres
package access

import (
	"context"
	"errors"

	perr "agora/internal/platform/errors"
	"agora/internal/platform/store"
	"agora/internal/services/comments/domain"
)

// Options tunes the PG access adapter
type Options struct {
	// AnonymousRights are granted to actor 0
	AnonymousRights []string
}

// PG implements the comment policy ports over the site tables
type PG struct {
	q    store.RowQuerier
	anon []string
}

var (
	_ domain.AccessControl = (*PG)(nil)
	_ domain.PageLookup    = (*PG)(nil)
	_ domain.Authority     = (*PG)(nil)
)

// New binds the adapter to a querier
// restriction writes go through Exec, which the read router sends to the primary
func New(q store.RowQuerier, o Options) *PG {
	if q == nil {
		panic("access.PG requires a non nil RowQuerier")
	}
	return &PG{q: q, anon: append([]string(nil), o.AnonymousRights...)}
}

// Page returns page metadata or false when the page does not exist
func (p *PG) Page(ctx context.Context, pageID int64) (domain.Page, bool, error) {
	if pageID < 0 {
		return domain.Page{}, false, nil
	}
	page, err := store.One(ctx, p.q, scanPage,
		`select page_id, page_namespace, page_title from agora_pages where page_id = $1`, pageID)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Page{}, false, nil
	}
	if err != nil {
		return domain.Page{}, false, perr.FromPostgres(err, "page lookup")
	}
	return page, true, nil
}

func scanPage(r store.Row) (domain.Page, error) {
	var pg domain.Page
	err := r.Scan(&pg.ID, &pg.Namespace, &pg.Title)
	return pg, err
}

// PageRestriction returns the level set for action; pages with no row are open
func (p *PG) PageRestriction(ctx context.Context, pageID int64, action string) (domain.RestrictionLevel, error) {
	level, err := store.One(ctx, p.q, scanString,
		`select pr_level from agora_page_restrictions where pr_page = $1 and pr_type = $2`, pageID, action)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.RestrictionOpen, nil
	}
	if err != nil {
		return "", perr.FromPostgres(err, "page restriction lookup")
	}
	if domain.RestrictionLevel(level) == domain.RestrictionRestricted {
		return domain.RestrictionRestricted, nil
	}
	return domain.RestrictionOpen, nil
}

// SetPageRestriction upserts the level for action on a page
func (p *PG) SetPageRestriction(ctx context.Context, pageID int64, action string, level domain.RestrictionLevel) error {
	switch level {
	case domain.RestrictionOpen, domain.RestrictionRestricted:
	default:
		return perr.InvalidArgf("unknown restriction level %q", level)
	}
	_, err := p.q.Exec(ctx, `
insert into agora_page_restrictions (pr_page, pr_type, pr_level)
values ($1, $2, $3)
on conflict (pr_page, pr_type) do update set pr_level = excluded.pr_level`,
		pageID, action, string(level))
	if err != nil {
		return perr.FromPostgres(err, "set page restriction")
	}
	return nil
}

type blockRow struct {
	sitewide bool
	actions  []string
}

// IsBlockedFor reports whether an unexpired block on the actor covers capability
// anonymous callers are never matched; address blocks live upstream
func (p *PG) IsBlockedFor(ctx context.Context, id domain.Identity, capability string) (bool, error) {
	if id.ActorID == 0 {
		return false, nil
	}
	blocks, err := store.Many(ctx, p.q, scanBlock, `
select block_sitewide, block_actions
from agora_blocks
where block_target_actor = $1
  and (block_expiry is null or block_expiry > now())`, id.ActorID)
	if err != nil {
		return false, perr.FromPostgres(err, "block lookup")
	}
	for _, b := range blocks {
		if (domain.Block{Sitewide: b.sitewide, Actions: b.actions}).Covers(capability) {
			return true, nil
		}
	}
	return false, nil
}

func scanBlock(r store.Row) (blockRow, error) {
	var b blockRow
	err := r.Scan(&b.sitewide, &b.actions)
	return b, err
}

// Identity loads the rights of an actor
func (p *PG) Identity(ctx context.Context, actorID int64) (domain.Identity, error) {
	if actorID <= 0 {
		return domain.Identity{Rights: append([]string(nil), p.anon...)}, nil
	}
	rights, err := store.Many(ctx, p.q, scanString,
		`select ar_right from agora_actor_rights where ar_actor = $1 order by ar_right`, actorID)
	if err != nil {
		return domain.Identity{}, perr.FromPostgres(err, "rights lookup")
	}
	return domain.Identity{ActorID: actorID, Rights: rights}, nil
}

func scanString(r store.Row) (string, error) {
	var s string
	err := r.Scan(&s)
	return s, err
}
