// Package repo provides postgres access for comments and their revisions
package repo

import (
	"context"
	"errors"
	"time"

	"agora/internal/modkit/repokit"
	perr "agora/internal/platform/errors"
	"agora/internal/platform/store"
	"agora/internal/services/comments/domain"
)

// Repo is the persistence surface for comments
// it holds no policy; callers decide who may write what
type Repo interface {
	InsertComment(ctx context.Context, pageID int64, parentID *int64, authorActorID int64, posted time.Time) (int64, error)
	InsertRevision(ctx context.Context, commentID, authorActorID int64, ts time.Time, rawText, renderedHTML string) (int64, error)
	SetLatestRevision(ctx context.Context, commentID, revisionID int64) error
	MarkDeleted(ctx context.Context, commentID, deletingActorID int64) error

	FetchByID(ctx context.Context, id int64) (Row, error)
	FetchByPage(ctx context.Context, pageID int64) ([]Row, error)
	FetchByAuthor(ctx context.Context, authorActorID int64) ([]Row, error)
	CountByPage(ctx context.Context, pageID int64) (int, error)
}

// Row is a comment joined with its latest revision
// content fields are empty when the comment has no revision yet
type Row struct {
	ID               int64
	PageID           int64
	ParentID         *int64
	AuthorActorID    int64
	PostedTime       time.Time
	LatestRevisionID *int64
	DeletedByActorID *int64
	Wikitext         string
	HTML             string
	RevisionTime     *time.Time
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

const selectJoined = `
select c.comment_id, c.comment_page_id, c.comment_parent_id, c.comment_actor,
	c.comment_posted_time, c.comment_latest_rev_id, c.comment_deleted_actor,
	r.revision_text, r.revision_html, r.revision_timestamp
from agora_comments c
left join agora_comment_revision r on r.revision_id = c.comment_latest_rev_id
`

func (r *queries) InsertComment(ctx context.Context, pageID int64, parentID *int64, authorActorID int64, posted time.Time) (int64, error) {
	const sql = `
insert into agora_comments
	(comment_page_id, comment_parent_id, comment_actor, comment_posted_time, comment_latest_rev_id)
values ($1, $2, $3, $4, null)
returning comment_id
`
	return store.Scalar[int64](ctx, r.q, sql, pageID, parentID, authorActorID, posted.UTC())
}

func (r *queries) InsertRevision(ctx context.Context, commentID, authorActorID int64, ts time.Time, rawText, renderedHTML string) (int64, error) {
	const sql = `
insert into agora_comment_revision
	(revision_comment_id, revision_actor, revision_timestamp, revision_text, revision_html)
values ($1, $2, $3, $4, $5)
returning revision_id
`
	return store.Scalar[int64](ctx, r.q, sql, commentID, authorActorID, ts.UTC(), rawText, renderedHTML)
}

func (r *queries) SetLatestRevision(ctx context.Context, commentID, revisionID int64) error {
	const sql = `update agora_comments set comment_latest_rev_id = $2 where comment_id = $1`
	err := store.ExecOne(ctx, r.q, sql, commentID, revisionID)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.NotFound("comment not found")
	}
	return err
}

func (r *queries) MarkDeleted(ctx context.Context, commentID, deletingActorID int64) error {
	// only live rows; a second delete must be distinguishable from a missing row
	const sql = `
update agora_comments set comment_deleted_actor = $2
where comment_id = $1 and comment_deleted_actor is null
`
	tag, err := r.q.Exec(ctx, sql, commentID, deletingActorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	const probe = `select comment_deleted_actor is not null from agora_comments where comment_id = $1`
	gone, err := store.One(ctx, r.q, scanBool, probe, commentID)
	switch {
	case errors.Is(err, perr.ErrNotFound):
		return domain.NotFound("comment not found")
	case err != nil:
		return err
	case gone:
		return domain.AlreadyDeleted("comment already deleted")
	}
	// lost a race with an undelete that this schema does not offer
	return perr.Newf(perr.ErrorCodeConflict, "comment %d changed concurrently", commentID)
}

func (r *queries) FetchByID(ctx context.Context, id int64) (Row, error) {
	return store.One(ctx, r.q, scanRow, selectJoined+`where c.comment_id = $1`, id)
}

func (r *queries) FetchByPage(ctx context.Context, pageID int64) ([]Row, error) {
	return store.Many(ctx, r.q, scanRow, selectJoined+`
where c.comment_page_id = $1
order by c.comment_posted_time asc, c.comment_id asc
`, pageID)
}

func (r *queries) FetchByAuthor(ctx context.Context, authorActorID int64) ([]Row, error) {
	return store.Many(ctx, r.q, scanRow, selectJoined+`
where c.comment_actor = $1
order by c.comment_posted_time asc, c.comment_id asc
`, authorActorID)
}

func (r *queries) CountByPage(ctx context.Context, pageID int64) (int, error) {
	// soft deleted rows count too
	const sql = `select count(*) from agora_comments where comment_page_id = $1`
	n, err := store.Scalar[int64](ctx, r.q, sql, pageID)
	return int(n), err
}

// scanRow maps one joined row column by column
// required columns that come back null fail with a malformed row error
func scanRow(row store.Row) (Row, error) {
	var (
		id, page, actor      *int64
		posted               *time.Time
		parent, rev, deleted *int64
		text, html           *string
		revTS                *time.Time
	)
	if err := row.Scan(&id, &page, &parent, &actor, &posted, &rev, &deleted, &text, &html, &revTS); err != nil {
		return Row{}, perr.WithReason(perr.Wrap(err, perr.ErrorCodeDB, "scan comment row"), domain.ReasonMalformedRow)
	}

	switch {
	case id == nil:
		return Row{}, domain.MalformedRow("comment_id is null")
	case page == nil:
		return Row{}, domain.MalformedRow("comment_page_id is null")
	case actor == nil:
		return Row{}, domain.MalformedRow("comment_actor is null")
	case posted == nil:
		return Row{}, domain.MalformedRow("comment_posted_time is null")
	}

	out := Row{
		ID:               *id,
		PageID:           *page,
		ParentID:         parent,
		AuthorActorID:    *actor,
		PostedTime:       posted.UTC(),
		LatestRevisionID: rev,
		DeletedByActorID: deleted,
		RevisionTime:     revTS,
	}
	if text != nil {
		out.Wikitext = *text
	}
	if html != nil {
		out.HTML = *html
	}
	return out, nil
}

func scanBool(row store.Row) (bool, error) {
	var b bool
	err := row.Scan(&b)
	return b, err
}

// Comment converts a row into a domain comment without author display info
func (r Row) Comment() domain.Comment {
	c := domain.Comment{
		ID:               r.ID,
		PageID:           r.PageID,
		ParentID:         r.ParentID,
		AuthorActorID:    r.AuthorActorID,
		Author:           domain.Author{ID: r.AuthorActorID},
		PostedTime:       r.PostedTime,
		LatestRevisionID: r.LatestRevisionID,
		DeletedByActorID: r.DeletedByActorID,
		Wikitext:         r.Wikitext,
		HTML:             r.HTML,
	}
	if r.RevisionTime != nil && r.RevisionTime.After(r.PostedTime) {
		t := r.RevisionTime.UTC()
		c.EditedAt = &t
	}
	return c
}
