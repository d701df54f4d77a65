package repo

import (
	"context"
	"time"

	"agora/internal/modkit/repokit"
	"agora/internal/services/comments/domain"
)

// Writer runs the multi statement comment writes inside one transaction
// either every statement commits or none does
type Writer struct {
	db     repokit.TxRunner
	binder repokit.Binder[Repo]
}

// NewWriter binds the writer to a transaction runner
func NewWriter(db repokit.TxRunner, binder repokit.Binder[Repo]) *Writer {
	if db == nil {
		panic("comments.Writer requires a non nil TxRunner")
	}
	if binder == nil {
		panic("comments.Writer requires a non nil Repo binder")
	}
	return &Writer{db: db, binder: binder}
}

// Created carries the ids assigned by CreateWithRevision
type Created struct {
	CommentID  int64
	RevisionID int64
}

// CreateWithRevision inserts the comment, its first revision and the pointer between them
// the revision timestamp is the comment posted time
func (w *Writer) CreateWithRevision(ctx context.Context, c domain.Comment, renderedHTML string) (Created, error) {
	var out Created
	err := w.db.Tx(ctx, func(q repokit.Queryer) error {
		r := w.binder.Bind(q)

		id, err := r.InsertComment(ctx, c.PageID, c.ParentID, c.AuthorActorID, c.PostedTime)
		if err != nil {
			return err
		}
		rev, err := r.InsertRevision(ctx, id, c.AuthorActorID, c.PostedTime, c.Wikitext, renderedHTML)
		if err != nil {
			return err
		}
		if err := r.SetLatestRevision(ctx, id, rev); err != nil {
			return err
		}
		out = Created{CommentID: id, RevisionID: rev}
		return nil
	})
	if err != nil {
		return Created{}, domain.StorageFailure(err, "create comment")
	}
	return out, nil
}

// AppendRevision writes a new revision and repoints the comment at it
// comment row fields other than the pointer stay untouched
func (w *Writer) AppendRevision(ctx context.Context, commentID, authorActorID int64, ts time.Time, rawText, renderedHTML string) (int64, error) {
	var rev int64
	err := w.db.Tx(ctx, func(q repokit.Queryer) error {
		r := w.binder.Bind(q)

		id, err := r.InsertRevision(ctx, commentID, authorActorID, ts, rawText, renderedHTML)
		if err != nil {
			return err
		}
		if err := r.SetLatestRevision(ctx, commentID, id); err != nil {
			return err
		}
		rev = id
		return nil
	})
	if err != nil {
		return 0, domain.StorageFailure(err, "append revision")
	}
	return rev, nil
}
