// Package activity writes comment lifecycle events to clickhouse
package activity

import (
	"context"
	"time"

	perr "agora/internal/platform/errors"
	"agora/internal/platform/store"
	"agora/internal/services/comments/domain"

	"github.com/google/uuid"
)

// Table is the clickhouse table events land in
const Table = "comment_events"

// Sink records events through the store clickhouse seam
type Sink struct {
	ch store.Clickhouse
}

var _ domain.ActivitySink = (*Sink)(nil)

// New binds a sink to a clickhouse seam
func New(ch store.Clickhouse) *Sink {
	if ch == nil {
		panic("activity.Sink requires a non nil Clickhouse")
	}
	return &Sink{ch: ch}
}

// Record inserts one event; a missing or unparsable id gets a fresh one
func (s *Sink) Record(ctx context.Context, ev domain.Event) error {
	id, err := uuid.Parse(ev.ID)
	if err != nil {
		id = uuid.New()
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	row := []any{id, string(ev.Kind), ev.CommentID, ev.PageID, ev.ActorID, ev.RevisionID, at.UTC()}
	if err := s.ch.Insert(ctx, Table, [][]any{row}); err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "record comment event")
	}
	return nil
}

// Recent returns the latest events of a page, newest first
func (s *Sink) Recent(ctx context.Context, pageID int64, limit int) ([]domain.Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	rows, err := s.ch.Query(ctx, `
SELECT event_id, kind, comment_id, page_id, actor_id, revision_id, at
FROM `+Table+`
WHERE page_id = ?
ORDER BY at DESC, event_id
LIMIT ?`, pageID, limit)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "query comment events")
	}
	defer rows.Close()

	var out []domain.Event
	for rows.Next() {
		var (
			id   uuid.UUID
			kind string
			ev   domain.Event
		)
		if err := rows.Scan(&id, &kind, &ev.CommentID, &ev.PageID, &ev.ActorID, &ev.RevisionID, &ev.At); err != nil {
			return nil, perr.Wrap(err, perr.ErrorCodeDB, "scan comment event")
		}
		ev.ID = id.String()
		ev.Kind = domain.EventKind(kind)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "iterate comment events")
	}
	return out, nil
}
