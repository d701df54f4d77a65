// Package service contains comment policy and write workflows
package service

import (
	"context"
	"time"

	"agora/internal/core/normalize"
	"agora/internal/modkit/repokit"
	"agora/internal/platform/logger"
	"agora/internal/platform/store"
	ptime "agora/internal/platform/time"
	"agora/internal/services/comments/domain"
	"agora/internal/services/comments/reader"
	"agora/internal/services/comments/repo"

	"github.com/google/uuid"
)

// Service defines the comments service contract
type Service interface {
	domain.ServicePort

	CanDisplayComments(ctx context.Context, pageID int64) (bool, error)
	UserCanComment(ctx context.Context, id domain.Identity) (bool, error)
	UserCanDelete(id domain.Identity) bool
	GetCommentCount(ctx context.Context, pageID int64) (int, error)
	Save(ctx context.Context, c domain.Comment) (domain.Comment, error)
	SoftDeleteComment(ctx context.Context, commentID, actingActorID int64) error
}

// Options carries the collaborators and policy knobs
type Options struct {
	Renderer domain.Renderer       // required
	Identity domain.IdentityLookup // required
	Access   domain.AccessControl  // required
	Pages    domain.PageLookup     // required
	Activity domain.ActivitySink   // optional, nil drops events

	// Replica serves reads; nil reads from the primary
	Replica repokit.Queryer

	// ContentNamespaces lists page namespaces that show comments; empty means {0}
	ContentNamespaces []int

	// RenderAttempts bounds render tries per write; 0 means 3
	RenderAttempts int
	// RenderBackoffMin and RenderBackoffMax bound the sleep between tries
	RenderBackoffMin time.Duration
	RenderBackoffMax time.Duration

	// UnknownName labels authors that cannot be resolved
	UnknownName string

	// Now is the clock; nil means time.Now
	Now func() time.Time
}

// Svc implements the comments service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Repo]

	Repo   repo.Repo
	reader *reader.Repository
	writer *repo.Writer
	text   *normalize.Normalizer

	renderer   domain.Renderer
	access     domain.AccessControl
	pages      domain.PageLookup
	activity   domain.ActivitySink
	namespaces map[int]struct{}

	renderAttempts int
	backoffMin     time.Duration
	backoffMax     time.Duration
	now            func() time.Time
	log            *logger.Logger
}

var _ Service = (*Svc)(nil)

// New constructs a comments service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opts Options) *Svc {
	if db == nil {
		panic("comments.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("comments.Service requires a non nil Repo binder")
	}
	if opts.Renderer == nil {
		panic("comments.Service requires a non nil Renderer")
	}
	if opts.Identity == nil {
		panic("comments.Service requires a non nil IdentityLookup")
	}
	if opts.Access == nil {
		panic("comments.Service requires a non nil AccessControl")
	}
	if opts.Pages == nil {
		panic("comments.Service requires a non nil PageLookup")
	}

	var reads repokit.Queryer = db
	if opts.Replica != nil {
		reads = opts.Replica
	}

	ns := opts.ContentNamespaces
	if len(ns) == 0 {
		ns = []int{0}
	}
	nsSet := make(map[int]struct{}, len(ns))
	for _, n := range ns {
		nsSet[n] = struct{}{}
	}

	s := &Svc{
		db:             db,
		binder:         binder,
		Repo:           binder.Bind(db),
		reader:         reader.New(reads, binder, opts.Identity, opts.UnknownName),
		writer:         repo.NewWriter(db, binder),
		text:           normalize.New(),
		renderer:       opts.Renderer,
		access:         opts.Access,
		pages:          opts.Pages,
		activity:       opts.Activity,
		namespaces:     nsSet,
		renderAttempts: opts.RenderAttempts,
		backoffMin:     opts.RenderBackoffMin,
		backoffMax:     opts.RenderBackoffMax,
		now:            opts.Now,
		log:            logger.Named("comments"),
	}
	if s.renderAttempts <= 0 {
		s.renderAttempts = 3
	}
	if s.backoffMin <= 0 {
		s.backoffMin = 100 * time.Millisecond
	}
	if s.backoffMax <= 0 {
		s.backoffMax = 2 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Reader exposes the read side for callers that only need lookups
func (s *Svc) Reader() *reader.Repository { return s.reader }

// CanDisplayComments reports whether a page shows comments at all
// a restricted page stays closed no matter who asks
func (s *Svc) CanDisplayComments(ctx context.Context, pageID int64) (bool, error) {
	page, ok, err := s.pages.Page(ctx, pageID)
	if err != nil {
		return false, domain.StorageFailure(err, "page lookup")
	}
	if !ok {
		return false, nil
	}
	if _, allowed := s.namespaces[page.Namespace]; !allowed {
		return false, nil
	}
	level, err := s.access.PageRestriction(ctx, pageID, domain.ActionCommenting)
	if err != nil {
		return false, domain.StorageFailure(err, "page restriction")
	}
	return level != domain.RestrictionRestricted, nil
}

// UserCanComment needs the comment right and no block covering comments
func (s *Svc) UserCanComment(ctx context.Context, id domain.Identity) (bool, error) {
	if !id.Has(domain.RightComment) {
		return false, nil
	}
	blocked, err := s.access.IsBlockedFor(ctx, id, domain.BlockActionComments)
	if err != nil {
		return false, domain.StorageFailure(err, "block lookup")
	}
	return !blocked, nil
}

// UserCanDelete is the moderation right; authorship plays no part
func (s *Svc) UserCanDelete(id domain.Identity) bool {
	return id.Has(domain.RightModerate)
}

// GetCommentCount counts every stored comment on the page, deleted ones too
func (s *Svc) GetCommentCount(ctx context.Context, pageID int64) (int, error) {
	return s.reader.Count(ctx, pageID)
}

// Save creates c when it has no id, otherwise appends a revision with its content
// rendering happens before the transaction opens
func (s *Svc) Save(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	return s.save(ctx, c, c.AuthorActorID)
}

func (s *Svc) save(ctx context.Context, c domain.Comment, editor int64) (domain.Comment, error) {
	page, ok, err := s.pages.Page(ctx, c.PageID)
	if err != nil {
		return c, domain.StorageFailure(err, "page lookup")
	}
	if !ok {
		page = domain.Page{ID: c.PageID}
	}

	if !c.IsSaved() {
		html, err := s.render(ctx, c.Wikitext, page, c.AuthorActorID)
		if err != nil {
			return c, err
		}
		ids, err := s.writer.CreateWithRevision(ctx, c, html)
		if err != nil {
			return c, err
		}
		saved, err := c.WithID(ids.CommentID)
		if err != nil {
			return c, err
		}
		saved = saved.WithRevision(domain.Revision{
			ID:            ids.RevisionID,
			CommentID:     ids.CommentID,
			AuthorActorID: c.AuthorActorID,
			Timestamp:     c.PostedTime,
			RawText:       c.Wikitext,
			RenderedHTML:  html,
		})
		s.record(ctx, domain.EventCreated, saved, c.AuthorActorID, ids.RevisionID)
		return saved, nil
	}

	html, err := s.render(ctx, c.Wikitext, page, editor)
	if err != nil {
		return c, err
	}
	ts := s.now().UTC()
	rev, err := s.writer.AppendRevision(ctx, c.ID, editor, ts, c.Wikitext, html)
	if err != nil {
		return c, err
	}
	edited := c.WithRevision(domain.Revision{
		ID:            rev,
		CommentID:     c.ID,
		AuthorActorID: editor,
		Timestamp:     ts,
		RawText:       c.Wikitext,
		RenderedHTML:  html,
	})
	edited.EditedAt = ptime.Ptr(ts)
	s.record(ctx, domain.EventEdited, edited, editor, rev)
	return edited, nil
}

// SoftDeleteComment tombstones a comment; content and revisions stay
func (s *Svc) SoftDeleteComment(ctx context.Context, commentID, actingActorID int64) error {
	if commentID <= 0 {
		return domain.NotFound("comment not found")
	}
	// page id for the event; also gives a clean not found before the update
	c, ok, err := s.reader.FindByID(store.WithPrimary(ctx), commentID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("comment not found")
	}
	if err := s.Repo.MarkDeleted(ctx, commentID, actingActorID); err != nil {
		return domain.StorageFailure(err, "mark deleted")
	}
	s.record(ctx, domain.EventDeleted, c, actingActorID, 0)
	return nil
}

// record hands an event to the activity sink; failures are logged only
func (s *Svc) record(ctx context.Context, kind domain.EventKind, c domain.Comment, actor, revision int64) {
	if s.activity == nil {
		return
	}
	ev := domain.Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		CommentID:  c.ID,
		PageID:     c.PageID,
		ActorID:    actor,
		RevisionID: revision,
		At:         s.now().UTC(),
	}
	if err := s.activity.Record(ctx, ev); err != nil {
		s.log.Warn().Err(err).
			Str("kind", string(kind)).
			Int64("comment_id", c.ID).
			Msg("activity sink rejected event")
	}
}
