package service

import (
	"context"
	"strings"

	"agora/internal/platform/store"
	"agora/internal/services/comments/domain"
)

// List returns the thread forest of a page
// deleted comments are only visible to moderators who ask for them
func (s *Svc) List(ctx context.Context, in domain.ListInput) (domain.ListOutput, error) {
	if in.PageID < 0 {
		return domain.ListOutput{}, domain.InvalidArgument("page id must not be negative")
	}
	ok, err := s.CanDisplayComments(ctx, in.PageID)
	if err != nil {
		return domain.ListOutput{}, err
	}
	if !ok {
		return domain.ListOutput{}, domain.CommentsDisabled("comments are not available on this page")
	}

	isMod := s.UserCanDelete(in.Actor)
	col, err := s.reader.FindByPage(ctx, in.PageID, in.IncludeDeleted && isMod)
	if err != nil {
		return domain.ListOutput{}, err
	}
	return domain.ListOutput{Comments: col, IsMod: isMod}, nil
}

// Get returns one comment; deleted ones only to moderators
func (s *Svc) Get(ctx context.Context, commentID int64, actor domain.Identity) (domain.Comment, error) {
	c, ok, err := s.reader.FindByID(ctx, commentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !ok || (c.IsDeleted() && !s.UserCanDelete(actor)) {
		return domain.Comment{}, domain.NotFound("comment not found")
	}
	return c, nil
}

// Post creates a top level comment or a reply to one
// every check runs before anything is written
func (s *Svc) Post(ctx context.Context, in domain.PostInput, actor domain.Identity) (domain.Comment, error) {
	can, err := s.UserCanComment(ctx, actor)
	if err != nil {
		return domain.Comment{}, err
	}
	if !can {
		return domain.Comment{}, domain.NotAllowed("you cannot post comments")
	}

	if (in.PageID == nil) == (in.ParentID == nil) {
		return domain.Comment{}, domain.MalformedInput("exactly one of page_id and parent_id is required")
	}
	text := s.text.Normalize(in.Wikitext)
	if strings.TrimSpace(text) == "" {
		return domain.Comment{}, domain.MalformedInput("comment text is empty")
	}

	var pageID int64
	if in.ParentID != nil {
		parent, ok, err := s.reader.FindByID(store.WithPrimary(ctx), *in.ParentID)
		if err != nil {
			return domain.Comment{}, err
		}
		if !ok {
			return domain.Comment{}, domain.NotFound("parent comment not found")
		}
		if parent.IsDeleted() {
			return domain.Comment{}, domain.ParentDeleted("cannot reply to a deleted comment")
		}
		if parent.IsReply() {
			return domain.Comment{}, domain.ParentIsReply("cannot reply to a reply")
		}
		pageID = parent.PageID
	} else {
		pageID = *in.PageID
	}

	open, err := s.CanDisplayComments(ctx, pageID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !open {
		return domain.Comment{}, domain.CommentsDisabled("comments are not available on this page")
	}

	c, err := domain.NewComment(domain.NewCommentInput{
		PageID:        pageID,
		ParentID:      in.ParentID,
		AuthorActorID: actor.ActorID,
		Wikitext:      text,
		PostedTime:    s.now().UTC(),
	})
	if err != nil {
		return domain.Comment{}, err
	}
	saved, err := s.save(ctx, c, actor.ActorID)
	if err != nil {
		return domain.Comment{}, err
	}
	return s.withAuthor(ctx, saved), nil
}

// Edit appends a revision; the author or a moderator may edit
func (s *Svc) Edit(ctx context.Context, in domain.EditInput, actor domain.Identity) (domain.Comment, error) {
	if actor.ActorID == 0 {
		return domain.Comment{}, domain.NotAllowed("anonymous callers cannot edit comments")
	}
	c, ok, err := s.reader.FindByID(store.WithPrimary(ctx), in.CommentID)
	if err != nil {
		return domain.Comment{}, err
	}
	if !ok {
		return domain.Comment{}, domain.NotFound("comment not found")
	}
	if c.AuthorActorID != actor.ActorID && !s.UserCanDelete(actor) {
		return domain.Comment{}, domain.NotAllowed("only the author or a moderator can edit this comment")
	}
	if c.IsDeleted() {
		return domain.Comment{}, domain.AlreadyDeleted("deleted comments cannot be edited")
	}

	changed, err := c.WithContent(s.text.Normalize(in.Wikitext))
	if err != nil {
		return domain.Comment{}, err
	}
	return s.save(ctx, changed, actor.ActorID)
}

// Delete soft deletes a comment for a moderator
func (s *Svc) Delete(ctx context.Context, commentID int64, actor domain.Identity) error {
	if actor.ActorID == 0 || !s.UserCanDelete(actor) {
		return domain.NotAllowed("you cannot delete comments")
	}
	return s.SoftDeleteComment(ctx, commentID, actor.ActorID)
}

// ListByAuthor returns the comment history of an actor
func (s *Svc) ListByAuthor(ctx context.Context, authorActorID int64, actor domain.Identity) (*domain.Collection, error) {
	return s.reader.FindByAuthor(ctx, authorActorID, s.UserCanDelete(actor))
}

// Count returns the badge count of a page
func (s *Svc) Count(ctx context.Context, pageID int64) (domain.CountOutput, error) {
	if pageID < 0 {
		return domain.CountOutput{}, domain.InvalidArgument("page id must not be negative")
	}
	ok, err := s.CanDisplayComments(ctx, pageID)
	if err != nil {
		return domain.CountOutput{}, err
	}
	if !ok {
		return domain.CountOutput{}, domain.CommentsDisabled("comments are not available on this page")
	}
	n, err := s.GetCommentCount(ctx, pageID)
	if err != nil {
		return domain.CountOutput{}, err
	}
	return domain.CountOutput{PageID: pageID, Count: n}, nil
}

// SetCommentsEnabled opens or restricts commenting on a page
func (s *Svc) SetCommentsEnabled(ctx context.Context, in domain.SetCommentingInput, actor domain.Identity) error {
	if actor.ActorID == 0 || !actor.Has(domain.RightProtect) {
		return domain.NotAllowed("you cannot change commenting on this page")
	}
	if in.Enabled == nil {
		return domain.MalformedInput("enabled is required")
	}
	_, ok, err := s.pages.Page(ctx, in.PageID)
	if err != nil {
		return domain.StorageFailure(err, "page lookup")
	}
	if !ok {
		return domain.NotFound("page not found")
	}

	level := domain.RestrictionRestricted
	if *in.Enabled {
		level = domain.RestrictionOpen
	}
	if err := s.access.SetPageRestriction(ctx, in.PageID, domain.ActionCommenting, level); err != nil {
		return domain.StorageFailure(err, "set page restriction")
	}
	s.log.Info().Int64("page_id", in.PageID).Str("level", string(level)).Int64("actor_id", actor.ActorID).Msg("commenting changed")
	return nil
}

// withAuthor fills display info for a freshly written comment
func (s *Svc) withAuthor(ctx context.Context, c domain.Comment) domain.Comment {
	fresh, ok, err := s.reader.FindByID(store.WithPrimary(ctx), c.ID)
	if err != nil || !ok {
		return c
	}
	return fresh
}
