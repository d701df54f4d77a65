// Package domain holds comment core types independent of transport or storage
package domain

import (
	"strings"
	"time"

	perr "agora/internal/platform/errors"
)

// Rights and block actions understood by the comment policy
const (
	// RightComment allows posting comments
	RightComment = "comments"

	// RightModerate allows deleting any comment
	RightModerate = "comments-admin"

	// RightProtect allows toggling comments on a page
	RightProtect = "protect"

	// BlockActionComments is the partial block action covering commenting
	BlockActionComments = "agora-comments"

	// ActionCommenting is the page restriction action consulted for comments
	ActionCommenting = "commenting"
)

// RestrictionLevel is the page level access control for an action
type RestrictionLevel string

const (
	// RestrictionOpen lets ordinary users act
	RestrictionOpen RestrictionLevel = "open"

	// RestrictionRestricted closes the action for everyone, privileged roles included
	RestrictionRestricted RestrictionLevel = "restricted"
)

// Page is the slice of page metadata the comment policy needs
type Page struct {
	ID        int64  `json:"id"`
	Namespace int    `json:"namespace"`
	Title     string `json:"title"`
}

// Identity is the acting user as seen by the policy checks
// ActorID 0 is the anonymous caller
type Identity struct {
	ActorID int64
	Rights  []string
}

// Anonymous returns the identity of a caller with no actor
func Anonymous() Identity { return Identity{} }

// Has reports whether the identity holds right
func (i Identity) Has(right string) bool {
	for _, r := range i.Rights {
		if r == right {
			return true
		}
	}
	return false
}

// Block describes an active block on an actor
type Block struct {
	Sitewide bool
	Actions  []string
}

// Covers reports whether the block prevents the given action
func (b Block) Covers(action string) bool {
	if b.Sitewide {
		return true
	}
	for _, a := range b.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Author is the hydrated display identity of a comment author
type Author struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar,omitempty"`
}

// Revision is an immutable content snapshot of a comment
type Revision struct {
	ID            int64
	CommentID     int64
	AuthorActorID int64
	Timestamp     time.Time
	RawText       string
	RenderedHTML  string
}

// Comment is a top level post or reply attached to a page
// values are built through NewComment and never mutated in place
type Comment struct {
	ID               int64      `json:"id"`
	PageID           int64      `json:"pageId"`
	ParentID         *int64     `json:"parent"`
	AuthorActorID    int64      `json:"-"`
	Author           Author     `json:"actor"`
	PostedTime       time.Time  `json:"created"`
	LatestRevisionID *int64     `json:"-"`
	DeletedByActorID *int64     `json:"deletedActor"`
	Wikitext         string     `json:"wikitext"`
	HTML             string     `json:"html"`
	EditedAt         *time.Time `json:"edited,omitempty"`
}

// NewCommentInput names every field a fresh comment is built from
type NewCommentInput struct {
	PageID        int64
	ParentID      *int64
	AuthorActorID int64
	Wikitext      string
	PostedTime    time.Time
}

// NewComment builds an unsaved comment
func NewComment(in NewCommentInput) (Comment, error) {
	if in.PageID < 0 {
		return Comment{}, InvalidArgument("page id must not be negative")
	}
	if in.ParentID != nil && *in.ParentID <= 0 {
		return Comment{}, MalformedInput("parent id must be positive")
	}
	if strings.TrimSpace(in.Wikitext) == "" {
		return Comment{}, MalformedInput("comment text is empty")
	}
	posted := in.PostedTime
	if posted.IsZero() {
		posted = time.Now().UTC()
	}
	return Comment{
		PageID:        in.PageID,
		ParentID:      copyID(in.ParentID),
		AuthorActorID: in.AuthorActorID,
		Author:        Author{ID: in.AuthorActorID},
		PostedTime:    posted,
		Wikitext:      in.Wikitext,
	}, nil
}

// IsSaved reports whether the store assigned an id
func (c Comment) IsSaved() bool { return c.ID > 0 }

// IsDeleted reports whether the comment is soft deleted
func (c Comment) IsDeleted() bool { return c.DeletedByActorID != nil }

// IsReply reports whether the comment has a parent
func (c Comment) IsReply() bool { return c.ParentID != nil }

// WithID returns a copy carrying the store assigned id
// an id is assigned exactly once
func (c Comment) WithID(id int64) (Comment, error) {
	if c.IsSaved() {
		return c, perr.Newf(perr.ErrorCodeConflict, "comment %d already has an id", c.ID)
	}
	if id <= 0 {
		return c, InvalidArgument("comment id must be positive")
	}
	c.ID = id
	return c, nil
}

// WithContent returns a copy with new source text and cleared rendered html
func (c Comment) WithContent(wikitext string) (Comment, error) {
	if strings.TrimSpace(wikitext) == "" {
		return c, MalformedInput("comment text is empty")
	}
	c.Wikitext = wikitext
	c.HTML = ""
	return c, nil
}

// WithRevision returns a copy pointing at rev and carrying its content
func (c Comment) WithRevision(rev Revision) Comment {
	id := rev.ID
	c.LatestRevisionID = &id
	c.Wikitext = rev.RawText
	c.HTML = rev.RenderedHTML
	return c
}

// WithAuthor returns a copy carrying hydrated author display info
func (c Comment) WithAuthor(a Author) Comment {
	a.ID = c.AuthorActorID
	c.Author = a
	return c
}

func copyID(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// EventKind names a comment lifecycle event
type EventKind string

const (
	// EventCreated is emitted after a comment and its first revision commit
	EventCreated EventKind = "created"

	// EventEdited is emitted after a new revision commits
	EventEdited EventKind = "edited"

	// EventDeleted is emitted after a soft delete
	EventDeleted EventKind = "deleted"
)

// Event is a comment activity record
type Event struct {
	ID         string    `json:"id"`
	Kind       EventKind `json:"kind"`
	CommentID  int64     `json:"comment_id"`
	PageID     int64     `json:"page_id"`
	ActorID    int64     `json:"actor_id"`
	RevisionID int64     `json:"revision_id,omitempty"`
	At         time.Time `json:"at"`
}
