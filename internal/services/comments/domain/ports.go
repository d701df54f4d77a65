package domain

import "context"

// Renderer turns raw comment markup into sanitized html
// implementations must be idempotent and never echo unsanitized input
type Renderer interface {
	Render(ctx context.Context, rawText string, page Page, authorActorID int64) (string, error)
}

// IdentityLookup resolves display identities in one batch
// ids with no identity are absent from the result
type IdentityLookup interface {
	Resolve(ctx context.Context, ids []int64) (map[int64]Author, error)
}

// AccessControl answers page restriction and block questions
type AccessControl interface {
	PageRestriction(ctx context.Context, pageID int64, action string) (RestrictionLevel, error)
	IsBlockedFor(ctx context.Context, id Identity, capability string) (bool, error)
	SetPageRestriction(ctx context.Context, pageID int64, action string, level RestrictionLevel) error
}

// PageLookup resolves page metadata
type PageLookup interface {
	Page(ctx context.Context, pageID int64) (Page, bool, error)
}

// Authority resolves the rights of a calling actor
type Authority interface {
	Identity(ctx context.Context, actorID int64) (Identity, error)
}

// ActivitySink records comment lifecycle events, best effort
type ActivitySink interface {
	Record(ctx context.Context, ev Event) error
}

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	List(ctx context.Context, in ListInput) (ListOutput, error)
	Get(ctx context.Context, commentID int64, actor Identity) (Comment, error)
	Post(ctx context.Context, in PostInput, actor Identity) (Comment, error)
	Edit(ctx context.Context, in EditInput, actor Identity) (Comment, error)
	Delete(ctx context.Context, commentID int64, actor Identity) error
	ListByAuthor(ctx context.Context, authorActorID int64, actor Identity) (*Collection, error)
	Count(ctx context.Context, pageID int64) (CountOutput, error)
	SetCommentsEnabled(ctx context.Context, in SetCommentingInput, actor Identity) error
}
