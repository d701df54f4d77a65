package domain

// ListInput asks for the comment tree of a page
type ListInput struct {
	PageID         int64
	IncludeDeleted bool
	Actor          Identity
}

// ListOutput is a page tree plus whether the caller moderates
type ListOutput struct {
	Comments *Collection `json:"comments"`
	IsMod    bool        `json:"is_mod" example:"false"`
}

// PostInput creates a top level comment or a reply
// exactly one of PageID and ParentID is set
type PostInput struct {
	PageID   *int64 `json:"page_id,omitempty" validate:"omitempty,min=0" example:"10"`
	ParentID *int64 `json:"parent_id,omitempty" validate:"omitempty,min=1" example:"1"`
	Wikitext string `json:"wikitext" validate:"required,notblank,max=65536" example:"Nice article"`
}

// EditInput replaces the content of a comment with a new revision
type EditInput struct {
	CommentID int64  `json:"-"`
	Wikitext  string `json:"wikitext" validate:"required,notblank,max=65536" example:"Nice article, fixed typo"`
}

// SetCommentingInput opens or closes commenting on a page
type SetCommentingInput struct {
	PageID  int64 `json:"-"`
	Enabled *bool `json:"enabled" validate:"required" example:"true"`
}

// CountOutput is the comment badge count of a page, deleted rows included
type CountOutput struct {
	PageID int64 `json:"page_id" example:"10"`
	Count  int   `json:"count" example:"3"`
}

// AuthorOutput is the comment history of an actor
type AuthorOutput struct {
	Comments *Collection `json:"comments"`
}
