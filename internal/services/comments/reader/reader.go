// Package reader turns stored comment rows into hydrated domain comments
package reader

import (
	"context"
	"errors"
	"sort"

	"agora/internal/modkit/repokit"
	perr "agora/internal/platform/errors"
	"agora/internal/platform/logger"
	"agora/internal/services/comments/domain"
	"agora/internal/services/comments/repo"
)

// DefaultUnknownName labels authors the identity lookup could not resolve
const DefaultUnknownName = "Unknown user"

// Repository reads comments and attaches author display info
// reads run on whatever querier it was built with, usually the replica router
type Repository struct {
	repo        repo.Repo
	identity    domain.IdentityLookup
	unknownName string
}

// New binds a repository to a read querier
func New(q repokit.Queryer, binder repokit.Binder[repo.Repo], identity domain.IdentityLookup, unknownName string) *Repository {
	if q == nil {
		panic("comments.Reader requires a non nil Queryer")
	}
	if binder == nil {
		panic("comments.Reader requires a non nil Repo binder")
	}
	if identity == nil {
		panic("comments.Reader requires a non nil IdentityLookup")
	}
	if unknownName == "" {
		unknownName = DefaultUnknownName
	}
	return &Repository{repo: binder.Bind(q), identity: identity, unknownName: unknownName}
}

// FindByID returns the comment or false when no row exists
func (r *Repository) FindByID(ctx context.Context, id int64) (domain.Comment, bool, error) {
	if id <= 0 {
		return domain.Comment{}, false, nil
	}
	row, err := r.repo.FetchByID(ctx, id)
	if errors.Is(err, perr.ErrNotFound) {
		return domain.Comment{}, false, nil
	}
	if err != nil {
		return domain.Comment{}, false, domain.StorageFailure(err, "fetch comment")
	}
	return r.hydrate(ctx, []repo.Row{row})[0], true, nil
}

// FindByPage returns the assembled thread forest of a page
func (r *Repository) FindByPage(ctx context.Context, pageID int64, includeDeleted bool) (*domain.Collection, error) {
	if pageID < 0 {
		return nil, domain.InvalidArgument("page id must not be negative")
	}
	rows, err := r.repo.FetchByPage(ctx, pageID)
	if err != nil {
		return nil, domain.StorageFailure(err, "fetch page comments")
	}
	return r.assemble(ctx, rows, includeDeleted), nil
}

// FindByAuthor returns the comments an actor wrote, assembled like a page
func (r *Repository) FindByAuthor(ctx context.Context, authorActorID int64, includeDeleted bool) (*domain.Collection, error) {
	if authorActorID < 0 {
		return nil, domain.InvalidArgument("actor id must not be negative")
	}
	rows, err := r.repo.FetchByAuthor(ctx, authorActorID)
	if err != nil {
		return nil, domain.StorageFailure(err, "fetch author comments")
	}
	return r.assemble(ctx, rows, includeDeleted), nil
}

// GetParent resolves the parent of c; false for top level comments
func (r *Repository) GetParent(ctx context.Context, c domain.Comment) (domain.Comment, bool, error) {
	if c.ParentID == nil {
		return domain.Comment{}, false, nil
	}
	return r.FindByID(ctx, *c.ParentID)
}

// Count is the number of stored comments on a page, deleted ones included
func (r *Repository) Count(ctx context.Context, pageID int64) (int, error) {
	if pageID < 0 {
		return 0, domain.InvalidArgument("page id must not be negative")
	}
	n, err := r.repo.CountByPage(ctx, pageID)
	if err != nil {
		return 0, domain.StorageFailure(err, "count comments")
	}
	return n, nil
}

func (r *Repository) assemble(ctx context.Context, rows []repo.Row, includeDeleted bool) *domain.Collection {
	col := domain.NewCollection(r.hydrate(ctx, rows))
	if !includeDeleted {
		col = col.WithoutDeleted()
	}
	return col
}

// hydrate converts rows and resolves every distinct author in one lookup
// lookup failures degrade to the unknown label instead of failing the read
func (r *Repository) hydrate(ctx context.Context, rows []repo.Row) []domain.Comment {
	out := make([]domain.Comment, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Comment())
		if _, ok := seen[row.AuthorActorID]; !ok {
			seen[row.AuthorActorID] = struct{}{}
			ids = append(ids, row.AuthorActorID)
		}
	}
	if len(ids) == 0 {
		return out
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	authors, err := r.identity.Resolve(ctx, ids)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Int("ids", len(ids)).Msg("identity lookup failed; using placeholder names")
		authors = nil
	}

	for i, c := range out {
		a, ok := authors[c.AuthorActorID]
		if !ok || a.Name == "" {
			a = domain.Author{Name: r.unknownName}
		}
		out[i] = c.WithAuthor(a)
	}
	return out
}
