// Package http provides http transport for comments
package http

import (
	stdhttp "net/http"
	"strconv"

	"agora/internal/modkit/httpkit"
	"agora/internal/modkit/swaggerkit"
	"agora/internal/services/comments/domain"

	"github.com/go-chi/chi/v5"
)

// Register mounts comment endpoints on the given router
// auth turns the actor id on the request into rights
func Register(r httpkit.Router, s domain.ServicePort, auth domain.Authority) {
	if s == nil || auth == nil {
		panic("comments http requires a service and an authority")
	}
	h := &handlers{svc: s, auth: auth}

	// page scoped reads and the commenting switch
	httpkit.Get(r, "/pages/{pageID}", h.list)
	httpkit.Get(r, "/pages/{pageID}/count", h.count)
	httpkit.PutJSON(r, "/pages/{pageID}/commenting", h.setCommenting)

	// author history
	httpkit.Get(r, "/actors/{actorID}", h.byAuthor)

	// single comment lifecycle
	httpkit.PostJSON(r, "/", h.post)
	httpkit.Get(r, "/{commentID}", h.get)
	httpkit.PatchJSON(r, "/{commentID}", h.edit)
	httpkit.Delete(r, "/{commentID}", h.remove)
}

type handlers struct {
	svc  domain.ServicePort
	auth domain.Authority
}

// Operations describes the routes Register mounts, relative to prefix
func Operations(prefix string) []swaggerkit.Operation {
	op := func(method, path, summary string, status int) swaggerkit.Operation {
		return swaggerkit.Operation{Method: method, Path: prefix + path, Summary: summary, Tag: "Comments", Status: status}
	}
	return []swaggerkit.Operation{
		op(stdhttp.MethodGet, "/pages/{pageID}", "Comment tree of a page", 0),
		op(stdhttp.MethodGet, "/pages/{pageID}/count", "Comment count of a page", 0),
		op(stdhttp.MethodPut, "/pages/{pageID}/commenting", "Open or close commenting on a page", stdhttp.StatusNoContent),
		op(stdhttp.MethodGet, "/actors/{actorID}", "Comment history of an actor", 0),
		op(stdhttp.MethodPost, "", "Post a comment or a reply", stdhttp.StatusCreated),
		op(stdhttp.MethodGet, "/{commentID}", "Fetch one comment", 0),
		op(stdhttp.MethodPatch, "/{commentID}", "Edit a comment", 0),
		op(stdhttp.MethodDelete, "/{commentID}", "Soft delete a comment", stdhttp.StatusNoContent),
	}
}

// swagger:route GET /comments/pages/{pageID} Comments commentsList
// @Summary Comment tree of a page
// @Tags Comments
// @Produce json
// @Param pageID path int true "Page id"
// @Param include_deleted query bool false "Include soft deleted comments, moderators only"
// @Success 200 {object} domain.ListOutput "ok"
// @Failure 403 {object} httpkit.Envelope "comments disabled"
// @Router /comments/pages/{pageID} [get]
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	pageID, err := idParam(r, "pageID")
	if err != nil {
		return nil, err
	}
	actor, err := h.caller(r)
	if err != nil {
		return nil, err
	}
	return h.svc.List(r.Context(), domain.ListInput{
		PageID:         pageID,
		IncludeDeleted: boolQuery(r, "include_deleted"),
		Actor:          actor,
	})
}

// swagger:route GET /comments/pages/{pageID}/count Comments commentsCount
// @Summary Comment count of a page
// @Tags Comments
// @Produce json
// @Param pageID path int true "Page id"
// @Success 200 {object} domain.CountOutput "ok"
// @Router /comments/pages/{pageID}/count [get]
func (h *handlers) count(r *stdhttp.Request) (any, error) {
	pageID, err := idParam(r, "pageID")
	if err != nil {
		return nil, err
	}
	return h.svc.Count(r.Context(), pageID)
}

// swagger:route PUT /comments/pages/{pageID}/commenting Comments commentsSetCommenting
// @Summary Open or close commenting on a page
// @Tags Comments
// @Accept json
// @Param pageID path int true "Page id"
// @Param payload body domain.SetCommentingInput true "Switch"
// @Success 204 "done"
// @Router /comments/pages/{pageID}/commenting [put]
func (h *handlers) setCommenting(r *stdhttp.Request, in domain.SetCommentingInput) (any, error) {
	pageID, err := idParam(r, "pageID")
	if err != nil {
		return nil, err
	}
	in.PageID = pageID
	actor, err := h.caller(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.SetCommentsEnabled(r.Context(), in, actor); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

// swagger:route GET /comments/actors/{actorID} Comments commentsByAuthor
// @Summary Comment history of an actor
// @Tags Comments
// @Produce json
// @Param actorID path int true "Actor id"
// @Success 200 {object} domain.AuthorOutput "ok"
// @Router /comments/actors/{actorID} [get]
func (h *handlers) byAuthor(r *stdhttp.Request) (any, error) {
	authorID, err := idParam(r, "actorID")
	if err != nil {
		return nil, err
	}
	actor, err := h.caller(r)
	if err != nil {
		return nil, err
	}
	col, err := h.svc.ListByAuthor(r.Context(), authorID, actor)
	if err != nil {
		return nil, err
	}
	return domain.AuthorOutput{Comments: col}, nil
}

// swagger:route POST /comments Comments commentsPost
// @Summary Post a comment or a reply
// @Tags Comments
// @Accept json
// @Produce json
// @Param payload body domain.PostInput true "Comment"
// @Success 201 {object} domain.Comment "created"
// @Failure 400 {object} httpkit.Envelope "malformed input"
// @Failure 403 {object} httpkit.Envelope "not allowed"
// @Router /comments [post]
func (h *handlers) post(r *stdhttp.Request, in domain.PostInput) (any, error) {
	actor, err := h.caller(r)
	if err != nil {
		return nil, err
	}
	c, err := h.svc.Post(r.Context(), in, actor)
	if err != nil {
		return nil, err
	}
	return httpkit.Created(c), nil
}

// swagger:route GET /comments/{commentID} Comments commentsGet
// @Summary Fetch one comment
// @Tags Comments
// @Produce json
// @Param commentID path int true "Comment id"
// @Success 200 {object} domain.Comment "ok"
// @Failure 404 {object} httpkit.Envelope "not found"
// @Router /comments/{commentID} [get]
func (h *handlers) get(r *stdhttp.Request) (any, error) {
	id, err := idParam(r, "commentID")
	if err != nil {
		return nil, err
	}
	actor, err := h.caller(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Get(r.Context(), id, actor)
}

// swagger:route PATCH /comments/{commentID} Comments commentsEdit
// @Summary Edit a comment
// @Tags Comments
// @Accept json
// @Produce json
// @Param commentID path int true "Comment id"
// @Param payload body domain.EditInput true "New text"
// @Success 200 {object} domain.Comment "ok"
// @Router /comments/{commentID} [patch]
func (h *handlers) edit(r *stdhttp.Request, in domain.EditInput) (any, error) {
	id, err := idParam(r, "commentID")
	if err != nil {
		return nil, err
	}
	in.CommentID = id
	actor, err := h.caller(r)
	if err != nil {
		return nil, err
	}
	return h.svc.Edit(r.Context(), in, actor)
}

// swagger:route DELETE /comments/{commentID} Comments commentsDelete
// @Summary Soft delete a comment
// @Tags Comments
// @Param commentID path int true "Comment id"
// @Success 204 "deleted"
// @Failure 409 {object} httpkit.Envelope "already deleted"
// @Router /comments/{commentID} [delete]
func (h *handlers) remove(r *stdhttp.Request) (any, error) {
	id, err := idParam(r, "commentID")
	if err != nil {
		return nil, err
	}
	actor, err := h.caller(r)
	if err != nil {
		return nil, err
	}
	if err := h.svc.Delete(r.Context(), id, actor); err != nil {
		return nil, err
	}
	return httpkit.NoContent(), nil
}

func (h *handlers) caller(r *stdhttp.Request) (domain.Identity, error) {
	id, err := h.auth.Identity(r.Context(), httpkit.Actor(r))
	if err != nil {
		return domain.Identity{}, domain.StorageFailure(err, "resolve caller")
	}
	return id, nil
}

func idParam(r *stdhttp.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, domain.InvalidArgument(name + " must be an integer")
	}
	return v, nil
}

func boolQuery(r *stdhttp.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}
