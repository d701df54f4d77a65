package service

import (
	"context"
	"encoding/json"
	"testing"

	"agora/internal/services/comments/domain"
)

func post(t *testing.T, h *harness, in domain.PostInput, actor domain.Identity) domain.Comment {
	t.Helper()
	c, err := h.svc.Post(context.Background(), in, actor)
	if err != nil {
		t.Fatalf("Post(%+v): %v", in, err)
	}
	return c
}

func TestPost_ReplyToReplyRejectedBeforeWrite(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	a := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "top"}, user(7))
	b := post(t, h, domain.PostInput{ParentID: ptr(a.ID), Wikitext: "reply"}, user(8))
	if b.PageID != 10 || b.ParentID == nil || *b.ParentID != a.ID {
		t.Fatalf("reply = %+v", b)
	}

	writes := h.db.writes
	_, err := h.svc.Post(ctx, domain.PostInput{ParentID: ptr(b.ID), Wikitext: "too deep"}, user(7))
	if !domain.Is(err, domain.ReasonParentIsReply) {
		t.Fatalf("err = %v", err)
	}
	if h.db.writes != writes {
		t.Fatalf("rejected reply wrote to the store")
	}
}

func TestPost_Validation(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	top := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "top"}, user(7))
	gone := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "gone"}, user(7))
	if err := h.svc.Delete(ctx, gone.ID, moderator(9)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	h.site.restrictions[11] = domain.RestrictionRestricted
	h.site.blocks[8] = domain.Block{Sitewide: true}

	cases := []struct {
		name   string
		in     domain.PostInput
		actor  domain.Identity
		reason string
	}{
		{"no right", domain.PostInput{PageID: ptr(10), Wikitext: "x"}, domain.Identity{ActorID: 7}, domain.ReasonNotAllowed},
		{"blocked", domain.PostInput{PageID: ptr(10), Wikitext: "x"}, user(8), domain.ReasonNotAllowed},
		{"neither target", domain.PostInput{Wikitext: "x"}, user(7), domain.ReasonMalformedInput},
		{"both targets", domain.PostInput{PageID: ptr(10), ParentID: ptr(top.ID), Wikitext: "x"}, user(7), domain.ReasonMalformedInput},
		{"blank text", domain.PostInput{PageID: ptr(10), Wikitext: " \n\t "}, user(7), domain.ReasonMalformedInput},
		{"missing parent", domain.PostInput{ParentID: ptr(999), Wikitext: "x"}, user(7), domain.ReasonNotFound},
		{"deleted parent", domain.PostInput{ParentID: ptr(gone.ID), Wikitext: "x"}, user(7), domain.ReasonParentDeleted},
		{"restricted page", domain.PostInput{PageID: ptr(11), Wikitext: "x"}, moderator(9), domain.ReasonCommentsDisabled},
		{"wrong namespace", domain.PostInput{PageID: ptr(20), Wikitext: "x"}, user(7), domain.ReasonCommentsDisabled},
	}
	for _, tc := range cases {
		_, err := h.svc.Post(ctx, tc.in, tc.actor)
		if !domain.Is(err, tc.reason) {
			t.Fatalf("%s: err = %v, want %s", tc.name, err, tc.reason)
		}
	}
}

func TestPost_NormalizesText(t *testing.T) {
	t.Parallel()

	h := newHarness()
	c := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "  hi there  \r\n\r\n\r\nbye\u200b  "}, user(7))
	if c.Wikitext != "hi there\n\nbye" {
		t.Fatalf("wikitext = %q", c.Wikitext)
	}
	if c.Author.Name != "Ada" {
		t.Fatalf("author = %+v", c.Author)
	}
}

func TestList_ThreadsAndVisibility(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	a := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "a"}, user(7))
	post(t, h, domain.PostInput{ParentID: ptr(a.ID), Wikitext: "a1"}, user(8))
	b := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "b"}, user(8))
	post(t, h, domain.PostInput{PageID: ptr(11), Wikitext: "elsewhere"}, user(8))
	if err := h.svc.Delete(ctx, b.ID, moderator(9)); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	// a regular user asking for deleted comments still gets them filtered
	out, err := h.svc.List(ctx, domain.ListInput{PageID: 10, IncludeDeleted: true, Actor: user(7)})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if out.IsMod || out.Comments.Len() != 2 {
		t.Fatalf("user view: mod=%v len=%d", out.IsMod, out.Comments.Len())
	}
	roots := out.Comments.Roots()
	if len(roots) != 1 || roots[0].ID != a.ID || len(roots[0].Children) != 1 {
		t.Fatalf("roots = %+v", roots)
	}

	mod, err := h.svc.List(ctx, domain.ListInput{PageID: 10, IncludeDeleted: true, Actor: moderator(9)})
	if err != nil {
		t.Fatalf("List mod: %v", err)
	}
	if !mod.IsMod || mod.Comments.Len() != 3 {
		t.Fatalf("mod view: mod=%v len=%d", mod.IsMod, mod.Comments.Len())
	}

	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var shape struct {
		Comments []map[string]any `json:"comments"`
		IsMod    bool             `json:"is_mod"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(shape.Comments) != 1 || shape.Comments[0]["children"] == nil {
		t.Fatalf("json = %s", raw)
	}
}

func TestList_DisabledAndEmpty(t *testing.T) {
	t.Parallel()

	h := newHarness()
	h.site.restrictions[11] = domain.RestrictionRestricted
	ctx := context.Background()

	if _, err := h.svc.List(ctx, domain.ListInput{PageID: 11, Actor: moderator(9)}); !domain.Is(err, domain.ReasonCommentsDisabled) {
		t.Fatalf("restricted err = %v", err)
	}
	if _, err := h.svc.List(ctx, domain.ListInput{PageID: -1}); !domain.Is(err, domain.ReasonInvalidArgument) {
		t.Fatalf("negative err = %v", err)
	}

	out, err := h.svc.List(ctx, domain.ListInput{PageID: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	raw, _ := json.Marshal(out)
	if string(raw) != `{"comments":[],"is_mod":false}` {
		t.Fatalf("empty page json = %s", raw)
	}
}

func TestGet_HidesDeletedFromUsers(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	c := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "hello"}, user(7))
	if _, err := h.svc.Get(ctx, c.ID, domain.Anonymous()); err != nil {
		t.Fatalf("Get live: %v", err)
	}
	_ = h.svc.Delete(ctx, c.ID, moderator(9))

	if _, err := h.svc.Get(ctx, c.ID, user(7)); !domain.Is(err, domain.ReasonNotFound) {
		t.Fatalf("user sees deleted: %v", err)
	}
	if got, err := h.svc.Get(ctx, c.ID, moderator(9)); err != nil || !got.IsDeleted() {
		t.Fatalf("mod Get = %+v, %v", got, err)
	}
}

func TestEdit_Rules(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	c := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "hello"}, user(7))

	if _, err := h.svc.Edit(ctx, domain.EditInput{CommentID: c.ID, Wikitext: "mine now"}, user(8)); !domain.Is(err, domain.ReasonNotAllowed) {
		t.Fatalf("stranger edit err = %v", err)
	}
	if _, err := h.svc.Edit(ctx, domain.EditInput{CommentID: c.ID, Wikitext: "x"}, domain.Anonymous()); !domain.Is(err, domain.ReasonNotAllowed) {
		t.Fatalf("anonymous edit err = %v", err)
	}
	if _, err := h.svc.Edit(ctx, domain.EditInput{CommentID: c.ID, Wikitext: "  "}, user(7)); !domain.Is(err, domain.ReasonMalformedInput) {
		t.Fatalf("blank edit err = %v", err)
	}
	if _, err := h.svc.Edit(ctx, domain.EditInput{CommentID: 999, Wikitext: "x"}, user(7)); !domain.Is(err, domain.ReasonNotFound) {
		t.Fatalf("missing edit err = %v", err)
	}

	edited, err := h.svc.Edit(ctx, domain.EditInput{CommentID: c.ID, Wikitext: "fixed by mod"}, moderator(9))
	if err != nil {
		t.Fatalf("mod edit: %v", err)
	}
	if edited.AuthorActorID != 7 || edited.HTML != "<p>fixed by mod</p>" {
		t.Fatalf("edited = %+v", edited)
	}
	revs := h.db.revisionsOf(c.ID)
	if len(revs) != 2 || revs[1].actor != 9 {
		t.Fatalf("revisions = %+v", revs)
	}

	_ = h.svc.Delete(ctx, c.ID, moderator(9))
	if _, err := h.svc.Edit(ctx, domain.EditInput{CommentID: c.ID, Wikitext: "again"}, user(7)); !domain.Is(err, domain.ReasonAlreadyDeleted) {
		t.Fatalf("edit deleted err = %v", err)
	}
}

func TestDelete_NeedsModerator(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()
	c := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "hello"}, user(7))

	if err := h.svc.Delete(ctx, c.ID, user(7)); !domain.Is(err, domain.ReasonNotAllowed) {
		t.Fatalf("author delete err = %v", err)
	}
	anonMod := domain.Identity{Rights: []string{domain.RightModerate}}
	if err := h.svc.Delete(ctx, c.ID, anonMod); !domain.Is(err, domain.ReasonNotAllowed) {
		t.Fatalf("actor 0 delete err = %v", err)
	}
	if err := h.svc.Delete(ctx, c.ID, moderator(9)); err != nil {
		t.Fatalf("mod delete: %v", err)
	}
}

func TestListByAuthor(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	a := post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "a"}, user(7))
	post(t, h, domain.PostInput{ParentID: ptr(a.ID), Wikitext: "self reply"}, user(7))
	post(t, h, domain.PostInput{ParentID: ptr(a.ID), Wikitext: "other"}, user(8))
	b := post(t, h, domain.PostInput{PageID: ptr(11), Wikitext: "b"}, user(7))
	_ = h.svc.Delete(ctx, b.ID, moderator(9))

	mine, err := h.svc.ListByAuthor(ctx, 7, user(8))
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if mine.Len() != 2 {
		t.Fatalf("user view len = %d, want 2", mine.Len())
	}
	all, _ := h.svc.ListByAuthor(ctx, 7, moderator(9))
	if all.Len() != 3 {
		t.Fatalf("mod view len = %d, want 3", all.Len())
	}
}

func TestCountAndCommenting(t *testing.T) {
	t.Parallel()

	h := newHarness()
	ctx := context.Background()

	post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "a"}, user(7))
	post(t, h, domain.PostInput{PageID: ptr(10), Wikitext: "b"}, user(8))

	out, err := h.svc.Count(ctx, 10)
	if err != nil || out.Count != 2 || out.PageID != 10 {
		t.Fatalf("Count = %+v, %v", out, err)
	}

	off := false
	if err := h.svc.SetCommentsEnabled(ctx, domain.SetCommentingInput{PageID: 10, Enabled: &off}, user(7)); !domain.Is(err, domain.ReasonNotAllowed) {
		t.Fatalf("user toggle err = %v", err)
	}
	if err := h.svc.SetCommentsEnabled(ctx, domain.SetCommentingInput{PageID: 99, Enabled: &off}, moderator(9)); !domain.Is(err, domain.ReasonNotFound) {
		t.Fatalf("missing page err = %v", err)
	}
	if err := h.svc.SetCommentsEnabled(ctx, domain.SetCommentingInput{PageID: 10, Enabled: &off}, moderator(9)); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if _, err := h.svc.Count(ctx, 10); !domain.Is(err, domain.ReasonCommentsDisabled) {
		t.Fatalf("count on disabled page err = %v", err)
	}
	if _, err := h.svc.Post(ctx, domain.PostInput{PageID: ptr(10), Wikitext: "c"}, moderator(9)); !domain.Is(err, domain.ReasonCommentsDisabled) {
		t.Fatalf("post on disabled page err = %v", err)
	}

	on := true
	if err := h.svc.SetCommentsEnabled(ctx, domain.SetCommentingInput{PageID: 10, Enabled: &on}, moderator(9)); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if out, _ := h.svc.Count(ctx, 10); out.Count != 2 {
		t.Fatalf("count after enable = %d", out.Count)
	}
}
