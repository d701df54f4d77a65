package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"agora/internal/modkit/repokit"
	perr "agora/internal/platform/errors"
	"agora/internal/platform/store"
	"agora/internal/services/comments/domain"
	"agora/internal/services/comments/repo"
)

type memRevision struct {
	id, comment, actor int64
	ts                 time.Time
	raw, html          string
}

// memDB is an in memory comment store; Tx restores a snapshot on error
type memDB struct {
	store.RowQuerier // never reached, the binder ignores the querier

	mu        sync.Mutex
	comments  map[int64]repo.Row
	revisions map[int64]memRevision
	nextID    int64
	nextRev   int64
	failWrite error
	writes    int
}

func newMemDB() *memDB {
	return &memDB{comments: map[int64]repo.Row{}, revisions: map[int64]memRevision{}}
}

func (m *memDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	m.mu.Lock()
	comments := make(map[int64]repo.Row, len(m.comments))
	for k, v := range m.comments {
		comments[k] = v
	}
	revisions := make(map[int64]memRevision, len(m.revisions))
	for k, v := range m.revisions {
		revisions[k] = v
	}
	nextID, nextRev := m.nextID, m.nextRev
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.comments, m.revisions, m.nextID, m.nextRev = comments, revisions, nextID, nextRev
		m.mu.Unlock()
		return err
	}
	return nil
}

func (m *memDB) binder() repokit.Binder[repo.Repo] {
	return repokit.BindFunc[repo.Repo](func(repokit.Queryer) repo.Repo { return m })
}

func (m *memDB) InsertComment(_ context.Context, pageID int64, parentID *int64, actor int64, posted time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrite != nil {
		return 0, m.failWrite
	}
	m.nextID++
	m.comments[m.nextID] = repo.Row{ID: m.nextID, PageID: pageID, ParentID: parentID, AuthorActorID: actor, PostedTime: posted}
	return m.nextID, nil
}

func (m *memDB) InsertRevision(_ context.Context, commentID, actor int64, ts time.Time, raw, html string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.failWrite != nil {
		return 0, m.failWrite
	}
	m.nextRev++
	m.revisions[m.nextRev] = memRevision{id: m.nextRev, comment: commentID, actor: actor, ts: ts, raw: raw, html: html}
	return m.nextRev, nil
}

func (m *memDB) SetLatestRevision(_ context.Context, commentID, revisionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	row, ok := m.comments[commentID]
	if !ok {
		return domain.NotFound("comment not found")
	}
	rev := m.revisions[revisionID]
	id := revisionID
	ts := rev.ts
	row.LatestRevisionID, row.Wikitext, row.HTML, row.RevisionTime = &id, rev.raw, rev.html, &ts
	m.comments[commentID] = row
	return nil
}

func (m *memDB) MarkDeleted(_ context.Context, commentID, actor int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.comments[commentID]
	if !ok {
		return domain.NotFound("comment not found")
	}
	if row.DeletedByActorID != nil {
		return domain.AlreadyDeleted("comment already deleted")
	}
	m.writes++
	a := actor
	row.DeletedByActorID = &a
	m.comments[commentID] = row
	return nil
}

func (m *memDB) FetchByID(_ context.Context, id int64) (repo.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.comments[id]
	if !ok {
		return repo.Row{}, perr.ErrNotFound
	}
	return row, nil
}

func (m *memDB) filter(keep func(repo.Row) bool) []repo.Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repo.Row
	for _, r := range m.comments {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PostedTime.Equal(out[j].PostedTime) {
			return out[i].PostedTime.Before(out[j].PostedTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *memDB) FetchByPage(_ context.Context, pageID int64) ([]repo.Row, error) {
	return m.filter(func(r repo.Row) bool { return r.PageID == pageID }), nil
}

func (m *memDB) FetchByAuthor(_ context.Context, actor int64) ([]repo.Row, error) {
	return m.filter(func(r repo.Row) bool { return r.AuthorActorID == actor }), nil
}

func (m *memDB) CountByPage(ctx context.Context, pageID int64) (int, error) {
	rows, _ := m.FetchByPage(ctx, pageID)
	return len(rows), nil
}

func (m *memDB) revisionsOf(commentID int64) []memRevision {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []memRevision
	for _, r := range m.revisions {
		if r.comment == commentID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// fakeRenderer wraps text in a paragraph; errs are returned in order first
type fakeRenderer struct {
	mu    sync.Mutex
	errs  []error
	calls int
}

func (f *fakeRenderer) Render(_ context.Context, raw string, _ domain.Page, _ int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	return "<p>" + raw + "</p>", nil
}

type fakeIdentity struct{ names map[int64]string }

func (f fakeIdentity) Resolve(_ context.Context, ids []int64) (map[int64]domain.Author, error) {
	out := map[int64]domain.Author{}
	for _, id := range ids {
		if n, ok := f.names[id]; ok {
			out[id] = domain.Author{Name: n}
		}
	}
	return out, nil
}

// fakeSite serves pages, restrictions and blocks
type fakeSite struct {
	mu           sync.Mutex
	pages        map[int64]domain.Page
	restrictions map[int64]domain.RestrictionLevel
	blocks       map[int64]domain.Block
	err          error
}

func newSite(pages ...domain.Page) *fakeSite {
	s := &fakeSite{pages: map[int64]domain.Page{}, restrictions: map[int64]domain.RestrictionLevel{}, blocks: map[int64]domain.Block{}}
	for _, p := range pages {
		s.pages[p.ID] = p
	}
	return s
}

func (f *fakeSite) Page(_ context.Context, id int64) (domain.Page, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return domain.Page{}, false, f.err
	}
	p, ok := f.pages[id]
	return p, ok, nil
}

func (f *fakeSite) PageRestriction(_ context.Context, id int64, _ string) (domain.RestrictionLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.restrictions[id]; ok {
		return l, nil
	}
	return domain.RestrictionOpen, nil
}

func (f *fakeSite) IsBlockedFor(_ context.Context, id domain.Identity, action string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blocks[id.ActorID]
	return ok && b.Covers(action), nil
}

func (f *fakeSite) SetPageRestriction(_ context.Context, id int64, _ string, level domain.RestrictionLevel) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.restrictions[id] = level
	return nil
}

type fakeSink struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
}

func (f *fakeSink) Record(_ context.Context, ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeSink) kinds() []domain.EventKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.EventKind, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Kind)
	}
	return out
}

var errFlaky = errors.New("renderer timeout")

var clock = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

type harness struct {
	db     *memDB
	render *fakeRenderer
	site   *fakeSite
	sink   *fakeSink
	svc    *Svc
}

func newHarness() *harness {
	h := &harness{
		db:     newMemDB(),
		render: &fakeRenderer{},
		site: newSite(
			domain.Page{ID: 10, Namespace: 0, Title: "Main"},
			domain.Page{ID: 11, Namespace: 0, Title: "Other"},
			domain.Page{ID: 20, Namespace: 2, Title: "User:Ada"},
		),
		sink: &fakeSink{},
	}
	tick := clock
	h.svc = New(h.db, h.db.binder(), Options{
		Renderer:         h.render,
		Identity:         fakeIdentity{names: map[int64]string{7: "Ada", 8: "Brian", 9: "Mod"}},
		Access:           h.site,
		Pages:            h.site,
		Activity:         h.sink,
		RenderBackoffMin: time.Millisecond,
		RenderBackoffMax: 2 * time.Millisecond,
		Now: func() time.Time {
			tick = tick.Add(time.Second)
			return tick
		},
	})
	return h
}

func user(id int64) domain.Identity {
	return domain.Identity{ActorID: id, Rights: []string{domain.RightComment}}
}

func moderator(id int64) domain.Identity {
	return domain.Identity{ActorID: id, Rights: []string{domain.RightComment, domain.RightModerate, domain.RightProtect}}
}

func ptr(v int64) *int64 { return &v }
