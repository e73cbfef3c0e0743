package router

import (
	"errors"
	"sync"
	"testing"

	"github.com/chime-player/chime/internal/player"
	"github.com/chime-player/chime/internal/playlist"
	"github.com/chime-player/chime/internal/resolve"
	"github.com/chime-player/chime/pkg/actionlink"
)

type stubPipeline struct {
	mu       sync.Mutex
	resolved []*resolve.Query
	watchers map[*resolve.Query]resolve.CompletionFunc
}

func newStubPipeline() *stubPipeline {
	return &stubPipeline{watchers: make(map[*resolve.Query]resolve.CompletionFunc)}
}

func (p *stubPipeline) Resolve(q *resolve.Query, background bool) {
	p.mu.Lock()
	p.resolved = append(p.resolved, q)
	p.mu.Unlock()
}

func (p *stubPipeline) Watch(q *resolve.Query, fn resolve.CompletionFunc) func() {
	p.mu.Lock()
	p.watchers[q] = fn
	p.mu.Unlock()
	return func() {}
}

func (p *stubPipeline) complete(q *resolve.Query, results []resolve.Result) {
	p.mu.Lock()
	fn := p.watchers[q]
	p.mu.Unlock()
	if fn != nil {
		fn(q, results)
	}
}

type stubRegistrar struct {
	kinds   []resolve.ActionKind
	queries []*resolve.Query
}

func (r *stubRegistrar) Register(kind resolve.ActionKind, q *resolve.Query) {
	r.kinds = append(r.kinds, kind)
	r.queries = append(r.queries, q)
}

type stubStore struct {
	created  []playlist.Playlist
	stations []actionlink.StationDraft
	appended map[string][]playlist.Entry
	fail     bool
}

func newStubStore() *stubStore {
	return &stubStore{appended: make(map[string][]playlist.Entry)}
}

func (s *stubStore) Create(title string) (playlist.Playlist, error) {
	if s.fail {
		return playlist.Playlist{}, errors.New("store failure")
	}
	pl := playlist.Playlist{PlaylistID: "pl-" + title, Title: title}
	s.created = append(s.created, pl)
	return pl, nil
}

func (s *stubStore) CreateStation(draft actionlink.StationDraft) (playlist.Playlist, error) {
	if s.fail {
		return playlist.Playlist{}, errors.New("store failure")
	}
	s.stations = append(s.stations, draft)
	return playlist.Playlist{PlaylistID: "pl-" + draft.Title, Title: draft.Title}, nil
}

func (s *stubStore) Append(id string, entries ...playlist.Entry) (playlist.Playlist, error) {
	if s.fail {
		return playlist.Playlist{}, errors.New("store failure")
	}
	s.appended[id] = append(s.appended[id], entries...)
	return playlist.Playlist{PlaylistID: id}, nil
}

type stubViews struct {
	shown      []string
	queueShown int
	superShown int
	filters    []string
}

func (v *stubViews) Show(playlistID string) { v.shown = append(v.shown, playlistID) }
func (v *stubViews) ShowQueue()             { v.queueShown++ }
func (v *stubViews) ShowSuperCollection()   { v.superShown++ }
func (v *stubViews) SetFilter(text string)  { v.filters = append(v.filters, text) }

type stubImporter struct {
	urls []string
	fail bool
}

func (i *stubImporter) Import(url string) error {
	if i.fail {
		return errors.New("import failure")
	}
	i.urls = append(i.urls, url)
	return nil
}

type stubQueue struct {
	items []player.Item
}

func (q *stubQueue) Append(items ...player.Item) {
	q.items = append(q.items, items...)
}

type fixture struct {
	router    *Router
	pipeline  *stubPipeline
	registrar *stubRegistrar
	store     *stubStore
	views     *stubViews
	importer  *stubImporter
	queue     *stubQueue
}

func newFixture() *fixture {
	f := &fixture{
		pipeline:  newStubPipeline(),
		registrar: &stubRegistrar{},
		store:     newStubStore(),
		views:     &stubViews{},
		importer:  &stubImporter{},
		queue:     &stubQueue{},
	}
	f.router = New(nil, f.pipeline, f.registrar, f.store, f.views, f.importer, f.queue)
	return f
}

func TestRouterRejectsForeignScheme(t *testing.T) {
	f := newFixture()
	if f.router.HandleText("https://example.com/whatever") {
		t.Fatalf("foreign scheme must be rejected")
	}
}

func TestRouterPlaylistImport(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://playlist/import?xspf=http%3A%2F%2Fexample.com%2Fpl.xspf") {
		t.Fatalf("import rejected")
	}
	if len(f.importer.urls) != 1 || f.importer.urls[0] != "http://example.com/pl.xspf" {
		t.Fatalf("importer got %v", f.importer.urls)
	}

	if f.router.HandleText("chime://playlist/import?title=nope") {
		t.Fatalf("import without file url must be rejected")
	}
}

func TestRouterLegacyLoadAlias(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://load?xspf=http%3A%2F%2Fexample.com%2Fpl.xspf") {
		t.Fatalf("legacy load rejected")
	}
	if len(f.importer.urls) != 1 {
		t.Fatalf("importer got %v", f.importer.urls)
	}
}

func TestRouterPlaylistNew(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://playlist/new?title=Road%20Trip") {
		t.Fatalf("create rejected")
	}
	if len(f.store.created) != 1 || f.store.created[0].Title != "Road Trip" {
		t.Fatalf("store got %v", f.store.created)
	}
	if len(f.views.shown) != 1 {
		t.Fatalf("new playlist not shown")
	}

	if f.router.HandleText("chime://playlist/new") {
		t.Fatalf("create without title must be rejected")
	}
}

func TestRouterQueueAdd(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://queue/add/track?url=http%3A%2F%2Fa.com%2F1.mp3&url=http%3A%2F%2Fa.com%2F2.mp3") {
		t.Fatalf("queue add rejected")
	}
	if len(f.queue.items) != 2 {
		t.Fatalf("queue got %v", f.queue.items)
	}
	if len(f.pipeline.resolved) != 2 {
		t.Fatalf("background resolution not requested for each item")
	}
	if f.views.queueShown != 1 {
		t.Fatalf("queue view not shown")
	}

	if f.router.HandleText("chime://queue/add/track") {
		t.Fatalf("queue add without tracks must be rejected")
	}
}

func TestRouterStationCreate(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://station/create?title=Mix&type=harmonic&tempo=60&tempo_max=120") {
		t.Fatalf("station create rejected")
	}
	if len(f.store.stations) != 1 {
		t.Fatalf("station drafts %v", f.store.stations)
	}
	draft := f.store.stations[0]
	if draft.Mode != actionlink.StationOnDemand || len(draft.Controls) != 2 {
		t.Fatalf("unexpected draft %+v", draft)
	}

	// Zero filter parameters still commits a draft.
	if !f.router.HandleText("chime://station/create?title=Empty&type=harmonic") {
		t.Fatalf("empty station rejected")
	}
	if len(f.store.stations) != 2 || len(f.store.stations[1].Controls) != 0 {
		t.Fatalf("empty draft not committed: %+v", f.store.stations)
	}

	if f.router.HandleText("chime://station/create?title=NoType") {
		t.Fatalf("station without type must be rejected")
	}
}

func TestRouterAutoplaylistIsStatic(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://autoplaylist/create?title=Fixed&type=harmonic&mood=mellow") {
		t.Fatalf("autoplaylist rejected")
	}
	if f.store.stations[0].Mode != actionlink.StationStatic {
		t.Fatalf("autoplaylist should commit a static draft")
	}
}

func TestRouterSearch(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://search?artist=Muse&title=Uprising") {
		t.Fatalf("search rejected")
	}
	if f.views.superShown != 1 || len(f.views.filters) != 1 {
		t.Fatalf("views %+v", f.views)
	}
	if f.views.filters[0] != "Muse Uprising" {
		t.Fatalf("filter = %q", f.views.filters[0])
	}

	if f.router.HandleText("chime://search") {
		t.Fatalf("empty search must be rejected")
	}
}

func TestRouterBookmarkRegisters(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://bookmark/track?artist=Muse&title=Uprising") {
		t.Fatalf("bookmark rejected")
	}
	if len(f.registrar.kinds) != 1 || f.registrar.kinds[0] != resolve.ActionBookmark {
		t.Fatalf("registrar %v", f.registrar.kinds)
	}
}

func TestRouterOpenQueuesAndRegisters(t *testing.T) {
	f := newFixture()
	if !f.router.HandleText("chime://open/track?artist=Muse&title=Uprising") {
		t.Fatalf("open rejected")
	}
	if len(f.queue.items) != 1 {
		t.Fatalf("open should append to queue immediately")
	}
	if len(f.registrar.kinds) != 1 || f.registrar.kinds[0] != resolve.ActionOpen {
		t.Fatalf("registrar %v", f.registrar.kinds)
	}
}

type onceTracker struct {
	plays int
}

func (p *onceTracker) Play() error     { p.plays++; return nil }
func (p *onceTracker) IsPlaying() bool { return false }

type noopBookmarker struct{}

func (noopBookmarker) AddBookmark(q *resolve.Query, done func(string, error)) {}

type noopViewer struct{}

func (noopViewer) Show(string) {}

func TestRouterPlayEndToEnd(t *testing.T) {
	pipeline := newStubPipeline()
	tracker := &onceTracker{}
	coordinator := resolve.NewCoordinator(nil, pipeline, tracker, noopBookmarker{}, noopViewer{})

	store := newStubStore()
	views := &stubViews{}
	r := New(nil, pipeline, coordinator, store, views, &stubImporter{}, &stubQueue{})

	if !r.HandleText("chime://play/track?artist=Muse&title=Uprising") {
		t.Fatalf("play rejected")
	}
	if len(pipeline.resolved) != 1 {
		t.Fatalf("expected one query, got %d", len(pipeline.resolved))
	}
	q := pipeline.resolved[0]
	if q.Artist != "Muse" || q.Title != "Uprising" {
		t.Fatalf("unexpected query %+v", q)
	}

	pipeline.complete(q, []resolve.Result{{URL: "file:///a.mp3"}})
	if tracker.plays != 1 {
		t.Fatalf("playback invoked %d times, want exactly 1", tracker.plays)
	}

	// A second completion for the same, already-cleared slot stays inert.
	pipeline.complete(q, []resolve.Result{{URL: "file:///a.mp3"}})
	if tracker.plays != 1 {
		t.Fatalf("stale completion replayed: %d", tracker.plays)
	}
}
