package router

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/chime-player/chime/internal/player"
	"github.com/chime-player/chime/internal/playlist"
	"github.com/chime-player/chime/internal/resolve"
	"github.com/chime-player/chime/pkg/actionlink"
)

// Store is the playlist persistence surface the router mutates.
type Store interface {
	Create(title string) (playlist.Playlist, error)
	CreateStation(draft actionlink.StationDraft) (playlist.Playlist, error)
	Append(id string, entries ...playlist.Entry) (playlist.Playlist, error)
}

// Views is the navigation surface the router drives.
type Views interface {
	Show(playlistID string)
	ShowQueue()
	ShowSuperCollection()
	SetFilter(text string)
}

// Importer loads playlist files (XSPF/JSPF) from a URL.
type Importer interface {
	Import(url string) error
}

// QueueSink receives tracks destined for the play queue.
type QueueSink interface {
	Append(items ...player.Item)
}

// Registrar tracks pending resolve-then-act requests.
type Registrar interface {
	Register(kind resolve.ActionKind, q *resolve.Query)
}

// Router dispatches parsed action links to category handlers. It is
// constructed once by the composition root and holds no per-command state;
// pending work lives in the coordinator and in station drafts.
type Router struct {
	log         *zap.Logger
	pipeline    resolve.Pipeline
	coordinator Registrar
	store       Store
	views       Views
	importer    Importer
	queue       QueueSink
}

// New wires a router to its collaborators.
func New(log *zap.Logger, pipeline resolve.Pipeline, coordinator Registrar, store Store, views Views, importer Importer, queue QueueSink) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		log:         log,
		pipeline:    pipeline,
		coordinator: coordinator,
		store:       store,
		views:       views,
		importer:    importer,
		queue:       queue,
	}
}

// HandleText parses and dispatches a raw link. Unparseable input is
// rejected without surfacing an error to the caller.
func (r *Router) HandleText(text string) bool {
	link, err := actionlink.Parse(text)
	if err != nil {
		if !errors.Is(err, actionlink.ErrNotOurScheme) {
			r.log.Info("link rejected", zap.Error(err), zap.String("link", text))
		}
		return false
	}
	return r.Handle(link)
}

// Handle dispatches a parsed link. It reports acceptance; validation
// failures are logged and rejected, never raised as user-facing errors.
func (r *Router) Handle(link actionlink.Link) bool {
	switch link.Category {
	case actionlink.CategoryPlaylist:
		return r.handlePlaylist(link)
	case actionlink.CategoryCollection:
		return r.handleCollection(link)
	case actionlink.CategoryQueue:
		return r.handleQueue(link)
	case actionlink.CategoryStation:
		return r.handleStation(link, actionlink.StationOnDemand)
	case actionlink.CategoryAutoplaylist:
		return r.handleStation(link, actionlink.StationStatic)
	case actionlink.CategorySearch:
		return r.handleSearch(link)
	case actionlink.CategoryPlay:
		return r.handleResolveAndAct(link, resolve.ActionPlay)
	case actionlink.CategoryBookmark:
		return r.handleResolveAndAct(link, resolve.ActionBookmark)
	case actionlink.CategoryOpen:
		return r.handleOpen(link)
	default:
		r.log.Info("unhandled category", zap.String("category", string(link.Category)))
		return false
	}
}

func (r *Router) handlePlaylist(link actionlink.Link) bool {
	switch sub(link) {
	case "import":
		url := link.Params.Get("xspf")
		if url == "" {
			url = link.Params.Get("jspf")
		}
		if url == "" {
			r.log.Info("playlist import without file url")
			return false
		}
		if err := r.importer.Import(url); err != nil {
			r.log.Warn("playlist import failed", zap.Error(err), zap.String("url", url))
			return false
		}
		return true
	case "new", "create":
		title := link.Params.Get("title")
		if title == "" {
			r.log.Info("playlist create without title")
			return false
		}
		pl, err := r.store.Create(title)
		if err != nil {
			r.log.Warn("playlist create failed", zap.Error(err))
			return false
		}
		r.views.Show(pl.PlaylistID)
		return true
	case "add":
		id := link.Params.Get("playlistid")
		title := link.Params.Get("title")
		if id == "" || title == "" {
			r.log.Info("playlist add needs playlistid and title")
			return false
		}
		entry := playlist.Entry{
			Artist: link.Params.Get("artist"),
			Title:  title,
			Album:  link.Params.Get("album"),
			URL:    link.Params.Get("url"),
		}
		if _, err := r.store.Append(id, entry); err != nil {
			r.log.Warn("playlist add failed", zap.Error(err), zap.String("playlist", id))
			return false
		}
		return true
	default:
		r.log.Info("unhandled playlist subcommand", zap.String("sub", sub(link)))
		return false
	}
}

func (r *Router) handleCollection(link actionlink.Link) bool {
	// No collection mutation is supported over links yet; the bare command
	// just surfaces the merged collection view.
	if sub(link) != "" {
		r.log.Info("unhandled collection subcommand", zap.String("sub", sub(link)))
		return false
	}
	r.views.ShowSuperCollection()
	return true
}

func (r *Router) handleQueue(link actionlink.Link) bool {
	if sub(link) != "add" || len(link.Segments) < 2 || link.Segments[1] != "track" {
		r.log.Info("unhandled queue subcommand", zap.Strings("segments", link.Segments))
		return false
	}
	queries := buildTrackQueries(link.Params)
	if len(queries) == 0 {
		r.log.Info("queue add without track description")
		return false
	}
	for _, q := range queries {
		// Queue entries appear immediately; playability is confirmed in
		// the background without gating the insert.
		r.pipeline.Resolve(q, true)
		r.queue.Append(queueItem(q))
	}
	r.views.ShowQueue()
	return true
}

func (r *Router) handleStation(link actionlink.Link, mode actionlink.StationMode) bool {
	if sub(link) != "create" {
		r.log.Info("unhandled station subcommand", zap.String("sub", sub(link)))
		return false
	}
	title := link.Params.Get("title")
	generator := link.Params.Get("type")
	if title == "" || generator == "" {
		r.log.Info("station create needs title and type")
		return false
	}

	draft := actionlink.StationDraft{Title: title, GeneratorType: generator, Mode: mode}
	draft.Append(actionlink.BuildControls(link.Params)...)

	pl, err := r.store.CreateStation(draft)
	if err != nil {
		r.log.Warn("station create failed", zap.Error(err))
		return false
	}
	r.views.Show(pl.PlaylistID)
	return true
}

func (r *Router) handleSearch(link actionlink.Link) bool {
	terms := make([]string, 0, 3)
	for _, key := range []string{"artist", "album", "title"} {
		if value := link.Params.Get(key); value != "" {
			terms = append(terms, value)
		}
	}
	if len(terms) == 0 {
		r.log.Info("search without filter fields")
		return false
	}
	r.views.ShowSuperCollection()
	r.views.SetFilter(strings.Join(terms, " "))
	return true
}

func (r *Router) handleResolveAndAct(link actionlink.Link, kind resolve.ActionKind) bool {
	queries := buildTrackQueries(link.Params)
	if len(queries) == 0 {
		r.log.Info("track command without track description",
			zap.String("category", string(link.Category)))
		return false
	}
	// The most recent request per kind is authoritative.
	q := queries[0]
	r.coordinator.Register(kind, q)
	r.pipeline.Resolve(q, false)
	return true
}

func (r *Router) handleOpen(link actionlink.Link) bool {
	if sub(link) != "track" {
		r.log.Info("unhandled open subcommand", zap.String("sub", sub(link)))
		return false
	}
	queries := buildTrackQueries(link.Params)
	if len(queries) == 0 {
		r.log.Info("open without track description")
		return false
	}
	q := queries[0]
	r.queue.Append(queueItem(q))
	r.coordinator.Register(resolve.ActionOpen, q)
	r.pipeline.Resolve(q, false)
	return true
}

// buildTrackQueries turns link parameters into track queries: one query per
// url parameter, or a single metadata query when no urls are present.
func buildTrackQueries(params actionlink.Params) []*resolve.Query {
	urls := params.Values("url")
	if len(urls) > 0 {
		queries := make([]*resolve.Query, 0, len(urls))
		for _, u := range urls {
			q := resolve.NewQuery(params.Get("artist"), params.Get("title"), params.Get("album"))
			q.ResultHint = u
			queries = append(queries, q)
		}
		return queries
	}
	artist := params.Get("artist")
	title := params.Get("title")
	album := params.Get("album")
	if artist == "" && title == "" && album == "" {
		return nil
	}
	return []*resolve.Query{resolve.NewQuery(artist, title, album)}
}

func queueItem(q *resolve.Query) player.Item {
	return player.Item{
		ItemID: q.ID,
		Artist: q.Artist,
		Title:  q.Title,
		Album:  q.Album,
		URL:    q.ResultHint,
	}
}

func sub(link actionlink.Link) string {
	if len(link.Segments) == 0 {
		return ""
	}
	return link.Segments[0]
}
