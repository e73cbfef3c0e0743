package resolve

import (
	"sync"

	"go.uber.org/zap"
)

// ActionKind names the action a pending resolution should trigger.
type ActionKind int

const (
	// ActionPlay starts playback once the query is playable.
	ActionPlay ActionKind = iota
	// ActionOpen enqueued the track already; playback starts only if the
	// engine is idle when resolution completes.
	ActionOpen
	// ActionBookmark appends the track to the bookmarks playlist and shows it.
	ActionBookmark

	actionKinds
)

func (k ActionKind) String() string {
	switch k {
	case ActionPlay:
		return "play"
	case ActionOpen:
		return "open"
	case ActionBookmark:
		return "bookmark"
	default:
		return "unknown"
	}
}

// Player is the playback engine surface the coordinator drives.
type Player interface {
	Play() error
	IsPlaying() bool
}

// Bookmarker inserts a resolved query into the bookmarks playlist. The done
// callback fires when the insert's own revision commit completes.
type Bookmarker interface {
	AddBookmark(q *Query, done func(playlistID string, err error))
}

// Viewer shows a playlist in the navigation layer.
type Viewer interface {
	Show(playlistID string)
}

type slot struct {
	query  *Query
	cancel func()
}

// Coordinator owns at most one in-flight resolve-then-act request per kind.
// Registering a new request for a kind supersedes the previous one: earlier
// registrations become permanently inert even if their completion callback
// arrives later.
type Coordinator struct {
	log       *zap.Logger
	pipeline  Pipeline
	player    Player
	bookmarks Bookmarker
	view      Viewer

	mu    sync.Mutex
	slots [actionKinds]slot
}

// NewCoordinator wires a coordinator to its collaborators.
func NewCoordinator(log *zap.Logger, pipeline Pipeline, player Player, bookmarks Bookmarker, view Viewer) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{log: log, pipeline: pipeline, player: player, bookmarks: bookmarks, view: view}
}

// Register makes q the authoritative pending resolution for kind,
// detaching any previous registration of the same kind.
func (c *Coordinator) Register(kind ActionKind, q *Query) {
	c.mu.Lock()
	if prev := c.slots[kind]; prev.cancel != nil {
		prev.cancel()
		c.log.Debug("superseded pending resolution",
			zap.String("kind", kind.String()),
			zap.String("query", prev.query.DisplayName()),
		)
	}
	cancel := c.pipeline.Watch(q, func(q *Query, results []Result) {
		c.completed(kind, q, results)
	})
	c.slots[kind] = slot{query: q, cancel: cancel}
	c.mu.Unlock()
}

func (c *Coordinator) completed(kind ActionKind, q *Query, results []Result) {
	c.mu.Lock()
	if c.slots[kind].query != q {
		// A newer registration is authoritative; this callback is stale.
		c.mu.Unlock()
		return
	}
	c.slots[kind] = slot{}
	c.mu.Unlock()

	if len(results) == 0 {
		c.log.Debug("pending resolution found nothing playable",
			zap.String("kind", kind.String()),
			zap.String("query", q.DisplayName()),
		)
		return
	}

	switch kind {
	case ActionPlay:
		if err := c.player.Play(); err != nil {
			c.log.Warn("playback start failed", zap.Error(err))
		}
	case ActionOpen:
		if !c.player.IsPlaying() {
			if err := c.player.Play(); err != nil {
				c.log.Warn("playback start failed", zap.Error(err))
			}
		}
	case ActionBookmark:
		c.bookmarks.AddBookmark(q, func(playlistID string, err error) {
			if err != nil {
				c.log.Warn("bookmark insert failed", zap.Error(err))
				return
			}
			c.view.Show(playlistID)
		})
	}
}

func (c *Coordinator) pending(kind ActionKind) *Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.slots[kind].query
}
