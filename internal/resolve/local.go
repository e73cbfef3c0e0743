package resolve

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dhowden/tag"
	"go.uber.org/zap"
)

// LocalConfig configures the local-library pipeline.
type LocalConfig struct {
	Roots       []string
	IncludeExts []string
}

type indexedTrack struct {
	Path   string
	Artist string
	Title  string
	Album  string
	Mime   string
}

// LocalPipeline resolves queries against tracks found under the configured
// library roots. Queries that carry a direct URL hint bypass the index.
type LocalPipeline struct {
	log    *zap.Logger
	config LocalConfig

	mu       sync.RWMutex
	tracks   []indexedTrack
	watchers map[*Query][]*watcher
}

type watcher struct {
	fn       CompletionFunc
	detached bool
}

// NewLocalPipeline builds the pipeline. Call Rescan before resolving, or
// rely on the composition root's startup scan.
func NewLocalPipeline(log *zap.Logger, cfg LocalConfig) *LocalPipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if len(cfg.IncludeExts) == 0 {
		cfg.IncludeExts = []string{".mp3", ".flac", ".ogg", ".m4a"}
	}
	return &LocalPipeline{
		log:      log,
		config:   cfg,
		watchers: make(map[*Query][]*watcher),
	}
}

// Rescan rebuilds the track index from the configured roots.
func (p *LocalPipeline) Rescan() error {
	exts := make(map[string]bool, len(p.config.IncludeExts))
	for _, ext := range p.config.IncludeExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	var next []indexedTrack
	for _, root := range p.config.Roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				p.log.Debug("walk error", zap.Error(err), zap.String("path", path))
				return nil
			}
			if d.IsDir() {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(d.Name()))
			if !exts[ext] {
				return nil
			}
			track := readTrack(path)
			track.Mime = mimeForExt(ext)
			next = append(next, track)
			return nil
		})
		if err != nil {
			p.log.Warn("walk failed", zap.Error(err), zap.String("root", root))
		}
	}

	p.mu.Lock()
	p.tracks = next
	p.mu.Unlock()
	p.log.Info("library scan complete", zap.Int("tracks", len(next)))
	return nil
}

// Resolve schedules resolution of q and notifies watchers when done.
func (p *LocalPipeline) Resolve(q *Query, background bool) {
	go p.resolve(q)
}

func (p *LocalPipeline) resolve(q *Query) {
	results := p.lookup(q)
	p.log.Debug("query resolved",
		zap.String("query", q.DisplayName()),
		zap.Int("results", len(results)),
	)
	p.notify(q, results)
}

func (p *LocalPipeline) lookup(q *Query) []Result {
	if hint := strings.TrimSpace(q.ResultHint); hint != "" {
		if u, err := url.Parse(hint); err == nil {
			switch u.Scheme {
			case "http", "https", "file":
				return []Result{{URL: hint}}
			}
		}
	}

	artist := strings.ToLower(strings.TrimSpace(q.Artist))
	title := strings.ToLower(strings.TrimSpace(q.Title))
	album := strings.ToLower(strings.TrimSpace(q.Album))
	if artist == "" && title == "" {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	var results []Result
	for _, track := range p.tracks {
		if artist != "" && strings.ToLower(track.Artist) != artist {
			continue
		}
		if title != "" && strings.ToLower(track.Title) != title {
			continue
		}
		if album != "" && strings.ToLower(track.Album) != album {
			continue
		}
		results = append(results, Result{
			URL:  "file://" + track.Path,
			Mime: track.Mime,
		})
	}
	return results
}

// Watch registers fn for q's completion. The cancel func detaches it.
func (p *LocalPipeline) Watch(q *Query, fn CompletionFunc) (cancel func()) {
	w := &watcher{fn: fn}
	p.mu.Lock()
	p.watchers[q] = append(p.watchers[q], w)
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		w.detached = true
		p.mu.Unlock()
	}
}

func (p *LocalPipeline) notify(q *Query, results []Result) {
	p.mu.Lock()
	registered := p.watchers[q]
	delete(p.watchers, q)
	fns := make([]CompletionFunc, 0, len(registered))
	for _, w := range registered {
		if !w.detached {
			fns = append(fns, w.fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(q, results)
	}
}

func readTrack(path string) indexedTrack {
	track := indexedTrack{Path: path}

	f, err := os.Open(path)
	if err == nil {
		if metadata, err := tag.ReadFrom(f); err == nil {
			track.Artist = strings.TrimSpace(metadata.Artist())
			track.Title = strings.TrimSpace(metadata.Title())
			track.Album = strings.TrimSpace(metadata.Album())
		}
		f.Close()
	}

	if track.Title == "" {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		parts := strings.SplitN(name, " - ", 2)
		if len(parts) == 2 {
			track.Artist = strings.TrimSpace(parts[0])
			track.Title = strings.TrimSpace(parts[1])
		} else {
			track.Title = name
		}
	}
	return track
}

func mimeForExt(ext string) string {
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	default:
		return "application/octet-stream"
	}
}
