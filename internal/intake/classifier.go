package intake

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/chime-player/chime/internal/resolve"
)

// Structured payload mime types. Their data carries registry handles, one
// per line, rather than serialized track data.
const (
	MimeQueryList      = "application/chime.query.list"
	MimeResultList     = "application/chime.result.list"
	MimeAlbumMetadata  = "application/chime.metadata.album"
	MimeArtistMetadata = "application/chime.metadata.artist"
	MimeTextPlain      = "text/plain"
)

// Payload is one mime part of a drop/paste event.
type Payload struct {
	Mime string
	Data string
}

// EmitFunc receives classified track queries as they become available.
// Network-backed sub-parsers call it from their own goroutines.
type EmitFunc func(queries []*resolve.Query)

// Config tunes the classifier's network sub-parsers.
type Config struct {
	SpotifyLookupBase string
}

// Classifier turns untyped text and mime payloads into track queries.
// Structured payloads are dereferenced against the registry without any
// network I/O; freeform text is matched against service URL patterns and,
// as a last resort, link-shortener expansion.
type Classifier struct {
	log      *zap.Logger
	client   *http.Client
	registry *Registry
	config   Config
	emit     EmitFunc
}

// NewClassifier wires a classifier to its emission sink.
func NewClassifier(log *zap.Logger, client *http.Client, registry *Registry, cfg Config, emit EmitFunc) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	if strings.TrimSpace(cfg.SpotifyLookupBase) == "" {
		cfg.SpotifyLookupBase = DefaultSpotifyLookupBase
	}
	return &Classifier{log: log, client: client, registry: registry, config: cfg, emit: emit}
}

// HandlePayload classifies one mime part. It reports whether the payload
// was recognized; emission happens through the sink, possibly after the
// call returns.
func (c *Classifier) HandlePayload(p Payload) bool {
	switch p.Mime {
	case MimeQueryList, MimeResultList:
		queries := c.derefQueries(p.Data)
		if len(queries) > 0 {
			c.emit(queries)
		}
		return true
	case MimeAlbumMetadata:
		for _, handle := range handleLines(p.Data) {
			if ref, ok := c.registry.Album(handle); ok && len(ref.Tracks) > 0 {
				c.emit(ref.Tracks)
			}
		}
		return true
	case MimeArtistMetadata:
		for _, handle := range handleLines(p.Data) {
			if ref, ok := c.registry.Artist(handle); ok && len(ref.Tracks) > 0 {
				c.emit(ref.Tracks)
			}
		}
		return true
	case MimeTextPlain:
		c.ClassifyText(p.Data)
		return true
	default:
		return false
	}
}

// ClassifyText scans freeform text for recognizable track sources. Text
// with no match yields nothing; it is never an error.
func (c *Classifier) ClassifyText(text string) {
	for _, token := range strings.Fields(text) {
		c.classifyToken(token, false)
	}
}

func (c *Classifier) classifyToken(token string, expanded bool) {
	switch {
	case isSpotifyTrack(token):
		uri, err := spotifyTrackURI(token)
		if err != nil {
			c.log.Debug("spotify token rejected", zap.Error(err))
			return
		}
		go func() {
			q, err := lookupSpotifyTrack(c.client, c.config.SpotifyLookupBase, uri)
			if err != nil {
				c.log.Debug("spotify lookup failed", zap.Error(err))
				return
			}
			c.emit([]*resolve.Query{q})
		}()
	case isRdioTrack(token):
		q, err := parseRdioTrack(token)
		if err != nil {
			c.log.Debug("rdio token rejected", zap.Error(err))
			return
		}
		c.emit([]*resolve.Query{q})
	case isPodcastFeed(token):
		go func() {
			queries, err := parsePodcastFeed(c.client, token)
			if err != nil {
				c.log.Debug("feed fetch failed", zap.Error(err))
				return
			}
			if len(queries) > 0 {
				c.emit(queries)
			}
		}()
	case isShortened(token):
		if expanded {
			// One level of indirection only: a shortener pointing at
			// another shortener is treated as unrecognized.
			c.log.Debug("chained shortener ignored", zap.String("url", token))
			return
		}
		go func() {
			target, err := expandShortened(c.client, token)
			if err != nil {
				c.log.Debug("shortener expansion failed", zap.Error(err))
				return
			}
			c.classifyToken(target, true)
		}()
	}
}

func (c *Classifier) derefQueries(data string) []*resolve.Query {
	handles := handleLines(data)
	queries := make([]*resolve.Query, 0, len(handles))
	for _, handle := range handles {
		q, ok := c.registry.Query(handle)
		if !ok {
			c.log.Debug("stale payload handle", zap.String("handle", handle))
			continue
		}
		queries = append(queries, q)
	}
	return queries
}

func handleLines(data string) []string {
	lines := strings.Split(data, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
