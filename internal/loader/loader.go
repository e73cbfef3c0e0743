package loader

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/chime-player/chime/internal/playlist"
)

// Store is the persistence surface imported playlists land in.
type Store interface {
	Create(title string) (playlist.Playlist, error)
	Append(id string, entries ...playlist.Entry) (playlist.Playlist, error)
}

// Loader fetches playlist files and imports them into the store.
type Loader struct {
	log    *zap.Logger
	client *http.Client
	store  Store
}

// New wires a loader to the store.
func New(log *zap.Logger, client *http.Client, store Store) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{log: log, client: client, store: store}
}

// Import fetches a playlist file and creates a local playlist from it.
// The format is chosen by file extension, defaulting to XSPF.
func (l *Loader) Import(fileURL string) error {
	resp, err := l.client.Get(fileURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("playlist fetch status %d", resp.StatusCode)
	}

	title, entries, err := parseByFormat(fileURL, resp.Body)
	if err != nil {
		return err
	}
	if title == "" {
		title = path.Base(fileURL)
	}

	pl, err := l.store.Create(title)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		if _, err := l.store.Append(pl.PlaylistID, entries...); err != nil {
			return err
		}
	}
	l.log.Info("playlist imported",
		zap.String("title", title),
		zap.Int("tracks", len(entries)),
	)
	return nil
}

func parseByFormat(fileURL string, r io.Reader) (string, []playlist.Entry, error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", nil, errors.New("invalid playlist url")
	}
	if strings.HasSuffix(strings.ToLower(u.Path), ".jspf") {
		return ParseJSPF(r)
	}
	return ParseXSPF(r)
}
