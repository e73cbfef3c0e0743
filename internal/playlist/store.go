package playlist

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chime-player/chime/pkg/actionlink"
)

// BookmarksTitle names the playlist new-track bookmarks land in.
const BookmarksTitle = "Bookmarks"

// Entry is one track reference within a playlist.
type Entry struct {
	EntryID string `json:"entryId"`
	Artist  string `json:"artist,omitempty"`
	Title   string `json:"title,omitempty"`
	Album   string `json:"album,omitempty"`
	URL     string `json:"url,omitempty"`
}

// Playlist is stored on disk as JSON. Station playlists additionally carry
// a generator type, a mode and the filter controls that seeded them.
type Playlist struct {
	PlaylistID    string                    `json:"playlistId"`
	Title         string                    `json:"title"`
	Owner         string                    `json:"owner"`
	Revision      int64                     `json:"revision"`
	Entries       []Entry                   `json:"entries"`
	GeneratorType string                    `json:"generatorType,omitempty"`
	Mode          actionlink.StationMode    `json:"mode,omitempty"`
	Controls      []actionlink.RadioControl `json:"controls,omitempty"`
	CreatedAt     int64                     `json:"createdAt"`
	UpdatedAt     int64                     `json:"updatedAt"`
}

// IsStation reports whether the playlist was seeded by a generator.
func (p Playlist) IsStation() bool {
	return p.GeneratorType != ""
}

// Store provides playlist persistence rooted at a directory.
type Store struct {
	log   *zap.Logger
	root  string
	owner string
	mu    sync.Mutex
}

// NewStore creates a store at root. The owner names the local user and is
// stamped on every playlist created here.
func NewStore(log *zap.Logger, root string, owner string) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("storage path required")
	}
	if strings.TrimSpace(owner) == "" {
		owner = "local"
	}
	return &Store{log: log, root: root, owner: owner}, nil
}

func (s *Store) path(id string) string {
	replacer := strings.NewReplacer(":", "_", "/", "_", "\\", "_", " ", "_")
	return filepath.Join(s.root, "playlists", replacer.Replace(id)+".json")
}

// Create makes a new empty playlist with the given title.
func (s *Store) Create(title string) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	pl := Playlist{
		PlaylistID: newID(),
		Title:      title,
		Owner:      s.owner,
		Revision:   1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.save(pl); err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

// CreateStation persists a generated playlist from a decoded draft. Static
// stations fix an (initially empty) entry set; on-demand stations keep only
// their controls and generate tracks lazily at playback time.
func (s *Store) CreateStation(draft actionlink.StationDraft) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	pl := Playlist{
		PlaylistID:    newID(),
		Title:         draft.Title,
		Owner:         s.owner,
		Revision:      1,
		GeneratorType: draft.GeneratorType,
		Mode:          draft.Mode,
		Controls:      draft.Controls,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if draft.Mode == actionlink.StationStatic {
		pl.Entries = []Entry{}
	}
	if err := s.save(pl); err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

// Get loads a playlist by id.
func (s *Store) Get(id string) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pl Playlist
	if err := readJSON(s.path(id), &pl); err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

// List returns all playlists sorted by title.
func (s *Store) List() ([]Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths, err := filepath.Glob(filepath.Join(s.root, "playlists", "*.json"))
	if err != nil {
		return nil, err
	}
	playlists := make([]Playlist, 0, len(paths))
	for _, path := range paths {
		var pl Playlist
		if err := readJSON(path, &pl); err != nil {
			return nil, err
		}
		playlists = append(playlists, pl)
	}
	sort.Slice(playlists, func(i, j int) bool {
		return playlists[i].Title < playlists[j].Title
	})
	return playlists, nil
}

// Delete removes a playlist.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.Remove(s.path(id))
}

// Append adds entries to a playlist as a new revision.
func (s *Store) Append(id string, entries ...Entry) (Playlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(id, entries...)
}

func (s *Store) appendLocked(id string, entries ...Entry) (Playlist, error) {
	var pl Playlist
	if err := readJSON(s.path(id), &pl); err != nil {
		return Playlist{}, err
	}
	for _, entry := range entries {
		if entry.EntryID == "" {
			entry.EntryID = newID()
		}
		pl.Entries = append(pl.Entries, entry)
	}
	pl.Revision++
	pl.UpdatedAt = time.Now().Unix()
	if err := s.save(pl); err != nil {
		return Playlist{}, err
	}
	return pl, nil
}

// AddBookmark appends an entry to the bookmarks playlist, creating the
// playlist first if the user does not have one yet. The insert runs off the
// caller's goroutine; done fires once the new revision is on disk.
func (s *Store) AddBookmark(entry Entry, done func(playlistID string, err error)) {
	go func() {
		id, err := s.ensureBookmarks()
		if err != nil {
			s.log.Warn("bookmarks playlist unavailable", zap.Error(err))
			done("", err)
			return
		}
		s.mu.Lock()
		_, err = s.appendLocked(id, entry)
		s.mu.Unlock()
		if err != nil {
			s.log.Warn("bookmark append failed", zap.Error(err))
			done("", err)
			return
		}
		done(id, nil)
	}()
}

func (s *Store) ensureBookmarks() (string, error) {
	playlists, err := s.List()
	if err != nil {
		return "", err
	}
	for _, pl := range playlists {
		if pl.Title == BookmarksTitle && !pl.IsStation() {
			return pl.PlaylistID, nil
		}
	}
	pl, err := s.Create(BookmarksTitle)
	if err != nil {
		return "", err
	}
	return pl.PlaylistID, nil
}

func (s *Store) save(pl Playlist) error {
	path := s.path(pl.PlaylistID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return writeJSON(path, pl)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSON(path string, v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return hex.EncodeToString(b[0:4]) + "-" +
		hex.EncodeToString(b[4:6]) + "-" +
		hex.EncodeToString(b[6:8]) + "-" +
		hex.EncodeToString(b[8:10]) + "-" +
		hex.EncodeToString(b[10:16])
}
