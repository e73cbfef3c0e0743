package loader

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/chime-player/chime/internal/playlist"
)

const sampleXSPF = `<?xml version="1.0" encoding="UTF-8"?>
<playlist xmlns="http://xspf.org/ns/0/" version="1">
  <title>Road Trip</title>
  <trackList>
    <track>
      <title>Uprising</title>
      <creator>Muse</creator>
      <album>The Resistance</album>
      <location>http://example.com/uprising.mp3</location>
    </track>
    <track>
      <title>Song 2</title>
      <creator>Blur</creator>
    </track>
  </trackList>
</playlist>`

const sampleJSPF = `{
  "playlist": {
    "title": "Quiet Hours",
    "track": [
      {"title": "Svefn-g-englar", "creator": "Sigur Rós", "location": ["http://example.com/svefn.mp3"]}
    ]
  }
}`

type memStore struct {
	playlists map[string]*playlist.Playlist
}

func newMemStore() *memStore {
	return &memStore{playlists: make(map[string]*playlist.Playlist)}
}

func (s *memStore) Create(title string) (playlist.Playlist, error) {
	pl := playlist.Playlist{PlaylistID: fmt.Sprintf("pl-%d", len(s.playlists)+1), Title: title, Revision: 1}
	s.playlists[pl.PlaylistID] = &pl
	return pl, nil
}

func (s *memStore) Append(id string, entries ...playlist.Entry) (playlist.Playlist, error) {
	pl := s.playlists[id]
	pl.Entries = append(pl.Entries, entries...)
	pl.Revision++
	return *pl, nil
}

func TestParseXSPF(t *testing.T) {
	title, entries, err := ParseXSPF(strings.NewReader(sampleXSPF))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if title != "Road Trip" || len(entries) != 2 {
		t.Fatalf("title = %q, entries = %v", title, entries)
	}
	if entries[0].Artist != "Muse" || entries[0].URL != "http://example.com/uprising.mp3" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestParseJSPF(t *testing.T) {
	title, entries, err := ParseJSPF(strings.NewReader(sampleJSPF))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if title != "Quiet Hours" || len(entries) != 1 {
		t.Fatalf("title = %q, entries = %v", title, entries)
	}
	if entries[0].Title != "Svefn-g-englar" || entries[0].URL != "http://example.com/svefn.mp3" {
		t.Fatalf("unexpected entry %+v", entries[0])
	}
}

func TestGenerateXSPFRoundTrip(t *testing.T) {
	pl := playlist.Playlist{
		Title: "Out",
		Entries: []playlist.Entry{
			{Artist: "Muse", Title: "Uprising", Album: "The Resistance", URL: "http://example.com/u.mp3"},
		},
	}

	var buf bytes.Buffer
	if err := GenerateXSPF(&buf, pl); err != nil {
		t.Fatalf("generate: %v", err)
	}

	title, entries, err := ParseXSPF(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if title != "Out" || len(entries) != 1 || entries[0].Artist != "Muse" {
		t.Fatalf("round trip lost data: %q %v", title, entries)
	}
}

func TestLoaderImport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".jspf") {
			fmt.Fprint(w, sampleJSPF)
			return
		}
		fmt.Fprint(w, sampleXSPF)
	}))
	defer server.Close()

	store := newMemStore()
	l := New(nil, server.Client(), store)

	if err := l.Import(server.URL + "/road-trip.xspf"); err != nil {
		t.Fatalf("import xspf: %v", err)
	}
	if err := l.Import(server.URL + "/quiet.jspf"); err != nil {
		t.Fatalf("import jspf: %v", err)
	}

	if len(store.playlists) != 2 {
		t.Fatalf("expected 2 playlists, got %d", len(store.playlists))
	}
	var total int
	for _, pl := range store.playlists {
		total += len(pl.Entries)
	}
	if total != 3 {
		t.Fatalf("expected 3 imported tracks, got %d", total)
	}
}

func TestLoaderImportFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	l := New(nil, server.Client(), newMemStore())
	if err := l.Import(server.URL + "/missing.xspf"); err == nil {
		t.Fatalf("expected fetch failure")
	}
}
