package playlist

import (
	"testing"
	"time"

	"github.com/chime-player/chime/pkg/actionlink"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(nil, t.TempDir(), "tester")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestStoreCreateAndGet(t *testing.T) {
	store := newTestStore(t)

	created, err := store.Create("Road Trip")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.PlaylistID == "" || created.Revision != 1 {
		t.Fatalf("unexpected playlist %+v", created)
	}

	loaded, err := store.Get(created.PlaylistID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.Title != "Road Trip" || loaded.Owner != "tester" {
		t.Fatalf("round trip mismatch %+v", loaded)
	}
}

func TestStoreAppendBumpsRevision(t *testing.T) {
	store := newTestStore(t)
	created, err := store.Create("Mix")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := store.Append(created.PlaylistID, Entry{Artist: "Muse", Title: "Uprising"})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if updated.Revision != 2 || len(updated.Entries) != 1 {
		t.Fatalf("unexpected revision %+v", updated)
	}
	if updated.Entries[0].EntryID == "" {
		t.Fatalf("entry id not assigned")
	}
}

func TestStoreCreateStationModes(t *testing.T) {
	store := newTestStore(t)
	controls := []actionlink.RadioControl{
		{Attribute: actionlink.AttrArtist, Bound: actionlink.BoundExact, Value: "Muse"},
	}

	onDemand, err := store.CreateStation(actionlink.StationDraft{
		Title:         "Muse Radio",
		GeneratorType: "harmonic",
		Mode:          actionlink.StationOnDemand,
		Controls:      controls,
	})
	if err != nil {
		t.Fatalf("create station: %v", err)
	}
	if !onDemand.IsStation() || onDemand.Entries != nil {
		t.Fatalf("on-demand station should carry no fixed entries: %+v", onDemand)
	}

	static, err := store.CreateStation(actionlink.StationDraft{
		Title:         "Muse Mix",
		GeneratorType: "harmonic",
		Mode:          actionlink.StationStatic,
		Controls:      controls,
	})
	if err != nil {
		t.Fatalf("create static station: %v", err)
	}
	if static.Entries == nil {
		t.Fatalf("static station should fix an entry set")
	}
	loaded, err := store.Get(static.PlaylistID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(loaded.Controls) != 1 || loaded.Controls[0].Value != "Muse" {
		t.Fatalf("controls did not persist: %+v", loaded)
	}
}

func TestStoreAddBookmarkCreatesPlaylistOnce(t *testing.T) {
	store := newTestStore(t)

	add := func(title string) string {
		done := make(chan string, 1)
		store.AddBookmark(Entry{Artist: "Muse", Title: title}, func(playlistID string, err error) {
			if err != nil {
				t.Errorf("bookmark %s: %v", title, err)
			}
			done <- playlistID
		})
		select {
		case id := <-done:
			return id
		case <-time.After(2 * time.Second):
			t.Fatalf("bookmark %s did not complete", title)
			return ""
		}
	}

	first := add("Uprising")
	second := add("Starlight")
	if first == "" || first != second {
		t.Fatalf("bookmarks playlist not reused: %q vs %q", first, second)
	}

	pl, err := store.Get(first)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if pl.Title != BookmarksTitle || len(pl.Entries) != 2 {
		t.Fatalf("unexpected bookmarks playlist %+v", pl)
	}
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Create("Zeta"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Create("Alpha"); err != nil {
		t.Fatalf("create: %v", err)
	}

	playlists, err := store.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(playlists) != 2 || playlists[0].Title != "Alpha" {
		t.Fatalf("unexpected listing %+v", playlists)
	}
}
