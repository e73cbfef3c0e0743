package loader

import (
	"encoding/json"
	"io"

	"github.com/chime-player/chime/internal/playlist"
)

type jspfDocument struct {
	Playlist jspfPlaylist `json:"playlist"`
}

type jspfPlaylist struct {
	Title  string      `json:"title"`
	Tracks []jspfTrack `json:"track"`
}

type jspfTrack struct {
	Title    string   `json:"title"`
	Creator  string   `json:"creator"`
	Album    string   `json:"album"`
	Location []string `json:"location"`
}

// ParseJSPF decodes a JSPF playlist document.
func ParseJSPF(r io.Reader) (string, []playlist.Entry, error) {
	var doc jspfDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return "", nil, err
	}
	entries := make([]playlist.Entry, 0, len(doc.Playlist.Tracks))
	for _, track := range doc.Playlist.Tracks {
		var location string
		if len(track.Location) > 0 {
			location = track.Location[0]
		}
		entries = append(entries, playlist.Entry{
			Artist: track.Creator,
			Title:  track.Title,
			Album:  track.Album,
			URL:    location,
		})
	}
	return doc.Playlist.Title, entries, nil
}
