package loader

import (
	"encoding/xml"
	"io"

	"github.com/chime-player/chime/internal/playlist"
)

type xspfDocument struct {
	XMLName xml.Name    `xml:"playlist"`
	XMLNS   string      `xml:"xmlns,attr"`
	Version string      `xml:"version,attr"`
	Title   string      `xml:"title"`
	Tracks  []xspfTrack `xml:"trackList>track"`
}

type xspfTrack struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Album    string `xml:"album"`
	Location string `xml:"location"`
}

// ParseXSPF decodes an XSPF playlist document.
func ParseXSPF(r io.Reader) (string, []playlist.Entry, error) {
	var doc xspfDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return "", nil, err
	}
	entries := make([]playlist.Entry, 0, len(doc.Tracks))
	for _, track := range doc.Tracks {
		entries = append(entries, playlist.Entry{
			Artist: track.Creator,
			Title:  track.Title,
			Album:  track.Album,
			URL:    track.Location,
		})
	}
	return doc.Title, entries, nil
}

// GenerateXSPF writes a playlist as an XSPF document.
func GenerateXSPF(w io.Writer, pl playlist.Playlist) error {
	doc := xspfDocument{
		XMLNS:   "http://xspf.org/ns/0/",
		Version: "1",
		Title:   pl.Title,
		Tracks:  make([]xspfTrack, 0, len(pl.Entries)),
	}
	for _, entry := range pl.Entries {
		doc.Tracks = append(doc.Tracks, xspfTrack{
			Title:    entry.Title,
			Creator:  entry.Artist,
			Album:    entry.Album,
			Location: entry.URL,
		})
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	return enc.Encode(doc)
}
