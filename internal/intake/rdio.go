package intake

import (
	"errors"
	"net/url"
	"strings"

	"github.com/chime-player/chime/internal/resolve"
)

// isRdioTrack recognizes rdio track page URLs. The artist, album and track
// names are embedded in the path, so no network lookup is needed.
func isRdioTrack(text string) bool {
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host != "rdio.com" && !strings.HasSuffix(host, ".rdio.com") {
		return false
	}
	return strings.Contains(u.Path, "/artist/") && strings.Contains(u.Path, "/track/")
}

// parseRdioTrack extracts a query from an rdio track URL of the form
// /artist/<artist>/album/<album>/track/<track>/.
func parseRdioTrack(text string) (*resolve.Query, error) {
	u, err := url.Parse(text)
	if err != nil {
		return nil, err
	}

	var artist, album, track string
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i += 2 {
		value, err := url.PathUnescape(segments[i+1])
		if err != nil {
			value = segments[i+1]
		}
		value = strings.ReplaceAll(value, "_", " ")
		switch segments[i] {
		case "artist":
			artist = value
		case "album":
			album = value
		case "track":
			track = value
		}
	}
	if artist == "" || track == "" {
		return nil, errors.New("rdio url missing artist or track")
	}
	return resolve.NewQuery(artist, track, album), nil
}
