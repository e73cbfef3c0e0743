package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/chime-player/chime/internal/resolve"
)

// DefaultSpotifyLookupBase is the metadata lookup endpoint for Spotify track
// URIs. Tests point this at a local server.
const DefaultSpotifyLookupBase = "https://ws.spotify.com/lookup/1/.json"

var spotifyTrackID = regexp.MustCompile(`^[0-9A-Za-z]{10,32}$`)

// isSpotifyTrack recognizes both the web URL and the URI form of a track.
func isSpotifyTrack(text string) bool {
	if strings.HasPrefix(text, "spotify:track:") {
		return true
	}
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Hostname(), "open.spotify.com") &&
		strings.HasPrefix(u.Path, "/track/")
}

func spotifyTrackURI(text string) (string, error) {
	if strings.HasPrefix(text, "spotify:track:") {
		id := strings.TrimPrefix(text, "spotify:track:")
		if !spotifyTrackID.MatchString(id) {
			return "", errors.New("malformed spotify track uri")
		}
		return "spotify:track:" + id, nil
	}
	u, err := url.Parse(text)
	if err != nil {
		return "", err
	}
	id := strings.TrimPrefix(u.Path, "/track/")
	if i := strings.IndexByte(id, '/'); i >= 0 {
		id = id[:i]
	}
	if !spotifyTrackID.MatchString(id) {
		return "", errors.New("malformed spotify track url")
	}
	return "spotify:track:" + id, nil
}

type spotifyLookupReply struct {
	Track struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Album struct {
			Name string `json:"name"`
		} `json:"album"`
	} `json:"track"`
}

// lookupSpotifyTrack fetches track metadata for a spotify:track: URI and
// converts it to a resolvable query.
func lookupSpotifyTrack(client *http.Client, base string, uri string) (*resolve.Query, error) {
	endpoint := fmt.Sprintf("%s?uri=%s", base, url.QueryEscape(uri))
	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("spotify lookup status %d", resp.StatusCode)
	}

	var reply spotifyLookupReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, err
	}
	if reply.Track.Name == "" || len(reply.Track.Artists) == 0 {
		return nil, errors.New("spotify lookup returned no track")
	}
	return resolve.NewQuery(reply.Track.Artists[0].Name, reply.Track.Name, reply.Track.Album.Name), nil
}
