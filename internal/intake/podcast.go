package intake

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/chime-player/chime/internal/resolve"
)

// isPodcastFeed recognizes URLs that look like RSS/Atom podcast feeds.
func isPodcastFeed(text string) bool {
	u, err := url.Parse(text)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	path := strings.ToLower(u.Path)
	if strings.HasSuffix(path, ".xml") || strings.HasSuffix(path, ".rss") {
		return true
	}
	return strings.HasSuffix(path, "/feed") || strings.Contains(path, "/feed/")
}

// parsePodcastFeed fetches a feed and converts episodes with audio
// enclosures to queries. Enclosure URLs are kept as direct result hints so
// the pipeline can treat them as playable without a library match.
func parsePodcastFeed(client *http.Client, feedURL string) ([]*resolve.Query, error) {
	parser := gofeed.NewParser()
	parser.Client = client

	feed, err := parser.ParseURL(feedURL)
	if err != nil {
		return nil, err
	}

	queries := make([]*resolve.Query, 0, len(feed.Items))
	for _, item := range feed.Items {
		var enclosure string
		for _, enc := range item.Enclosures {
			if strings.HasPrefix(enc.Type, "audio/") || enc.Type == "" {
				enclosure = enc.URL
				break
			}
		}
		if enclosure == "" {
			continue
		}
		artist := feed.Title
		if item.Author != nil && item.Author.Name != "" {
			artist = item.Author.Name
		}
		q := resolve.NewQuery(artist, item.Title, feed.Title)
		q.ResultHint = enclosure
		queries = append(queries, q)
	}
	return queries, nil
}
