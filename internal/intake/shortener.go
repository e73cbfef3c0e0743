package intake

import (
	"errors"
	"net/http"
	"net/url"
)

// shortenerHosts lists the indirection services we are willing to expand.
var shortenerHosts = map[string]bool{
	"bit.ly": true,
	"j.mp":   true,
	"t.co":   true,
	"rd.io":  true,
}

func isShortened(text string) bool {
	u, err := url.Parse(text)
	if err != nil {
		return false
	}
	return shortenerHosts[u.Hostname()]
}

// expandShortened performs exactly one redirect round trip and returns the
// target URL. The caller is responsible for not expanding the result again.
func expandShortened(client *http.Client, shortURL string) (string, error) {
	// Copy the client so the redirect policy does not leak to other users.
	c := *client
	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := c.Get(shortURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return "", errors.New("shortened url did not redirect")
	}
	location := resp.Header.Get("Location")
	if location == "" {
		return "", errors.New("redirect without location")
	}
	target, err := resp.Request.URL.Parse(location)
	if err != nil {
		return "", err
	}
	return target.String(), nil
}
