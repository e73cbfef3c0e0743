package actionlink

import (
	"errors"
	"net/url"
	"strings"
)

// Scheme is the command link scheme prefix.
const Scheme = "chime://"

// ShareOrigin is the fixed web origin used for outbound share links.
const ShareOrigin = "https://chime.fm"

// Category identifies the command family of a link.
type Category string

// Category vocabulary. Tokens are matched case-sensitively.
const (
	CategoryPlaylist     Category = "playlist"
	CategoryCollection   Category = "collection"
	CategoryQueue        Category = "queue"
	CategoryStation      Category = "station"
	CategoryAutoplaylist Category = "autoplaylist"
	CategorySearch       Category = "search"
	CategoryPlay         Category = "play"
	CategoryBookmark     Category = "bookmark"
	CategoryOpen         Category = "open"
)

// legacyLoad is accepted for backward compatibility with older producers
// and rewritten to a playlist import before dispatch.
const legacyLoad = "load"

var (
	// ErrNotOurScheme reports input that is not a chime:// link at all.
	ErrNotOurScheme = errors.New("not a chime:// link")
	// ErrUnknownCategory reports a chime:// link with an unrecognized category.
	ErrUnknownCategory = errors.New("unknown link category")
)

// Param is a single key/value query parameter.
type Param struct {
	Key   string
	Value string
}

// Params is an ordered parameter list. Duplicate keys are allowed;
// lookups return the first occurrence.
type Params []Param

// Get returns the value of the first parameter named key.
func (p Params) Get(key string) string {
	for _, param := range p {
		if param.Key == key {
			return param.Value
		}
	}
	return ""
}

// Has reports whether a parameter named key is present.
func (p Params) Has(key string) bool {
	for _, param := range p {
		if param.Key == key {
			return true
		}
	}
	return false
}

// Values returns every value for key, in encounter order.
func (p Params) Values(key string) []string {
	var out []string
	for _, param := range p {
		if param.Key == key {
			out = append(out, param.Value)
		}
	}
	return out
}

// Link is a parsed action link. Immutable once parsed.
type Link struct {
	Category Category
	Segments []string
	Params   Params
}

// Parse decodes a command link. Input without the scheme prefix fails with
// ErrNotOurScheme; a recognized scheme with an unknown category fails with
// ErrUnknownCategory.
func Parse(text string) (Link, error) {
	idx := strings.Index(text, Scheme)
	if idx < 0 {
		return Link{}, ErrNotOurScheme
	}

	cmd := text[idx+len(Scheme):]
	// Some producers historically double-encoded spaces as %2B.
	cmd = strings.ReplaceAll(cmd, "%2B", "%20")

	path := cmd
	query := ""
	if q := strings.IndexByte(cmd, '?'); q >= 0 {
		path, query = cmd[:q], cmd[q+1:]
	}

	segments := splitSegments(path)
	if len(segments) == 0 {
		return Link{}, ErrUnknownCategory
	}
	token := segments[0]
	rest := segments[1:]
	params := parseParams(query)

	if token == legacyLoad {
		if params.Has("xspf") || params.Has("jspf") {
			return Link{Category: CategoryPlaylist, Segments: []string{"import"}, Params: params}, nil
		}
		return Link{}, ErrUnknownCategory
	}

	switch Category(token) {
	case CategoryPlaylist, CategoryCollection, CategoryQueue, CategoryStation,
		CategoryAutoplaylist, CategorySearch, CategoryPlay, CategoryBookmark, CategoryOpen:
		return Link{Category: Category(token), Segments: rest, Params: params}, nil
	}
	return Link{}, ErrUnknownCategory
}

// Encode renders a chime:// command link.
func Encode(category Category, segments []string, params Params) string {
	return encodeWith(Scheme, category, segments, params)
}

// EncodeWeb renders the shareable web form of a link under the fixed origin.
func EncodeWeb(category Category, segments []string, params Params) string {
	return encodeWith(ShareOrigin+"/", category, segments, params)
}

func encodeWith(base string, category Category, segments []string, params Params) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteString(string(category))
	for _, seg := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(seg))
	}
	if len(segments) > 0 {
		b.WriteByte('/')
	}
	if len(params) > 0 {
		b.WriteByte('?')
		for i, param := range params {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(param.Key))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(param.Value))
		}
	}
	// Single quote is a valid literal in URLs, but some receivers of the
	// encoded text insist on %27.
	return strings.ReplaceAll(b.String(), "'", "%27")
}

func splitSegments(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		if decoded, err := url.PathUnescape(part); err == nil {
			part = decoded
		}
		out = append(out, part)
	}
	return out
}

func parseParams(query string) Params {
	if query == "" {
		return nil
	}
	pairs := strings.Split(query, "&")
	params := make(Params, 0, len(pairs))
	for _, pair := range pairs {
		if pair == "" {
			continue
		}
		key, value := pair, ""
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			key, value = pair[:eq], pair[eq+1:]
		}
		if decoded, err := url.QueryUnescape(key); err == nil {
			key = decoded
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			value = decoded
		}
		params = append(params, Param{Key: key, Value: value})
	}
	return params
}
