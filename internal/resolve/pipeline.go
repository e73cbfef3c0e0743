package resolve

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// Query describes a track the pipeline should find a playable source for.
// The descriptor is immutable; resolution outcomes are delivered through
// the pipeline's completion signal.
type Query struct {
	ID         string
	Artist     string
	Title      string
	Album      string
	ResultHint string
}

// NewQuery builds a query with a fresh identity.
func NewQuery(artist, title, album string) *Query {
	return &Query{ID: newID(), Artist: artist, Title: title, Album: album}
}

// DisplayName renders the query for logs.
func (q *Query) DisplayName() string {
	parts := make([]string, 0, 2)
	if q.Artist != "" {
		parts = append(parts, q.Artist)
	}
	if q.Title != "" {
		parts = append(parts, q.Title)
	}
	if len(parts) == 0 {
		return q.ResultHint
	}
	return strings.Join(parts, " - ")
}

// Result is one concrete playable source for a query.
type Result struct {
	URL        string
	Mime       string
	DurationMS int64
}

// CompletionFunc receives a query's resolution outcome. An empty result
// slice means the query resolved to nothing playable.
type CompletionFunc func(q *Query, results []Result)

// Pipeline resolves track queries asynchronously. Resolution may take an
// unbounded amount of time; there is no timeout at this layer.
type Pipeline interface {
	// Resolve schedules resolution of q. Background queries are deprioritized
	// relative to interactive ones.
	Resolve(q *Query, background bool)

	// Watch registers fn for q's completion signal. The returned cancel
	// detaches the observer; a completion already in flight may still be
	// delivered, so observers must re-check relevance on arrival.
	Watch(q *Query, fn CompletionFunc) (cancel func())
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
