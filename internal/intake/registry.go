package intake

import (
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/chime-player/chime/internal/resolve"
)

// AlbumRef points at an album whose track list is already known in-process.
type AlbumRef struct {
	Artist string
	Album  string
	Tracks []*resolve.Query
}

// ArtistRef points at an artist whose top tracks are already known in-process.
type ArtistRef struct {
	Artist string
	Tracks []*resolve.Query
}

// Registry holds live object handles referenced by structured drag payloads.
// Payload data carries opaque handle strings instead of serialized tracks;
// the receiving side dereferences them here without any network round trip.
type Registry struct {
	mu      sync.RWMutex
	queries map[string]*resolve.Query
	albums  map[string]AlbumRef
	artists map[string]ArtistRef
}

// NewRegistry creates an empty handle registry.
func NewRegistry() *Registry {
	return &Registry{
		queries: make(map[string]*resolve.Query),
		albums:  make(map[string]AlbumRef),
		artists: make(map[string]ArtistRef),
	}
}

// RegisterQuery stores q and returns its handle.
func (r *Registry) RegisterQuery(q *resolve.Query) string {
	handle := newHandle()
	r.mu.Lock()
	r.queries[handle] = q
	r.mu.Unlock()
	return handle
}

// RegisterAlbum stores an album reference and returns its handle.
func (r *Registry) RegisterAlbum(ref AlbumRef) string {
	handle := newHandle()
	r.mu.Lock()
	r.albums[handle] = ref
	r.mu.Unlock()
	return handle
}

// RegisterArtist stores an artist reference and returns its handle.
func (r *Registry) RegisterArtist(ref ArtistRef) string {
	handle := newHandle()
	r.mu.Lock()
	r.artists[handle] = ref
	r.mu.Unlock()
	return handle
}

// Query dereferences a query handle.
func (r *Registry) Query(handle string) (*resolve.Query, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[handle]
	return q, ok
}

// Album dereferences an album handle.
func (r *Registry) Album(handle string) (AlbumRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.albums[handle]
	return ref, ok
}

// Artist dereferences an artist handle.
func (r *Registry) Artist(handle string) (ArtistRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ref, ok := r.artists[handle]
	return ref, ok
}

// Release drops a handle of any kind.
func (r *Registry) Release(handle string) {
	r.mu.Lock()
	delete(r.queries, handle)
	delete(r.albums, handle)
	delete(r.artists, handle)
	r.mu.Unlock()
}

func newHandle() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
