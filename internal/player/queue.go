package player

import (
	"errors"
	"sync"
)

// Item describes a queued track.
type Item struct {
	ItemID string `json:"itemId"`
	Artist string `json:"artist,omitempty"`
	Title  string `json:"title,omitempty"`
	Album  string `json:"album,omitempty"`
	URL    string `json:"url"`
	Mime   string `json:"mime,omitempty"`
}

// Queue holds the canonical playback queue.
type Queue struct {
	mu       sync.Mutex
	revision int64
	index    int64
	items    []Item
}

// Append adds items to the end of the queue.
func (q *Queue) Append(items ...Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, items...)
	q.revision++
}

// InsertNext places items directly after the current index.
func (q *Queue) InsertNext(items ...Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	at := q.index + 1
	if at > int64(len(q.items)) {
		at = int64(len(q.items))
	}
	result := make([]Item, 0, len(q.items)+len(items))
	result = append(result, q.items[:at]...)
	result = append(result, items...)
	result = append(result, q.items[at:]...)
	q.items = result
	q.revision++
}

// Set replaces the queue atomically.
func (q *Queue) Set(items []Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = items
	q.index = 0
	q.revision++
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
	q.index = 0
	q.revision++
}

// Jump sets the current index.
func (q *Queue) Jump(index int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= int64(len(q.items)) {
		return errors.New("index out of range")
	}
	q.index = index
	q.revision++
	return nil
}

// Next advances to the following item.
func (q *Queue) Next() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index+1 >= int64(len(q.items)) {
		return Item{}, false
	}
	q.index++
	return q.items[q.index], true
}

// Prev moves back one item.
func (q *Queue) Prev() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.index <= 0 || len(q.items) == 0 {
		return Item{}, false
	}
	q.index--
	return q.items[q.index], true
}

// Current returns the item at the current index.
func (q *Queue) Current() (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 || q.index < 0 || q.index >= int64(len(q.items)) {
		return Item{}, false
	}
	return q.items[q.index], true
}

// Items returns a copy of the queue contents.
func (q *Queue) Items() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// Len returns the queue length.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Revision returns the queue revision counter.
func (q *Queue) Revision() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.revision
}
