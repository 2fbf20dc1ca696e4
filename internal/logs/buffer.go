// Package logs captures application log entries in a bounded in-memory ring
// and serves them over HTTP and WebSocket.
package logs

import (
	"sync"

	"github.com/adscout/backend/internal/models"
)

// Buffer is a fixed-capacity ring of log entries. When full, the oldest entry is overwritten.
type Buffer struct {
	mu      sync.RWMutex
	entries []models.LogEntry
	next    int
	full    bool
	subs    map[chan models.LogEntry]struct{}
}

// NewBuffer creates a ring holding at most capacity entries.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = 1
	}
	return &Buffer{
		entries: make([]models.LogEntry, capacity),
		subs:    make(map[chan models.LogEntry]struct{}),
	}
}

// Append stores e and fans it out to subscribers. Slow subscribers miss entries rather than block logging.
func (b *Buffer) Append(e models.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.next] = e
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *Buffer) Entries() []models.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.full {
		out := make([]models.LogEntry, b.next)
		copy(out, b.entries[:b.next])
		return out
	}
	out := make([]models.LogEntry, 0, len(b.entries))
	out = append(out, b.entries[b.next:]...)
	return append(out, b.entries[:b.next]...)
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.full {
		return len(b.entries)
	}
	return b.next
}

// Subscribe registers a channel receiving every entry appended from now on.
// The returned cancel func unregisters and closes the channel.
func (b *Buffer) Subscribe(size int) (<-chan models.LogEntry, func()) {
	ch := make(chan models.LogEntry, size)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}
