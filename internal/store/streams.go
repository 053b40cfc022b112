package store

import (
	"sync"

	"github.com/mohamed352/edu-sync-core/internal/domain"
)

// topic is a broadcast publisher for one relation's full contents: every
// subscriber gets the current snapshot on subscribe and the latest
// snapshot after every commit that touches the relation. The channel is
// buffered to depth 1 and a pending value is replaced rather than queued
// — slow subscribers coalesce onto the newest state instead of building a
// backlog, per the Design Notes in §9.
type topic[T any] struct {
	mu   sync.Mutex
	subs []chan []T
}

func (t *topic[T]) subscribe(initial []T) <-chan []T {
	ch := make(chan []T, 1)
	ch <- initial

	t.mu.Lock()
	t.subs = append(t.subs, ch)
	t.mu.Unlock()

	return ch
}

func (t *topic[T]) publish(snapshot []T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range t.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (t *topic[T]) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, ch := range t.subs {
		close(ch)
	}
	t.subs = nil
}

// broadcastHub groups the four per-relation topics this store publishes.
type broadcastHub struct {
	users    topic[domain.User]
	lessons  topic[domain.Lesson]
	progress topic[domain.Progress]
	journal  topic[domain.JournalEntry]
}

func (h *broadcastHub) init() {}

func (h *broadcastHub) closeAll() {
	h.users.closeAll()
	h.lessons.closeAll()
	h.progress.closeAll()
	h.journal.closeAll()
}
