package store

import (
	"context"
	"sync"
)

// hub fans values out to subscribers. Each subscriber channel has room for
// one value; a publish replaces an unread value instead of blocking.
type hub[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]chan T
}

// subscribe registers a channel primed with current. The channel is closed
// and dropped once ctx is done; with a context that is never cancelled the
// subscription lives as long as the hub. No goroutine is held per
// subscriber.
func (h *hub[T]) subscribe(ctx context.Context, current T) <-chan T {
	ch := make(chan T, 1)
	ch <- current

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[int]chan T)
	}
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	context.AfterFunc(ctx, func() {
		h.mu.Lock()
		delete(h.subs, id)
		close(ch)
		h.mu.Unlock()
	})

	return ch
}

func (h *hub[T]) publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

func (h *hub[T]) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
