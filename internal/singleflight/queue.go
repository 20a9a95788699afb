// Package singleflight collapses concurrent identical fetches into a
// single execution shared by every caller.  It exists because several
// page loads can ask for the same uncached BoardGameGeek thumbnail at
// once; without coalescing, each request would hit the upstream API
// independently and risk a rate-limit ban.  The queue is generic over
// the key and result types so any "do this expensive thing at most
// once at a time per key" need can reuse it.
package singleflight

import (
	"context"
	"sync"
)

// FetchFunc performs the underlying work for one key.  It runs in its
// own goroutine and always runs to completion: a caller abandoning
// its wait does not cancel the fetch.
type FetchFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Flight is the shared handle for one in-progress fetch.  All callers
// that enqueue the same key while the fetch is running receive the
// same *Flight and therefore observe the identical result value or
// the identical error object.
type Flight[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Done is closed once the fetch has settled.
func (f *Flight[V]) Done() <-chan struct{} { return f.done }

// Wait blocks until the fetch settles or ctx is cancelled.  A
// cancelled wait only abandons this caller; the fetch keeps running
// for everyone else.
func (f *Flight[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Queue maps keys to their in-flight fetches.  Only keys with an
// active fetch are present.  The map is process-local by design: in a
// multi-instance deployment each process would coalesce on its own,
// which is an accepted limitation of the single-process setup.
type Queue[K comparable, V any] struct {
	fetch FetchFunc[K, V]

	mu       sync.Mutex
	inflight map[K]*Flight[V]
}

func NewQueue[K comparable, V any](fetch FetchFunc[K, V]) *Queue[K, V] {
	return &Queue[K, V]{fetch: fetch, inflight: make(map[K]*Flight[V])}
}

// Enqueue returns the flight for key, starting one if none is
// running.  N concurrent callers for the same key trigger exactly one
// invocation of the fetch function and all receive the identical
// handle.  The entry is removed as soon as the fetch settles, success
// or failure alike, so a later Enqueue always starts fresh work; the
// queue performs no negative caching (callers layer their own
// "don't retry for a while" policy on top).
func (q *Queue[K, V]) Enqueue(key K) *Flight[V] {
	q.mu.Lock()
	if f, ok := q.inflight[key]; ok {
		q.mu.Unlock()
		return f
	}
	f := &Flight[V]{done: make(chan struct{})}
	q.inflight[key] = f
	q.mu.Unlock()

	go func() {
		val, err := q.fetch(context.Background(), key)
		// Store the outcome and drop the map entry before signalling
		// completion.  Waiters released by the close can therefore
		// never observe a stale entry for an already-settled fetch.
		q.mu.Lock()
		f.val, f.err = val, err
		delete(q.inflight, key)
		q.mu.Unlock()
		close(f.done)
	}()

	return f
}

// IsInFlight reports whether a fetch for key is currently running.
func (q *Queue[K, V]) IsInFlight(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.inflight[key]
	return ok
}
