// Package inflight tracks in-flight operations per entity and orders
// responses so stale ones can be dropped.
package inflight

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Tracker records which entity keys have an operation in flight.
// Keys are independent: marking one never blocks another.
type Tracker struct {
	mu     sync.RWMutex
	active map[string]bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]bool)}
}

// Begin marks key as in flight. It returns false, without changing
// anything, when key is already in flight.
func (t *Tracker) Begin(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[key] {
		return false
	}
	t.active[key] = true
	return true
}

// End clears key.
func (t *Tracker) End(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, key)
}

// Active reports whether key is in flight.
func (t *Tracker) Active(key string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active[key]
}

// Keys returns the in-flight keys in sorted order.
func (t *Tracker) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	keys := make([]string, 0, len(t.active))
	for k := range t.active {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Token identifies one request issued by a Sequence.
type Token uint64

// Sequence hands out increasing tokens. Only the most recently issued
// token is current; responses carrying an older token are stale.
type Sequence struct {
	last atomic.Uint64
}

// Next issues a new token, making every earlier token stale.
func (s *Sequence) Next() Token {
	return Token(s.last.Add(1))
}

// Current reports whether tok is the most recently issued token.
func (s *Sequence) Current(tok Token) bool {
	return uint64(tok) == s.last.Load()
}
