// Package state holds per-conversation state keyed by channel or guild ID.
//
// Each key owns its own mutex: operations on different keys never wait on
// each other, operations on the same key are serialized. Absence of a key is
// meaningful ("never configured") and is never papered over with a default.
package state

import (
	"sort"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

type entry[T any] struct {
	mu   sync.Mutex
	val  T
	dead bool // set by Delete; holders of a stale pointer must reload
}

// Store maps conversation keys to values of T.
type Store[T any] struct {
	entries *xsync.MapOf[string, *entry[T]]
}

// New returns an empty Store.
func New[T any]() *Store[T] {
	return &Store[T]{entries: xsync.NewMapOf[string, *entry[T]]()}
}

// lock returns the live entry for key, locked. When create is false and the
// key is absent it returns nil.
func (s *Store[T]) lock(key string, create bool, init func() T) *entry[T] {
	for {
		var e *entry[T]
		if create {
			e, _ = s.entries.LoadOrCompute(key, func() *entry[T] {
				ne := &entry[T]{}
				if init != nil {
					ne.val = init()
				}
				return ne
			})
		} else {
			var ok bool
			if e, ok = s.entries.Load(key); !ok {
				return nil
			}
		}
		e.mu.Lock()
		if !e.dead {
			return e
		}
		e.mu.Unlock()
	}
}

// Has reports whether key exists.
func (s *Store[T]) Has(key string) bool {
	_, ok := s.entries.Load(key)
	return ok
}

// With runs fn on the value under the key's lock. It reports false, without
// calling fn, when the key is absent.
func (s *Store[T]) With(key string, fn func(v *T)) bool {
	e := s.lock(key, false, nil)
	if e == nil {
		return false
	}
	defer e.mu.Unlock()
	fn(&e.val)
	return true
}

// Update creates the value with init when absent, then runs fn on it under
// the key's lock. It reports whether the value was created by this call.
func (s *Store[T]) Update(key string, init func() T, fn func(v *T)) (created bool) {
	_, existed := s.entries.Load(key)
	e := s.lock(key, true, init)
	defer e.mu.Unlock()
	if fn != nil {
		fn(&e.val)
	}
	return !existed
}

// Get returns a copy of the value. The copy is shallow: pointer fields are
// shared with the store and must only be touched through With.
func (s *Store[T]) Get(key string) (T, bool) {
	var out T
	ok := s.With(key, func(v *T) { out = *v })
	return out, ok
}

// Delete removes key, reporting whether it existed.
func (s *Store[T]) Delete(key string) bool {
	e, ok := s.entries.Load(key)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dead {
		return false
	}
	e.dead = true
	s.entries.Delete(key)
	return true
}

// Len returns the number of keys.
func (s *Store[T]) Len() int {
	return s.entries.Size()
}

// Keys returns all keys in sorted order.
func (s *Store[T]) Keys() []string {
	keys := make([]string, 0, s.entries.Size())
	s.entries.Range(func(k string, _ *entry[T]) bool {
		keys = append(keys, k)
		return true
	})
	sort.Strings(keys)
	return keys
}

// Range calls fn for every live key, holding only that key's lock during the call.
func (s *Store[T]) Range(fn func(key string, v *T)) {
	for _, k := range s.Keys() {
		s.With(k, func(v *T) { fn(k, v) })
	}
}
