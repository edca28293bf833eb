// README: In-process plan cache used in tests and single-node deployments.
package plancache

import (
	"context"
	"strings"
	"sync"
	"time"

	"wayfare/internal/plangen"
)

// MemoryStore keeps entries in a map guarded by a mutex. Expiry is lazy:
// an entry past its TTL is dropped when a lookup touches it or when
// EvictExpired sweeps the scope.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]Entry
	ttl      time.Duration
	capacity int
	now      func() time.Time
}

type MemoryOptions struct {
	TTL      time.Duration
	Capacity int
	// Now overrides the clock. Tests use this to step time directly.
	Now func() time.Time
}

func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	capacity := opts.Capacity
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries:  make(map[string]Entry),
		ttl:      ttl,
		capacity: capacity,
		now:      now,
	}
}

func (s *MemoryStore) Lookup(_ context.Context, scope string, prefs plangen.Preferences) (*plangen.Result, bool) {
	key := Key(scope, prefs)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	if s.expired(e) {
		delete(s.entries, key)
		return nil, false
	}
	// Entries are read-only once stored; callers get a copy so writes to
	// a returned plan (enrichment, say) never reach the cached one or
	// race with another hit.
	return cloneResult(e.Result), true
}

func (s *MemoryStore) Save(_ context.Context, scope string, prefs plangen.Preferences, res *plangen.Result) {
	key := Key(scope, prefs)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[key]; !exists {
		s.evictForCapacity(scope)
	}
	s.entries[key] = Entry{
		Key:         key,
		Preferences: prefs,
		Result:      cloneResult(res),
		StoredAt:    s.now(),
	}
}

func (s *MemoryStore) EvictExpired(_ context.Context, scope string) (int, error) {
	prefix := ScopePrefix(scope)
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) && s.expired(e) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped, nil
}

func (s *MemoryStore) Clear(_ context.Context, scope string) error {
	prefix := ScopePrefix(scope)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

// Len reports the number of entries in a scope, including expired ones
// not yet evicted.
func (s *MemoryStore) Len(scope string) int {
	prefix := ScopePrefix(scope)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) expired(e Entry) bool {
	return s.now().Sub(e.StoredAt) >= s.ttl
}

func cloneResult(res *plangen.Result) *plangen.Result {
	if res == nil {
		return nil
	}
	clone := *res
	if m, ok := cloneValue(res.Plan).(map[string]any); ok {
		clone.Plan = m
	}
	return &clone
}

// cloneValue deep-copies the JSON-shaped values a decoded plan is made
// of: objects, arrays, and scalars.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}
		return s
	default:
		return v
	}
}

// evictForCapacity makes room for one new entry in the scope, dropping
// expired entries first and then the oldest survivor. Caller holds the lock.
func (s *MemoryStore) evictForCapacity(scope string) {
	prefix := ScopePrefix(scope)
	count := 0
	oldestKey := ""
	var oldestAt time.Time
	for key, e := range s.entries {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		if s.expired(e) {
			delete(s.entries, key)
			continue
		}
		count++
		if oldestKey == "" || e.StoredAt.Before(oldestAt) {
			oldestKey, oldestAt = key, e.StoredAt
		}
	}
	if count >= s.capacity && oldestKey != "" {
		delete(s.entries, oldestKey)
	}
}
