package index

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// shardCount is a power of two so the hash maps onto shards with a mask.
const shardCount = 32

// ShardedMap is a concurrent map sharded by key hash. Reads take a shard
// read-lock; Compute holds the shard write-lock for the duration of the
// callback, which makes per-key merge-or-insert atomic without a global
// lock.
type ShardedMap[K ~string, V any] struct {
	shards [shardCount]mapShard[K, V]
}

type mapShard[K ~string, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// NewShardedMap creates an empty sharded map.
func NewShardedMap[K ~string, V any]() *ShardedMap[K, V] {
	sm := &ShardedMap[K, V]{}
	for i := range sm.shards {
		sm.shards[i].m = make(map[K]V)
	}
	return sm
}

func (sm *ShardedMap[K, V]) shard(key K) *mapShard[K, V] {
	return &sm.shards[xxhash.Sum64String(string(key))&(shardCount-1)]
}

// Get returns the value for key.
func (sm *ShardedMap[K, V]) Get(key K) (V, bool) {
	s := sm.shard(key)
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

// Compute atomically replaces the value for key with fn's result. fn
// receives the current value (or the zero value when absent) and reports
// whether to keep the returned value; returning keep=false removes the
// key. fn runs under the shard lock and must not call back into the map.
func (sm *ShardedMap[K, V]) Compute(key K, fn func(old V, exists bool) (V, bool)) {
	s := sm.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	old, exists := s.m[key]
	updated, keep := fn(old, exists)
	if keep {
		s.m[key] = updated
	} else if exists {
		delete(s.m, key)
	}
}

// Delete removes key.
func (sm *ShardedMap[K, V]) Delete(key K) {
	s := sm.shard(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}

// Len returns the total number of keys.
func (sm *ShardedMap[K, V]) Len() int {
	n := 0
	for i := range sm.shards {
		s := &sm.shards[i]
		s.mu.RLock()
		n += len(s.m)
		s.mu.RUnlock()
	}
	return n
}

// Keys returns a snapshot of all keys.
func (sm *ShardedMap[K, V]) Keys() []K {
	var keys []K
	for i := range sm.shards {
		s := &sm.shards[i]
		s.mu.RLock()
		for k := range s.m {
			keys = append(keys, k)
		}
		s.mu.RUnlock()
	}
	return keys
}

// Range calls fn for every entry until fn returns false. Entries observed
// are a per-shard snapshot; concurrent writers are not blocked.
func (sm *ShardedMap[K, V]) Range(fn func(key K, value V) bool) {
	for i := range sm.shards {
		s := &sm.shards[i]
		s.mu.RLock()
		snapshot := make(map[K]V, len(s.m))
		for k, v := range s.m {
			snapshot[k] = v
		}
		s.mu.RUnlock()
		for k, v := range snapshot {
			if !fn(k, v) {
				return
			}
		}
	}
}
