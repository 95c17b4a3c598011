package store

import (
	"sync"
	"time"

	"github.com/karupanerura/sweepcache"
)

type shard[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] struct {
	m  map[K]sweepcache.Entry[V]
	mu sync.RWMutex
}

func newShard[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint]() *shard[K, V] {
	return &shard[K, V]{m: map[K]sweepcache.Entry[V]{}}
}

func (s *shard[K, V]) get(cloner sweepcache.ValueCloner[V], key K) (sweepcache.Entry[V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.m[key]
	if !ok {
		return sweepcache.Entry[V]{}, false
	}
	return cloneEntry(cloner, e), true
}

func (s *shard[K, V]) put(key K, e sweepcache.Entry[V]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[key] = e
}

func (s *shard[K, V]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.m)
}

func (s *shard[K, V]) retainUnexpired(now time.Time, ttl time.Duration) (removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.m {
		if e.Expired(now, ttl) {
			delete(s.m, key)
			removed++
		}
	}
	return removed
}

// New creates a new in-memory expiring store.
// The store is split into shards, each guarded by its own lock, to reduce contention between writers.
// A hash of the key selects its shard.
func New[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](opts ...Option[K, V]) sweepcache.ExpiringStore[K, V] {
	options := defaultOptions[K, V]()
	for _, opt := range opts {
		opt.apply(&options)
	}
	options.resolve()

	if options.shards == 1 {
		return &store[K, V]{
			shard:   newShard[K, V](),
			options: options,
		}
	}

	shards := make([]*shard[K, V], options.shards)
	for i := range shards {
		shards[i] = newShard[K, V]()
	}
	return &shardedStore[K, V]{
		shards:  shards,
		options: options,
	}
}

type shardedStore[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] struct {
	shards  []*shard[K, V]
	options options[K, V]
}

var _ sweepcache.ExpiringStore[uint8, struct{}] = (*shardedStore[uint8, struct{}])(nil)

// resolveShard returns the shard that owns the given key.
func (s *shardedStore[K, V]) resolveShard(key K) *shard[K, V] {
	index := s.options.hashKey(key) % len(s.shards)
	if index < 0 {
		index *= -1
	}
	return s.shards[index]
}

func (s *shardedStore[K, V]) Get(key K) (sweepcache.Entry[V], bool) {
	return s.resolveShard(key).get(s.options.cloner, key)
}

func (s *shardedStore[K, V]) Put(key K, value V) {
	s.resolveShard(key).put(key, newEntry(s.options, value))
}

// Size sums the shards one at a time, so it is not a snapshot when writers run concurrently.
func (s *shardedStore[K, V]) Size() int {
	var size int
	for _, shard := range s.shards {
		size += shard.len()
	}
	return size
}

// RetainUnexpired sweeps the shards one at a time; writers to other shards are not blocked.
func (s *shardedStore[K, V]) RetainUnexpired(now time.Time, ttl time.Duration) int {
	var removed int
	for _, shard := range s.shards {
		removed += shard.retainUnexpired(now, ttl)
	}
	return removed
}

type store[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] struct {
	*shard[K, V]
	options options[K, V]
}

var _ sweepcache.ExpiringStore[uint8, struct{}] = (*store[uint8, struct{}])(nil)

func (s *store[K, V]) Get(key K) (sweepcache.Entry[V], bool) {
	return s.shard.get(s.options.cloner, key)
}

func (s *store[K, V]) Put(key K, value V) {
	s.shard.put(key, newEntry(s.options, value))
}

func (s *store[K, V]) Size() int {
	return s.shard.len()
}

func (s *store[K, V]) RetainUnexpired(now time.Time, ttl time.Duration) int {
	return s.shard.retainUnexpired(now, ttl)
}

func newEntry[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](o options[K, V], value V) sweepcache.Entry[V] {
	return sweepcache.Entry[V]{
		Value:      o.cloner.CloneValue(value),
		InsertedAt: o.clock.Now(),
	}
}

func cloneEntry[V sweepcache.ValueConstraint](cloner sweepcache.ValueCloner[V], e sweepcache.Entry[V]) sweepcache.Entry[V] {
	return sweepcache.Entry[V]{
		Value:      cloner.CloneValue(e.Value),
		InsertedAt: e.InsertedAt,
	}
}
