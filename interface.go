package sweepcache

import (
	"time"
)

// KeyConstraint is an interface for key constraints.
type KeyConstraint interface {
	comparable
}

// ValueConstraint is an interface for value constraints.
type ValueConstraint interface {
	any
}

// Entry is a stored value with the time it was written.
// Entries are immutable once created; writing the same key again replaces the entry as a whole.
type Entry[V ValueConstraint] struct {
	// Value is the stored value.
	Value V

	// InsertedAt is the time the entry was written.
	InsertedAt time.Time
}

// Expired reports whether the entry is older than ttl at now.
// An entry whose age is exactly ttl is not expired.
func (e Entry[V]) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.InsertedAt) > ttl
}

// ExpiringStore is an interface for a concurrent key-value store whose entries are removed by a periodic sweep.
// Implementations must be thread-safe.
type ExpiringStore[K KeyConstraint, V ValueConstraint] interface {
	// Get retrieves the entry currently resident for the key.
	// It does not check expiry: an entry that is logically expired but not yet swept is still returned.
	// It must clone the value before returning it.
	Get(K) (Entry[V], bool)

	// Put stores the value with the current time, overwriting any existing entry for the key.
	// It must clone the value before storing it.
	Put(K, V)

	Sweeper
}

// Sweeper is the part of a store used by the background evictor.
// Implementations must be thread-safe.
type Sweeper interface {
	// Size returns the number of resident entries, including expired entries not yet swept.
	Size() int

	// RetainUnexpired removes every entry that is expired at now for the given ttl.
	// It returns the number of removed entries.
	RetainUnexpired(now time.Time, ttl time.Duration) int
}
