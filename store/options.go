package store

import (
	"github.com/karupanerura/sweepcache"
	"github.com/karupanerura/sweepcache/internal/keyhash"
)

// DefaultShards is the number of shards of a store built without WithShards.
// Each shard has its own lock, so writers only contend when their keys land in the same shard.
var DefaultShards = 256

// Option configures a store built by New.
type Option[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] interface {
	apply(*options[K, V])
}

type optionFunc[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] func(*options[K, V])

func (f optionFunc[K, V]) apply(o *options[K, V]) {
	f(o)
}

// WithKeyHash replaces the FNV-1a key hash used to pick the shard of a key.
// The result is taken modulo the shard count; negative values are allowed.
// It is not consulted by a single-shard store.
func WithKeyHash[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](f func(K) int) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.hashKey = func(key any) int {
			return f(key.(K))
		}
	})
}

// WithShards sets the number of shards. One shard means a single map behind a single lock.
// It panics unless shards is positive.
func WithShards[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](shards int) Option[K, V] {
	if shards <= 0 {
		panic("store: shards must be positive")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.shards = shards
	})
}

// WithClock sets the clock stamping Entry.InsertedAt on Put.
// Sweeps take their own time, so this clock only decides the age of an entry.
func WithClock[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](clock sweepcache.Clock) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.clock = clock
	})
}

// WithCloner sets the cloner applied to a value on Put and again on Get.
// Without it the store uses sweepcache.DefaultValueCloner, which panics for types it cannot copy.
func WithCloner[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint](cloner sweepcache.ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.cloner = cloner
	})
}

type options[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint] struct {
	hashKey func(any) int
	shards  int
	clock   sweepcache.Clock
	cloner  sweepcache.ValueCloner[V]
}

func defaultOptions[K sweepcache.KeyConstraint, V sweepcache.ValueConstraint]() options[K, V] {
	return options[K, V]{
		shards: DefaultShards,
		clock:  sweepcache.SystemClock,
	}
}

// resolve fills in the defaults that are expensive or may panic, once the user options are known.
func (o *options[K, V]) resolve() {
	if o.hashKey == nil && o.shards > 1 {
		o.hashKey = keyhash.For[K]()
	}
	if o.cloner == nil {
		o.cloner = sweepcache.DefaultValueCloner[V]()
	}
}
