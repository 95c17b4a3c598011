// Package store provides an in-memory implementation of the sweepcache.ExpiringStore interface.
//
// The store can be split into multiple shards, each guarded by its own read-write lock, so that
// writers to different keys rarely contend. It supports configuration options for custom key
// hashing, shard count, clock implementation, and value cloning strategies.
//
// The store never filters expired entries on read. Expired entries stay resident until
// RetainUnexpired removes them, which is the job of the evictor package.
package store
