// storetest package provides generic test cases for expiring store implementations.
package storetest

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/karupanerura/sweepcache"
)

// StoreProvider creates a store stamping entries with the given clock, and a function releasing it.
type StoreProvider func(sweepcache.Clock) (sweepcache.ExpiringStore[string, string], func())

// BenchmarkPut benchmarks the Put method of the store.
func BenchmarkPut(b *testing.B, store sweepcache.ExpiringStore[string, string], keys []string) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Put(keys[i%len(keys)], "value")
	}
}

// BenchmarkGet benchmarks the Get method of the store against pre-populated keys.
func BenchmarkGet(b *testing.B, store sweepcache.ExpiringStore[string, string], keys []string) {
	for _, key := range keys {
		store.Put(key, "value")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Get(keys[i%len(keys)])
	}
}

// TestConsistency tests that concurrent writers and readers observe each other's writes.
func TestConsistency(t *testing.T, provider StoreProvider) {
	t.Run("Consistency", func(t *testing.T) {
		t.Parallel()

		t.Run("PutAndGet", func(t *testing.T) {
			t.Parallel()

			store, release := provider(sweepcache.SystemClock)
			defer release()

			patterns := []struct{ key, value string }{
				{"k1", "foo"},
				{"k2", "bar"},
				{"k3", "baz"},
				{"a/b", "nested"},
				{"日本語", "ユニコード"},
				{"empty-value", ""},
			}
			rand.Shuffle(len(patterns), func(i, j int) {
				patterns[i], patterns[j] = patterns[j], patterns[i]
			})

			var eg errgroup.Group
			for _, pattern := range patterns {
				eg.Go(func() error {
					if _, ok := store.Get(pattern.key); ok {
						return fmt.Errorf("unexpected exists value for key %q", pattern.key)
					}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			for _, pattern := range patterns {
				eg.Go(func() error {
					store.Put(pattern.key, pattern.value)
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			values := make([]string, len(patterns))
			for i, pattern := range patterns {
				eg.Go(func() error {
					entry, ok := store.Get(pattern.key)
					if !ok {
						return fmt.Errorf("missing value for key %q", pattern.key)
					}
					values[i] = entry.Value
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			for i, pattern := range patterns {
				if df := cmp.Diff(pattern.value, values[i]); df != "" {
					t.Errorf("pattern[%d] key=%q value diff=%s", i, pattern.key, df)
				}
			}
			if got := store.Size(); got != len(patterns) {
				t.Errorf("size = %d, want %d", got, len(patterns))
			}
		})

		t.Run("Overwrite", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := sweepcache.NewManualClock(base)
			store, release := provider(clock)
			defer release()

			store.Put("k", "first")
			clock.Advance(time.Second)
			store.Put("k", "second")

			entry, ok := store.Get("k")
			if !ok {
				t.Fatal("should exist")
			}
			if df := cmp.Diff(sweepcache.Entry[string]{Value: "second", InsertedAt: base.Add(time.Second)}, entry); df != "" {
				t.Errorf("entry diff=%s", df)
			}
			if got := store.Size(); got != 1 {
				t.Errorf("size = %d, want 1", got)
			}
		})

		t.Run("DistinctWriters", func(t *testing.T) {
			t.Parallel()

			store, release := provider(sweepcache.SystemClock)
			defer release()

			const n = 1000
			var eg errgroup.Group
			for i := range n {
				eg.Go(func() error {
					store.Put("key-"+strconv.Itoa(i), "value-"+strconv.Itoa(i))
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			for i := range n {
				entry, ok := store.Get("key-" + strconv.Itoa(i))
				if !ok {
					t.Errorf("key-%d lost", i)
					continue
				}
				if want := "value-" + strconv.Itoa(i); entry.Value != want {
					t.Errorf("key-%d = %q, want %q", i, entry.Value, want)
				}
			}
			if got := store.Size(); got != n {
				t.Errorf("size = %d, want %d", got, n)
			}
		})

		t.Run("SameKeyWriters", func(t *testing.T) {
			t.Parallel()

			store, release := provider(sweepcache.SystemClock)
			defer release()

			const n = 100
			var eg errgroup.Group
			for i := range n {
				eg.Go(func() error {
					store.Put("contended", strconv.Itoa(i))
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			entry, ok := store.Get("contended")
			if !ok {
				t.Fatal("should exist")
			}
			if v, err := strconv.Atoi(entry.Value); err != nil || v < 0 || v >= n {
				t.Errorf("unexpected last write %q", entry.Value)
			}
			if got := store.Size(); got != 1 {
				t.Errorf("size = %d, want 1", got)
			}
		})
	})
}

// TestExpiration tests that expiry is only enforced by RetainUnexpired.
func TestExpiration(t *testing.T, provider StoreProvider) {
	t.Run("Expiration", func(t *testing.T) {
		t.Parallel()

		t.Run("StaleReadUntilSweep", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := sweepcache.NewManualClock(base)
			store, release := provider(clock)
			defer release()

			ttl := time.Hour
			store.Put("k", "v")

			// Past the ttl but not swept yet.
			clock.Set(base.Add(ttl + time.Second))
			if _, ok := store.Get("k"); !ok {
				t.Error("should still be resident before the sweep")
			}
			if got := store.Size(); got != 1 {
				t.Errorf("size = %d, want 1", got)
			}

			if removed := store.RetainUnexpired(clock.Now(), ttl); removed != 1 {
				t.Errorf("removed = %d, want 1", removed)
			}
			if _, ok := store.Get("k"); ok {
				t.Error("should not exist after the sweep")
			}
			if got := store.Size(); got != 0 {
				t.Errorf("size = %d, want 0", got)
			}
		})

		t.Run("Boundary", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := sweepcache.NewManualClock(base)
			store, release := provider(clock)
			defer release()

			ttl := time.Hour
			store.Put("k", "v")

			// Just before expiration
			if removed := store.RetainUnexpired(base.Add(ttl-time.Second), ttl); removed != 0 {
				t.Errorf("removed = %d, want 0", removed)
			}
			// At expiration
			if removed := store.RetainUnexpired(base.Add(ttl), ttl); removed != 0 {
				t.Errorf("entry aged exactly ttl should be kept, removed = %d", removed)
			}
			if _, ok := store.Get("k"); !ok {
				t.Error("should exist")
			}
			// After expiration
			if removed := store.RetainUnexpired(base.Add(ttl+time.Nanosecond), ttl); removed != 1 {
				t.Errorf("removed = %d, want 1", removed)
			}
		})

		t.Run("RetainsFreshEntries", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := sweepcache.NewManualClock(base)
			store, release := provider(clock)
			defer release()

			ttl := time.Minute
			for i := range 10 {
				store.Put("old-"+strconv.Itoa(i), "v")
			}
			clock.Advance(ttl / 2)
			for i := range 5 {
				store.Put("new-"+strconv.Itoa(i), "v")
			}

			sweepAt := base.Add(ttl + time.Second)
			if removed := store.RetainUnexpired(sweepAt, ttl); removed != 10 {
				t.Errorf("removed = %d, want 10", removed)
			}
			if got := store.Size(); got != 5 {
				t.Errorf("size = %d, want 5", got)
			}
			for i := range 5 {
				if _, ok := store.Get("new-" + strconv.Itoa(i)); !ok {
					t.Errorf("new-%d should survive the sweep", i)
				}
			}
		})

		t.Run("OverwriteRefreshesAge", func(t *testing.T) {
			t.Parallel()

			base := time.Now()
			clock := sweepcache.NewManualClock(base)
			store, release := provider(clock)
			defer release()

			ttl := time.Minute
			store.Put("k", "v1")
			clock.Advance(ttl - time.Second)
			store.Put("k", "v2")

			if removed := store.RetainUnexpired(base.Add(ttl+time.Second), ttl); removed != 0 {
				t.Errorf("overwritten entry should be young again, removed = %d", removed)
			}
			entry, ok := store.Get("k")
			if !ok || entry.Value != "v2" {
				t.Errorf("unexpected entry %+v (exists=%v)", entry, ok)
			}
		})

		t.Run("SweepConcurrentWithWriters", func(t *testing.T) {
			t.Parallel()

			store, release := provider(sweepcache.SystemClock)
			defer release()

			const n = 500
			var eg errgroup.Group
			for i := range n {
				eg.Go(func() error {
					store.Put("key-"+strconv.Itoa(i), "v")
					return nil
				})
				eg.Go(func() error {
					store.RetainUnexpired(time.Now(), time.Hour)
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}
			if got := store.Size(); got != n {
				t.Errorf("size = %d, want %d", got, n)
			}
		})
	})
}
