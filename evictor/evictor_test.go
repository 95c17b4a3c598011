package evictor_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/sourcegraph/conc/panics"

	"github.com/karupanerura/sweepcache"
	"github.com/karupanerura/sweepcache/evictor"
	"github.com/karupanerura/sweepcache/metrics"
	"github.com/karupanerura/sweepcache/store"
)

type mockSweeper struct {
	retain func(now time.Time, ttl time.Duration) int
	size   func() int
}

func (m *mockSweeper) RetainUnexpired(now time.Time, ttl time.Duration) int { return m.retain(now, ttl) }
func (m *mockSweeper) Size() int                                             { return m.size() }

type sizeRecorder struct {
	metrics.Recorder

	mu      sync.Mutex
	sizes   []int
	evicted []int
}

func newSizeRecorder() *sizeRecorder {
	return &sizeRecorder{Recorder: metrics.Nop()}
}

func (r *sizeRecorder) SetSize(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes = append(r.sizes, n)
}

func (r *sizeRecorder) Evicted(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evicted = append(r.evicted, n)
}

func (r *sizeRecorder) snapshot() (sizes, evicted []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.sizes...), append([]int(nil), r.evicted...)
}

func TestNew(t *testing.T) {
	t.Parallel()

	sweeper := store.New[string, string]()

	t.Run("invalid ttl", func(t *testing.T) {
		t.Parallel()

		if _, err := evictor.New(sweeper, sweepcache.Config{}); !errors.Is(err, sweepcache.ErrInvalidTTL) {
			t.Errorf("expected ErrInvalidTTL, got %v", err)
		}
	})

	t.Run("interval", func(t *testing.T) {
		t.Parallel()

		for ttl, want := range map[time.Duration]time.Duration{
			time.Second:      time.Second,
			time.Minute:      10 * time.Second,
			10 * time.Second: 10 * time.Second,
		} {
			e, err := evictor.New(sweeper, sweepcache.Config{TTL: ttl})
			if err != nil {
				t.Fatal(err)
			}
			if got := e.Interval(); got != want {
				t.Errorf("ttl=%v: interval = %v, want %v", ttl, got, want)
			}
		}
	})
}

func TestSweep(t *testing.T) {
	t.Parallel()

	base := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := sweepcache.NewManualClock(base)
	s := store.New(store.WithClock[string, string](clock))
	recorder := newSizeRecorder()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	e, err := evictor.New(s, sweepcache.Config{TTL: time.Minute},
		evictor.WithClock(clock),
		evictor.WithRecorder(recorder),
		evictor.WithLogger(logger),
	)
	if err != nil {
		t.Fatal(err)
	}

	s.Put("old", "v")
	clock.Advance(45 * time.Second)
	s.Put("young", "v")

	if removed := e.Sweep(); removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}

	clock.Advance(30 * time.Second)
	if removed := e.Sweep(); removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if _, ok := s.Get("old"); ok {
		t.Error("old should be removed")
	}
	if _, ok := s.Get("young"); !ok {
		t.Error("young should survive")
	}

	sizes, evicted := recorder.snapshot()
	if df := cmp.Diff([]int{2, 1}, sizes); df != "" {
		t.Errorf("published sizes diff=%s", df)
	}
	if df := cmp.Diff([]int{0, 1}, evicted); df != "" {
		t.Errorf("evicted diff=%s", df)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a log entry")
	}
	if df := cmp.Diff(logrus.Fields{"removed": 1, "size": 1}, entry.Data); df != "" {
		t.Errorf("log fields diff=%s", df)
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	var calls uint32
	sweeper := &mockSweeper{
		retain: func(time.Time, time.Duration) int {
			atomic.AddUint32(&calls, 1)
			return 0
		},
		size: func() int { return 0 },
	}
	e, err := evictor.New(sweeper, sweepcache.Config{TTL: 200 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadUint32(&calls) != 1 {
		t.Errorf("expect to sweep at first time")
	}

	time.Sleep(200 * time.Millisecond)
	if atomic.LoadUint32(&calls) != 2 {
		t.Errorf("expect to sweep at second time")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run should return nil on cancel, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestRun_Panic(t *testing.T) {
	t.Parallel()

	sweeper := &mockSweeper{
		retain: func(time.Time, time.Duration) int { panic("store unusable") },
		size:   func() int { return 0 },
	}
	e, err := evictor.New(sweeper, sweepcache.Config{TTL: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	err = e.Run(t.Context())
	var recovered *panics.ErrRecovered
	if !errors.As(err, &recovered) {
		t.Fatalf("expected *panics.ErrRecovered, got %T: %v", err, err)
	}
	if recovered.Value != "store unusable" {
		t.Errorf("unexpected panic value: %v", recovered.Value)
	}
}

func TestLaunchBackgroundEvictor_Fatal(t *testing.T) {
	t.Parallel()

	sweeper := &mockSweeper{
		retain: func(time.Time, time.Duration) int { panic("boom") },
		size:   func() int { return 0 },
	}
	e, err := evictor.New(sweeper, sweepcache.Config{TTL: time.Second})
	if err != nil {
		t.Fatal(err)
	}

	fatal := make(chan error, 1)
	e.LaunchBackgroundEvictor(t.Context(), func(err error) { fatal <- err })

	select {
	case err := <-fatal:
		if err == nil {
			t.Error("expected an error")
		}
	case <-time.After(time.Second):
		t.Fatal("onFatal was not called")
	}
}

// TestExpiry checks an entry is readable at TTL/2 and gone after TTL + one sweep interval.
func TestExpiry(t *testing.T) {
	t.Parallel()

	ttl := 200 * time.Millisecond
	s := store.New[string, string]()
	e, err := evictor.New(s, sweepcache.Config{TTL: ttl})
	if err != nil {
		t.Fatal(err)
	}

	s.Put("k", "v")
	e.LaunchBackgroundEvictor(t.Context(), func(err error) { t.Errorf("unexpected fatal: %v", err) })

	time.Sleep(ttl / 2)
	if entry, ok := s.Get("k"); !ok || entry.Value != "v" {
		t.Errorf("at ttl/2: got %+v (exists=%v)", entry, ok)
	}

	time.Sleep(ttl/2 + e.Interval() + 100*time.Millisecond)
	if _, ok := s.Get("k"); ok {
		t.Error("after ttl + interval: entry should have been swept")
	}
}
