// Package evictor runs the background sweep that removes expired entries from a store.
//
// A sweep happens once when the evictor starts and then every sweep interval,
// min(TTL, sweepcache.MaxSweepInterval), with no backoff, jitter or early wake-up.
// After each sweep the authoritative entry count is published to the size gauge,
// which corrects the drift accumulated by optimistic increments on write.
package evictor

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/karupanerura/sweepcache"
	"github.com/karupanerura/sweepcache/internal/panicutil"
	"github.com/karupanerura/sweepcache/metrics"
)

// Evictor periodically sweeps a store, removing entries older than the TTL.
type Evictor struct {
	sweeper  sweepcache.Sweeper
	ttl      time.Duration
	interval time.Duration
	clock    sweepcache.Clock
	recorder metrics.Recorder
	logger   logrus.FieldLogger
}

// New creates a new Evictor for the given store and configuration.
// The sweep interval is computed here, once, from cfg.
func New(sweeper sweepcache.Sweeper, cfg sweepcache.Config, opts ...Option) (*Evictor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Evictor{
		sweeper:  sweeper,
		ttl:      cfg.TTL,
		interval: cfg.SweepInterval(),
		clock:    sweepcache.SystemClock,
		recorder: metrics.Nop(),
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt.apply(e)
	}
	return e, nil
}

// Interval returns the period between two sweeps.
func (e *Evictor) Interval() time.Duration {
	return e.interval
}

// Sweep runs one eviction cycle and returns the number of removed entries.
func (e *Evictor) Sweep() int {
	now := e.clock.Now()
	removed := e.sweeper.RetainUnexpired(now, e.ttl)
	size := e.sweeper.Size()

	e.recorder.SetSize(size)
	e.recorder.Evicted(removed)
	e.logger.WithFields(logrus.Fields{
		"removed": removed,
		"size":    size,
	}).Debug("sweep finished")
	return removed
}

// Run sweeps immediately, then once per interval, until ctx is done.
// It returns nil when ctx is done. A panic during a sweep means the store is unusable;
// Run stops and returns it as an error for the caller to treat as fatal.
func (e *Evictor) Run(ctx context.Context) error {
	if err := e.guardedSweep(); err != nil {
		return err
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if err := e.guardedSweep(); err != nil {
				return err
			}
		}
	}
}

// LaunchBackgroundEvictor starts Run on its own goroutine.
// The evictor can be stopped by canceling the context passed to LaunchBackgroundEvictor.
// onFatal is called with the error if Run stops because a sweep panicked.
func (e *Evictor) LaunchBackgroundEvictor(ctx context.Context, onFatal func(error)) {
	go func() {
		if err := e.Run(ctx); err != nil {
			onFatal(err)
		}
	}()
}

func (e *Evictor) guardedSweep() error {
	if err := panicutil.Guard(func() error {
		e.Sweep()
		return nil
	}); err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}
	return nil
}
