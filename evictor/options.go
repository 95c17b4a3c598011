package evictor

import (
	"github.com/sirupsen/logrus"

	"github.com/karupanerura/sweepcache"
	"github.com/karupanerura/sweepcache/metrics"
)

// Option is the interface for the options of the Evictor.
type Option interface {
	apply(*Evictor)
}

type optionFunc func(*Evictor)

func (f optionFunc) apply(e *Evictor) {
	f(e)
}

// WithClock sets the clock that decides the sweep time.
func WithClock(clock sweepcache.Clock) Option {
	return optionFunc(func(e *Evictor) {
		e.clock = clock
	})
}

// WithRecorder sets the recorder receiving the size gauge and eviction counts.
func WithRecorder(recorder metrics.Recorder) Option {
	return optionFunc(func(e *Evictor) {
		e.recorder = recorder
	})
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return optionFunc(func(e *Evictor) {
		e.logger = logger
	})
}
