package router

import (
	"github.com/sirupsen/logrus"

	"github.com/karupanerura/sweepcache/metrics"
)

// Option is the interface for the options of the Router.
type Option interface {
	apply(*Router)
}

type optionFunc func(*Router)

func (f optionFunc) apply(r *Router) {
	f(r)
}

// WithRecorder sets the recorder receiving latency and size observations.
// The recorder also serves the /metrics exposition.
func WithRecorder(recorder metrics.Recorder) Option {
	return optionFunc(func(r *Router) {
		r.recorder = recorder
	})
}

// WithLogger sets the logger.
func WithLogger(logger logrus.FieldLogger) Option {
	return optionFunc(func(r *Router) {
		r.logger = logger
	})
}

// WithMaxBodyBytes caps the size of a write body. Zero or less means unlimited.
func WithMaxBodyBytes(n int64) Option {
	return optionFunc(func(r *Router) {
		r.maxBodyBytes = n
	})
}

// WithRequestIDGenerator sets the function generating request IDs for requests that carry none.
func WithRequestIDGenerator(f func() string) Option {
	return optionFunc(func(r *Router) {
		r.newRequestID = f
	})
}
