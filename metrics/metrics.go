// Package metrics provides the recording interface the router and the evictor report to,
// so the cache core is not coupled to a specific instrumentation backend.
package metrics

import "net/http"

// Op is the kind of operation a latency observation belongs to.
type Op string

const (
	OpGet   Op = "get"
	OpPost  Op = "post"
	OpOther Op = "other"
)

// Timer measures the duration of an operation. Call ObserveDuration when
// the operation completes to record the elapsed time.
type Timer interface {
	// ObserveDuration records the elapsed time since the timer was created.
	ObserveDuration()
}

// Recorder observes cache latency and size.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// OperationDuration starts a latency timer for op.
	OperationDuration(op Op) Timer

	// SetSize publishes the authoritative entry count, as measured by a sweep.
	SetSize(n int)

	// IncSize bumps the entry count by one after a write.
	// Overwrites are counted too, so the gauge drifts upward until the next SetSize.
	IncSize()

	// Evicted records one finished sweep that removed n entries.
	Evicted(n int)

	// Handler serves the exposition of the recorded metrics.
	Handler() http.Handler
}
