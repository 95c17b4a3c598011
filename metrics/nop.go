package metrics

import "net/http"

type nopTimer struct{}

func (nopTimer) ObserveDuration() {}

type nopRecorder struct{}

func (nopRecorder) OperationDuration(Op) Timer { return nopTimer{} }
func (nopRecorder) SetSize(int)                {}
func (nopRecorder) IncSize()                   {}
func (nopRecorder) Evicted(int)                {}

func (nopRecorder) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
	})
}

// Nop returns a Recorder that discards every observation and exposes nothing.
func Nop() Recorder { return nopRecorder{} }

// NopTimer returns a no-op Timer.
func NopTimer() Timer { return nopTimer{} }
