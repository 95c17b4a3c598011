package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/karupanerura/sweepcache/metrics"
)

func TestNop(t *testing.T) {
	t.Parallel()

	r := metrics.Nop()
	r.OperationDuration(metrics.OpGet).ObserveDuration()
	r.SetSize(10)
	r.IncSize()
	r.Evicted(3)
	metrics.NopTimer().ObserveDuration()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "text/plain; charset=utf-8" {
		t.Errorf("content type = %q", got)
	}
}
