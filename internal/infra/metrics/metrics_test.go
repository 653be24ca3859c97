package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest(http.MethodGet, "GET /bom", 200, 15*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "GET /bom", 200, 5*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "GET /bom", 400, time.Millisecond)
	m.ObserveBOM(true, 3)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", "GET /bom", "200")); got != 2 {
		t.Errorf("requests{200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.bomExpansions.WithLabelValues("expanded")); got != 1 {
		t.Errorf("bom expansions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.bomExpansions.WithLabelValues("direct")); got != 0 {
		t.Errorf("direct expansions = %v, want 0", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("GET", "/", 200, time.Second)
	m.ObserveBOM(false, 1)
}
