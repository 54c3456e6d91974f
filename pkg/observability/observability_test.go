package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCounter(t *testing.T) {
	r := NewMetricsRegistry()
	c := r.GetCounter("test_total", "test counter")
	c.Inc()
	c.Inc()

	if got := c.Value(); got != 2 {
		t.Errorf("counter value = %d, want 2", got)
	}

	// Same name returns the same counter.
	if r.GetCounter("test_total", "test counter") != c {
		t.Error("GetCounter did not return the existing counter")
	}
}

func TestHistogramBuckets(t *testing.T) {
	r := NewMetricsRegistry()
	h := r.GetHistogram("latency_seconds", "latency", []float64{0.1, 1})

	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(10)

	if got := h.Count(); got != 3 {
		t.Errorf("histogram count = %d, want 3", got)
	}
	if h.counts[0] != 1 || h.counts[1] != 1 || h.counts[2] != 1 {
		t.Errorf("bucket counts = %v, want one observation per bucket", h.counts)
	}
}

func TestMetricsHandlerExposition(t *testing.T) {
	m := NewServerMetrics()
	m.ToolCalls.Inc()
	m.ToolCalls.Inc()
	m.ToolLatency.Observe(0.02)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	MetricsHandler(m.Registry)(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "fileclaw_tool_calls_total 2") {
		t.Errorf("exposition missing counter value:\n%s", body)
	}
	if !strings.Contains(body, "# TYPE fileclaw_tool_calls_total counter") {
		t.Error("exposition missing TYPE line")
	}
	if !strings.Contains(body, "fileclaw_tool_latency_seconds_count 1") {
		t.Errorf("exposition missing histogram count:\n%s", body)
	}
	if !strings.Contains(body, `fileclaw_tool_latency_seconds_bucket{le="+Inf"} 1`) {
		t.Error("exposition missing +Inf bucket")
	}
}
