package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/texsolve/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Namespace:       "test",
		DurationBuckets: []float64{0.001, 0.01, 0.1},
		SizeBuckets:     []float64{10, 100, 1000},
	}
}

func TestNewCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	c := NewCollector(testConfig(), registry)

	if c.Registry() != registry {
		t.Error("Registry() did not return the provided registry")
	}
	if !c.Enabled() {
		t.Error("collector should be enabled by default")
	}

	if NewCollector(nil, nil).Registry() == nil {
		t.Error("nil registry was not replaced")
	}
}

func TestCollector_RecordConversion(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordConversion("ok", "", 2*time.Millisecond, 12)
	c.RecordConversion("ok", "", time.Millisecond, 40)
	c.RecordConversion("error", "syntax", time.Millisecond, 5)

	if got := testutil.ToFloat64(c.conversion.conversionsTotal.WithLabelValues("ok", "")); got != 2 {
		t.Errorf("conversions_total{ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.conversion.conversionsTotal.WithLabelValues("error", "syntax")); got != 1 {
		t.Errorf("conversions_total{error,syntax} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(c.conversion.conversionDuration); got != 1 {
		t.Errorf("conversion_duration_seconds series = %d, want 1", got)
	}
}

func TestCollector_StagesAndPasses(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	for _, stage := range []string{"clean", "parse", "translate"} {
		c.RecordStage(stage, time.Microsecond)
	}
	c.RecordCleanerPasses(3)

	if got := testutil.CollectAndCount(c.conversion.stageDuration); got != 3 {
		t.Errorf("stage_duration_seconds series = %d, want 3", got)
	}

	expected := `
# HELP test_cleaner_passes Number of cleaning passes until the text stopped changing
# TYPE test_cleaner_passes histogram
test_cleaner_passes_bucket{le="1"} 0
test_cleaner_passes_bucket{le="2"} 0
test_cleaner_passes_bucket{le="3"} 1
test_cleaner_passes_bucket{le="4"} 1
test_cleaner_passes_bucket{le="6"} 1
test_cleaner_passes_bucket{le="8"} 1
test_cleaner_passes_bucket{le="16"} 1
test_cleaner_passes_bucket{le="32"} 1
test_cleaner_passes_bucket{le="64"} 1
test_cleaner_passes_bucket{le="+Inf"} 1
test_cleaner_passes_sum 3
test_cleaner_passes_count 1
`
	if err := testutil.CollectAndCompare(c.conversion.cleanerPasses, strings.NewReader(expected)); err != nil {
		t.Errorf("cleaner_passes mismatch: %v", err)
	}
}

func TestCollector_HistoryAndHTTP(t *testing.T) {
	c := NewCollector(testConfig(), nil)

	c.RecordHistoryWrite("ok")
	c.RecordHistoryWrite("dropped")
	c.SetHistoryQueueDepth(7)
	c.RecordHTTPRequest("/v1/convert", 200, time.Millisecond)
	c.RecordHTTPRequest("/v1/convert", 422, time.Millisecond)

	if got := testutil.ToFloat64(c.history.writesTotal.WithLabelValues("dropped")); got != 1 {
		t.Errorf("history_writes_total{dropped} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.history.queueDepth); got != 7 {
		t.Errorf("history_queue_depth = %v, want 7", got)
	}
	if got := testutil.ToFloat64(c.http.requestsTotal.WithLabelValues("/v1/convert", "422")); got != 1 {
		t.Errorf("http_requests_total{422} = %v, want 1", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	c := Discard()
	c.RecordConversion("ok", "", time.Millisecond, 1)
	c.RecordHistoryWrite("ok")

	if c.Enabled() {
		t.Error("Discard() collector is enabled")
	}
	if got := testutil.ToFloat64(c.conversion.conversionsTotal.WithLabelValues("ok", "")); got != 0 {
		t.Errorf("disabled collector recorded %v conversions", got)
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector(testConfig(), nil)
	c.RecordConversion("ok", "", time.Millisecond, 3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != 200 {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(string(body), `test_conversions_total{error_type="",status="ok"} 1`) {
		t.Errorf("metrics output missing conversions_total:\n%s", body)
	}
}
