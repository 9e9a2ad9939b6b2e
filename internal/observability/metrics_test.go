package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func scrape(t *testing.T, reg *prometheus.Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	return rec.Body.String()
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordCacheLookup("hit")
	m.RecordCacheLookup("hit")
	m.RecordCacheLookup("miss")
	m.RecordAnalysis("analyze", 0.01, nil)
	m.RecordAnalysis("analyze", 0.02, errors.New("boom"))
	m.RecordIngest("r1", 5, 1700000000)
	m.RecordPrecompute(12, 1700000000, nil)
	m.RecordHTTP("/health", http.StatusOK, 0.001)

	out := scrape(t, reg)
	for _, want := range []string{
		`test_cache_lookups_total{result="hit"} 2`,
		`test_cache_lookups_total{result="miss"} 1`,
		`test_analysis_requests_total{operation="analyze",status="error"} 1`,
		`test_ingestion_spins_ingested_total{roulette="r1"} 5`,
		`test_scheduler_precompute_rows_total 12`,
		`test_http_requests_total{code="200",route="/health"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	// Registering twice on fresh registries must not panic.
	NewMetrics("test", prometheus.NewRegistry())
	NewMetrics("test", prometheus.NewRegistry())
}
