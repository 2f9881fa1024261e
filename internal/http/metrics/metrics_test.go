package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesCounters(t *testing.T) {
	collector := NewCollector()
	collector.IncRequests()
	collector.IncRequests()
	collector.IncErrors()
	collector.IncRedirects()

	rec := httptest.NewRecorder()
	NewHandler(collector).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"hireflow_console_requests_total 2",
		"hireflow_console_errors_total 1",
		"hireflow_console_guard_redirects_total 1",
		"hireflow_console_rate_limited_total 0",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in\n%s", want, body)
		}
	}
}

func TestHandlerWithoutCollector(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(nil).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "hireflow_console_requests_total 0") {
		t.Fatalf("expected zero counters")
	}
}
