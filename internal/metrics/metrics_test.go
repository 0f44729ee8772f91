package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSync(t *testing.T) {
	c := NewCollector()

	c.ObserveSync(3, 40, 12*time.Second, nil)
	c.ObserveSync(0, 0, time.Second, errors.New("login failed"))

	if got := testutil.ToFloat64(c.syncRuns.WithLabelValues("success")); got != 1 {
		t.Errorf("success runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.syncRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.rolesScraped); got != 40 {
		t.Errorf("roles scraped = %v, want 40", got)
	}
}

func TestObserveSuggestion(t *testing.T) {
	c := NewCollector()
	c.ObserveSuggestion("success", 2)
	c.ObserveSuggestion("empty_agenda", 0)

	if got := testutil.ToFloat64(c.unfilledRoles); got != 2 {
		t.Errorf("unfilled roles = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.suggestions.WithLabelValues("empty_agenda")); got != 1 {
		t.Errorf("empty_agenda suggestions = %v, want 1", got)
	}
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	// Must not panic
	c.ObserveSync(1, 1, time.Second, nil)
	c.ObserveSuggestion("success", 0)
	c.ObserveHTTP("/health", 200, time.Millisecond)
}

func TestHandler(t *testing.T) {
	c := NewCollector()
	c.ObserveHTTP("/assignments", http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `tm_roles_http_requests_total{code="200",route="/assignments"} 1`) {
		t.Errorf("metrics output missing request counter:\n%s", body)
	}
}
