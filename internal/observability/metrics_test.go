package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	metrics := NewMetrics()

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusTeapot {
		t.Fatalf("status passthrough broken, got %d", res.Code)
	}

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	if !strings.Contains(body, "advotecate_http_requests_total") {
		t.Fatal("request counter missing from scrape")
	}
	if !strings.Contains(body, `code="418"`) {
		t.Fatal("status label missing from scrape")
	}
}

func TestAuthzDecisionCounter(t *testing.T) {
	metrics := NewMetrics()

	metrics.AuthzDecision("donation", "create", true)
	metrics.AuthzDecision("organization", "delete", false)

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	if !strings.Contains(body, `advotecate_authz_decisions_total{action="create",outcome="allowed",resource="donation"} 1`) {
		t.Fatal("allowed decision not counted")
	}
	if !strings.Contains(body, `advotecate_authz_decisions_total{action="delete",outcome="denied",resource="organization"} 1`) {
		t.Fatal("denied decision not counted")
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var metrics *Metrics
	metrics.AuthzDecision("donation", "create", true)

	handler := metrics.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("nil metrics middleware should be a passthrough, got %d", res.Code)
	}
}
