package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsMiddleware(t *testing.T) {
	httpRequestsTotal.Reset()
	httpRequestDuration.Reset()

	r := chi.NewRouter()
	r.Use(MetricsMiddleware())
	r.Get("/v1/loan-requests/{loanRequestID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Put("/v1/loan-requests/review/{loanRequestID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	for _, id := range []string{"a", "b"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/loan-requests/"+id, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("expected status code %d, got %d", http.StatusOK, rec.Code)
		}
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/v1/loan-requests/review/a", nil))

	expectedTotal := `
		# HELP loan_origination_http_requests_total Total number of HTTP requests.
		# TYPE loan_origination_http_requests_total counter
		loan_origination_http_requests_total{method="GET",path="/v1/loan-requests/{loanRequestID}",status_code="200"} 2
		loan_origination_http_requests_total{method="PUT",path="/v1/loan-requests/review/{loanRequestID}",status_code="403"} 1
	`
	if err := testutil.CollectAndCompare(httpRequestsTotal, strings.NewReader(expectedTotal)); err != nil {
		t.Errorf("unexpected metrics for http_requests_total: %v", err)
	}
	if n := testutil.CollectAndCount(httpRequestDuration); n != 2 {
		t.Errorf("expected 2 duration series, got %d", n)
	}
}
