package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expensetracker/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Output: &buf, Format: "json"})
	m := NewMiddleware(logger, func(*http.Request) string { return "10.0.0.1" })

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if log.FromContext(r.Context()).Component() != log.ComponentHTTP {
			t.Errorf("request logger not installed")
		}
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))

	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("unexpected request id %q", seen)
	}
	if got := rr.Header().Get(HeaderRequestID); got != seen {
		t.Errorf("header request id = %q, want %q", got, seen)
	}
	if !strings.Contains(buf.String(), `"request_id":"`+seen+`"`) {
		t.Errorf("completion log missing request id: %s", buf.String())
	}
	if !strings.Contains(buf.String(), `"status_code":418`) {
		t.Errorf("completion log missing status: %s", buf.String())
	}
	if got := m.GetMetrics().TotalRequests; got != 1 {
		t.Errorf("TotalRequests = %d, want 1", got)
	}
}

func TestMiddlewareKeepsUpstreamRequestID(t *testing.T) {
	m := NewMiddleware(log.Discard(), nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc123")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get(HeaderRequestID); got != "abc123" {
		t.Errorf("request id = %q, want abc123", got)
	}
	if got := m.GetMetrics().FailedRequests; got != 1 {
		t.Errorf("FailedRequests = %d, want 1", got)
	}
}
