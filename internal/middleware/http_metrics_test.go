package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", "/"},
		{"/battles", "/battles"},
		{"/health", "/health"},
		{"/ready", "/ready"},
		{"/metrics", "/metrics"},
		{"/battles/abc-123", "/battles/{id}"},
		{"/battles/550e8400-e29b-41d4-a716-446655440000", "/battles/{id}"},
		{"/battles/abc-123/vote", "/battles/{id}/vote"},
		{"/battles/abc-123/visitor", "/battles/{id}/visitor"},
		{"/battles/abc-123/results", "/battles/{id}/results"},
		{"/unknown/route", "/unknown/route"},
	}

	for _, tt := range tests {
		if got := normalizePath(tt.path); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestHTTPMetrics_RecordsRequest(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	handler := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/battles/abc-123", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}

	found := false
	for _, family := range families {
		if family.GetName() != MetricHTTPRequestsTotal {
			continue
		}
		for _, metric := range family.GetMetric() {
			labels := map[string]string{}
			for _, l := range metric.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["method"] == "GET" && labels["path"] == "/battles/{id}" && labels["status"] == "200" {
				found = true
				if metric.GetCounter().GetValue() != 1 {
					t.Errorf("expected counter 1, got %v", metric.GetCounter().GetValue())
				}
			}
		}
	}
	if !found {
		t.Error("expected a normalized http_requests_total sample for GET /battles/{id} 200")
	}
}

func TestHTTPMetrics_ExcludesHealthEndpoints(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	handler := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}
	for _, family := range families {
		if family.GetName() == MetricHTTPRequestsTotal && len(family.GetMetric()) > 0 {
			t.Error("health endpoints should not be recorded in http metrics")
		}
	}
}

func TestHTTPMetrics_CapturesErrorStatus(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	if err := m.Register(reg); err != nil {
		t.Fatalf("Register() returned error: %v", err)
	}

	handler := HTTPMetrics(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/battles/missing", strings.NewReader("body"))
	req.Header.Set("Content-Length", "4")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() returned error: %v", err)
	}

	found := false
	for _, family := range families {
		if family.GetName() != MetricHTTPRequestsTotal {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == "404" {
					found = true
				}
			}
		}
	}
	if !found {
		t.Error("expected a 404 status label in http_requests_total")
	}
}
