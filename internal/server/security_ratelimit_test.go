package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecurityLoggingMiddleware_RateLimiting(t *testing.T) {
	detector := NewSuspiciousActivityDetector()
	middleware := SecurityLoggingMiddleware(nil, detector)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	ip := "192.168.1.100"
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = ip + ":1234"

	// Limit is 1000 per 5 minute window
	for i := 0; i < 1000; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d failed with status %d", i, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429 Too Many Requests, got %d", rec.Code)
	}

	detector.mu.Lock()
	count := detector.requestCountByIP[ip]
	detector.mu.Unlock()

	if count != 1001 {
		t.Errorf("expected count 1001, got %d", count)
	}
}

func TestSecurityLoggingMiddleware_IsolatesIPs(t *testing.T) {
	detector := NewSuspiciousActivityDetector()
	middleware := SecurityLoggingMiddleware(nil, detector)

	handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	blocked := httptest.NewRequest("GET", "/test", nil)
	blocked.RemoteAddr = "192.168.1.100:1234"
	for i := 0; i < 1001; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), blocked)
	}

	other := httptest.NewRequest("GET", "/test", nil)
	other.RemoteAddr = "192.168.1.101:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)

	if rec.Code != http.StatusOK {
		t.Errorf("expected other IP to pass, got status %d", rec.Code)
	}
}
