package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAuthMiddleware(t *testing.T) {
	apiKey := "secret-key"
	detector := NewSuspiciousActivityDetector()
	middleware := AuthMiddleware(apiKey, nil, detector)

	tests := []struct {
		name           string
		providedKey    string
		path           string
		expectedStatus int
	}{
		{
			name:           "Valid API Key",
			providedKey:    apiKey,
			path:           "/api/test",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid API Key",
			providedKey:    "wrong-key",
			path:           "/api/test",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing API Key",
			providedKey:    "",
			path:           "/api/test",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Public Path - Healthz",
			providedKey:    "",
			path:           "/healthz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Public Path - Metrics",
			providedKey:    "",
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Public Path - Version",
			providedKey:    "",
			path:           "/version",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.providedKey != "" {
				req.Header.Set(HeaderAPIKey, tt.providedKey)
			}
			rec := httptest.NewRecorder()

			handler := middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name           string
		remoteAddr     string
		forwardedFor   string
		trustedProxies []string
		expected       string
	}{
		{
			name:       "Direct connection",
			remoteAddr: "203.0.113.7:5123",
			expected:   "203.0.113.7",
		},
		{
			name:         "Forwarded header ignored from untrusted source",
			remoteAddr:   "203.0.113.7:5123",
			forwardedFor: "10.0.0.9",
			expected:     "203.0.113.7",
		},
		{
			name:           "Forwarded header honored from trusted proxy",
			remoteAddr:     "10.0.0.1:443",
			forwardedFor:   "203.0.113.7",
			trustedProxies: []string{"10.0.0.1"},
			expected:       "203.0.113.7",
		},
		{
			name:           "Rightmost entry wins on chained proxies",
			remoteAddr:     "10.0.0.1:443",
			forwardedFor:   "198.51.100.3, 203.0.113.7",
			trustedProxies: []string{"10.0.0.1"},
			expected:       "203.0.113.7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set(HeaderForwardedFor, tt.forwardedFor)
			}

			if got := extractIP(req, tt.trustedProxies); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}
