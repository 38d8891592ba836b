package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type recordingLimiter struct {
	mu   sync.Mutex
	keys []string
}

func (l *recordingLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	return true
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remoteAddr", nil, false, "10.0.0.7"},
		{"forwardedIgnored", map[string]string{"X-Forwarded-For": "203.0.113.9"}, false, "10.0.0.7"},
		{"realIPIgnored", map[string]string{"X-Real-IP": "203.0.113.9"}, false, "10.0.0.7"},
		{"forwardedTrusted", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, true, "203.0.113.9"},
		{"realIPTrusted", map[string]string{"X-Real-IP": "198.51.100.4"}, true, "198.51.100.4"},
		{"trustedWithoutHeaders", nil, true, "10.0.0.7"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", nil)
			req.RemoteAddr = "10.0.0.7:52100"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := clientIP(req, tc.trustProxy); got != tc.want {
				t.Fatalf("expected %q got %q", tc.want, got)
			}
		})
	}
}

func TestAuthRateLimitKeys(t *testing.T) {
	cases := []struct {
		name       string
		trustProxy bool
		sameKey    bool
	}{
		{"headersUntrusted", false, true},
		{"headersTrusted", true, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			limiter := &recordingLimiter{}
			api := newTestAPI(t, func(d *Dependencies) {
				d.AuthLimiter = limiter
				d.TrustProxyHeaders = tc.trustProxy
			})

			for _, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
				req := httptest.NewRequest(http.MethodPost, "/api/v1/user/login", strings.NewReader(`{}`))
				req.Header.Set("X-Forwarded-For", forwarded)
				api.handler.ServeHTTP(httptest.NewRecorder(), req)
			}

			if len(limiter.keys) != 2 {
				t.Fatalf("expected two limiter checks got %v", limiter.keys)
			}
			if same := limiter.keys[0] == limiter.keys[1]; same != tc.sameKey {
				t.Fatalf("expected shared key %v got keys %v", tc.sameKey, limiter.keys)
			}
		})
	}
}
