package handlers

import (
	"fmt"
	"net"
	"net/http"
	"strings"
)

// RateLimiter is the minimal interface required to guard sensitive endpoints.
type RateLimiter interface {
	Allow(key string) bool
}

// checkRateLimit returns errRateLimited once the caller's budget for scope is
// spent. Forwarding headers only pick the key when trustProxy is set.
func checkRateLimit(limiter RateLimiter, r *http.Request, scope string, trustProxy bool) error {
	if limiter == nil {
		return nil
	}
	if !limiter.Allow(rateLimitKey(r, scope, trustProxy)) {
		return errRateLimited
	}
	return nil
}

func rateLimitKey(r *http.Request, scope string, trustProxy bool) string {
	ip := clientIP(r, trustProxy)
	if scope == "" {
		return ip
	}
	return fmt.Sprintf("%s:%s", scope, ip)
}

func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if ip := forwardedIP(r); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

func forwardedIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	return ""
}
