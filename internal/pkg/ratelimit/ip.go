package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIdentity is the sentinel used when no client address resolves.
// Requests without a resolvable address share one quota instead of
// bypassing the limiter.
const UnknownIdentity = "unknown"

// ClientIP extracts the rate-limit identity from a request. Trusted proxy
// headers win over the direct connection address.
func ClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies/load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP if multiple
		if i := strings.IndexByte(xff, ','); i >= 0 {
			xff = xff[:i]
		}
		if ip := strings.TrimSpace(xff); ip != "" {
			return ip
		}
	}

	// Check X-Real-IP header
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return UnknownIdentity
}
