package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownIdentity is the bucket shared by every caller whose address cannot
// be determined.
const UnknownIdentity = "unknown"

// ClientIdentity derives the rate-limit identity of a request: the first hop
// of X-Forwarded-For, then X-Real-IP, then the host of the remote address.
func ClientIdentity(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	if r.RemoteAddr != "" {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if host != "" {
			return host
		}
	}

	return UnknownIdentity
}
