package mw

import (
	"net"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/socialhub/internal/logger"
)

// EnforceHost lets through only requests whose Host matches an allowed host.
// Patterns may be exact ("api.example.com") or wildcards ("*.example.com").
// The port of the Host header is ignored. An empty list filters nothing.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(allowedHosts) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	patterns := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		patterns = append(patterns, strings.ToLower(h))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := strings.ToLower(r.Host)
			if h, _, err := net.SplitHostPort(host); err == nil {
				host = h
			}
			for _, pattern := range patterns {
				if matchHost(host, pattern) {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Warn("host rejected", logger.String("host", r.Host), logger.String("path", r.URL.Path))
			reject(w, http.StatusForbidden, "forbidden")
		})
	}
}

// matchHost reports whether host equals pattern or, for "*.suffix" patterns,
// is a strict subdomain of suffix.
func matchHost(host, pattern string) bool {
	if host == pattern {
		return true
	}
	if strings.HasPrefix(pattern, "*.") {
		suffix := pattern[1:]
		return len(host) > len(suffix) && strings.HasSuffix(host, suffix)
	}
	return false
}
