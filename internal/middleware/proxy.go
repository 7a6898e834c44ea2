package middleware

import (
	"net/http"
	"strings"
)

// TrustProxyHeaders rewrites the request remote address from the
// X-Forwarded-For header. Only wired in when the trust_proxy config
// toggle is on, i.e. a trusted reverse proxy sets the header.
func TrustProxyHeaders() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if forwardedFor := r.Header.Get("X-Forwarded-For"); forwardedFor != "" {
				// first entry is the originating client
				client := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
				if client != "" {
					r.RemoteAddr = client
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
