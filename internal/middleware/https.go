// internal/middleware/https.go
//
// Optional scheme enforcement.  When enabled, plain-HTTP requests are
// redirected permanently to the HTTPS origin.  Proxy deployments are
// honoured via X-Forwarded-Proto.

package middleware

import "net/http"

// ForceHTTPS redirects http:// requests to https:// when enabled is
// true; otherwise it is a no-op pass-through.
func ForceHTTPS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS == nil && r.Header.Get("X-Forwarded-Proto") != "https" {
				u := *r.URL
				u.Scheme = "https"
				u.Host = r.Host
				http.Redirect(w, r, u.String(), http.StatusMovedPermanently)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
