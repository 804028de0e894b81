package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl returns a middleware that sets a Cache-Control header on GET
// responses. Catalog data only moves when a sync run lands, so clients may
// reuse search results for a short window. The directive is private because
// requests carry the shared secret on the query string and the responses
// must not be stored by shared caches.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				w.Header().Set("Cache-Control", fmt.Sprintf("private, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}
