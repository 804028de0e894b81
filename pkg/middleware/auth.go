package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	apperrors "github.com/Martin-Sil21/obraseco-sql-legacy/pkg/errors"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/httputil"
)

// TokenAuth returns middleware that requires the token query parameter to
// match the configured shared secret. The storefront has always appended
// ?token= to its calls, so the check stays on the query string rather
// than moving to a header. Comparison is constant time.
//
// Rejected requests get 403 with the flat error body legacy clients match on.
func TokenAuth(token string) func(http.Handler) http.Handler {
	expected := []byte(token)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.URL.Query().Get("token"))
			if subtle.ConstantTimeCompare(got, expected) != 1 {
				httputil.WriteError(w, r, apperrors.Unauthorized(), slog.Default())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
