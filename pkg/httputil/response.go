package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/Martin-Sil21/obraseco-sql-legacy/pkg/errors"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/logger"
)

// ErrorBody is the flat error shape the legacy API has always used.
// Storefront clients key on the "error" field, so it stays a plain
// string rather than a structured envelope.
type ErrorBody struct {
	Error string `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes the legacy error response for err, mapping it to an
// HTTP status through the errors package. It prefers the request-scoped
// logger from context (set by the RequestLogger middleware) over the
// fallback logger, and logs server-side failures.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	message := apperrors.Message(err)

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, ErrorBody{Error: message})
}
