package http

import (
	"log/slog"
	"net/http"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/service"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/httputil"
)

// SearchHandler handles HTTP requests for catalog search.
type SearchHandler struct {
	service *service.SearchService
	logger  *slog.Logger
}

// NewSearchHandler creates a new search HTTP handler.
func NewSearchHandler(svc *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{
		service: svc,
		logger:  logger,
	}
}

// SearchMulti handles GET /search-multi. The query parameter carries a
// comma-separated term list; term parsing and validation live in the
// service so the wire contract has a single owner.
func (h *SearchHandler) SearchMulti(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.MultiSearch(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
