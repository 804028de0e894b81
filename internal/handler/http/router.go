package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/config"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/health"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/middleware"
)

// searchCacheMaxAge is how long clients may reuse a search response,
// in seconds.
const searchCacheMaxAge = 60

// NewRouter creates a chi router with all catalog service routes registered.
func NewRouter(
	cfg *config.Config,
	searchHandler *SearchHandler,
	syncHandler *SyncHandler,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	}))
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics())

	// Health and metrics endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Catalog API endpoints, behind the shared-secret token
	r.Group(func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.APIToken))

		r.With(middleware.CacheControl(searchCacheMaxAge)).
			Get("/search-multi", searchHandler.SearchMulti)
		r.Post("/sync", syncHandler.TriggerSync)
	})

	if cfg.PprofEnabled {
		middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)
	}

	return r
}
