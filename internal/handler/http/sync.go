package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/service"
	apperrors "github.com/Martin-Sil21/obraseco-sql-legacy/pkg/errors"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/httputil"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/logger"
)

// SyncHandler exposes the manual catalog sync trigger used for
// immediate repricing pushes between scheduled runs.
type SyncHandler struct {
	sync   *service.SyncService
	logger *slog.Logger
}

// NewSyncHandler creates a new sync HTTP handler. sync is nil when the
// mirror store is not configured.
func NewSyncHandler(sync *service.SyncService, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		sync:   sync,
		logger: logger,
	}
}

// TriggerSync handles POST /sync. The pipeline runs in the background;
// the response only acknowledges the trigger. An overlapping trigger is
// absorbed by the pipeline's single-flight guard and logged, not queued.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		httputil.WriteError(w, r, apperrors.NotConfigured("mirror store not configured"), h.logger)
		return
	}

	// Detach from the request context but keep the correlation ID so the
	// run's log lines still tie back to the trigger.
	ctx := logger.WithCorrelationID(context.Background(), logger.CorrelationIDFromContext(r.Context()))

	go func() {
		log := logger.WithContext(ctx, h.logger)
		_, err := h.sync.Sync(ctx)
		switch {
		case errors.Is(err, service.ErrSyncInFlight):
			log.InfoContext(ctx, "manual sync skipped, another run in flight")
		case err != nil:
			log.ErrorContext(ctx, "manual sync failed", slog.String("error", err.Error()))
		}
	}()

	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "sync started"})
}
