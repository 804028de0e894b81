package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/domain"
	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/repository"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/logger"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/textnorm"
)

// ErrSyncInFlight is returned when a sync is requested while another run
// is still active. The pipeline's delete-then-insert sequence is not
// atomic, so overlapping runs are rejected rather than interleaved.
var ErrSyncInFlight = errors.New("catalog sync already in flight")

// MirrorStore is the subset of the mirror client the pipeline needs.
type MirrorStore interface {
	DeleteAll(ctx context.Context) error
	UpsertBatch(ctx context.Context, entries []domain.CatalogEntry) error
}

// EventPublisher publishes sync lifecycle events. A nil publisher
// disables events without touching the pipeline.
type EventPublisher interface {
	PublishSyncCompleted(ctx context.Context, report *domain.SyncReport) error
	PublishSyncFailed(ctx context.Context, runID, stage string, cause error) error
}

// SyncService runs the catalog sync pipeline: extract eligible products
// from the stock database, enrich them for search, and replace the
// mirror store's content in batches.
type SyncService struct {
	repo         repository.StockRepository
	mirror       MirrorStore
	events       EventPublisher
	logger       *slog.Logger
	batchSize    int
	queryTimeout time.Duration

	inFlight atomic.Bool
}

// NewSyncService creates a new catalog sync service. events may be nil.
func NewSyncService(
	repo repository.StockRepository,
	mirror MirrorStore,
	events EventPublisher,
	logger *slog.Logger,
	batchSize int,
	queryTimeout time.Duration,
) *SyncService {
	return &SyncService{
		repo:         repo,
		mirror:       mirror,
		events:       events,
		logger:       logger,
		batchSize:    batchSize,
		queryTimeout: queryTimeout,
	}
}

// Sync runs one full catalog sync and returns its report. Exactly one
// run may be active at a time; concurrent calls get ErrSyncInFlight.
// Batches already upserted stay in place when a later batch fails.
func (s *SyncService) Sync(ctx context.Context) (*domain.SyncReport, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		syncRunsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrSyncInFlight
	}
	defer s.inFlight.Store(false)

	runID := uuid.New().String()
	ctx = logger.WithSyncRunID(ctx, runID)
	log := logger.WithContext(ctx, s.logger)

	start := time.Now()
	log.InfoContext(ctx, "starting catalog sync")

	records, err := s.extract(ctx)
	if err != nil {
		s.fail(ctx, log, runID, "extract", err)
		return nil, fmt.Errorf("extract catalog: %w", err)
	}
	log.InfoContext(ctx, "products read from stock database", slog.Int("count", len(records)))

	entries := s.enrich(records)

	// A failed delete is logged but does not abort: the upsert below
	// overwrites every surviving code, and stale rows only linger until
	// the next complete run.
	if err := s.mirror.DeleteAll(ctx); err != nil {
		log.WarnContext(ctx, "mirror delete failed, continuing with upsert",
			slog.String("error", textnorm.SanitizeASCII(err.Error())),
		)
	}

	inserted, batches, err := s.load(ctx, log, entries)
	if err != nil {
		s.fail(ctx, log, runID, "load", err)
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	report := &domain.SyncReport{
		RunID:    runID,
		Read:     len(records),
		Inserted: inserted,
		Batches:  batches,
		Duration: time.Since(start),
	}

	syncRunsTotal.WithLabelValues("success").Inc()
	syncEntriesInserted.Set(float64(inserted))
	syncDuration.Observe(report.Duration.Seconds())

	log.InfoContext(ctx, "catalog sync completed",
		slog.Int("read", report.Read),
		slog.Int("inserted", report.Inserted),
		slog.Int("batches", report.Batches),
		slog.Duration("duration", report.Duration),
	)

	if s.events != nil {
		if err := s.events.PublishSyncCompleted(ctx, report); err != nil {
			log.WarnContext(ctx, "failed to publish sync_completed event",
				slog.String("error", textnorm.SanitizeASCII(err.Error())),
			)
		}
	}

	return report, nil
}

// extract reads all eligible products under the configured query timeout.
func (s *SyncService) extract(ctx context.Context) ([]domain.ProductRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return s.repo.ListEligible(queryCtx)
}

// enrich builds the denormalized catalog entries for one run. All
// entries of a run share one timestamp so a half-finished run is
// recognizable in the mirror.
func (s *SyncService) enrich(records []domain.ProductRecord) []domain.CatalogEntry {
	now := time.Now().UTC()
	entries := make([]domain.CatalogEntry, len(records))
	for i, rec := range records {
		entries[i] = domain.CatalogEntry{
			Code:                  rec.Code,
			Description:           rec.Description,
			NormalizedDescription: textnorm.Normalize(rec.Description),
			FinalPrice:            rec.FinalPrice,
			Keywords:              textnorm.ExtractKeywords(rec.Description),
			UpdatedAt:             now,
		}
	}
	return entries
}

// load upserts entries in fixed-size batches. The first failing batch
// aborts the run; earlier batches stand.
func (s *SyncService) load(ctx context.Context, log *slog.Logger, entries []domain.CatalogEntry) (inserted, batches int, err error) {
	for i := 0; i < len(entries); i += s.batchSize {
		end := i + s.batchSize
		if end > len(entries) {
			end = len(entries)
		}
		batch := entries[i:end]
		batchNum := i/s.batchSize + 1

		if err := s.mirror.UpsertBatch(ctx, batch); err != nil {
			return inserted, batches, fmt.Errorf("batch %d: %w", batchNum, err)
		}

		inserted += len(batch)
		batches++
		syncBatchesTotal.Inc()
		log.InfoContext(ctx, "batch inserted",
			slog.Int("batch", batchNum),
			slog.Int("size", len(batch)),
		)
	}
	return inserted, batches, nil
}

// fail records a failed run in metrics and logs, and publishes the
// failure event. Error text is folded to ASCII before logging; the
// legacy log shipper mangles accented driver messages.
func (s *SyncService) fail(ctx context.Context, log *slog.Logger, runID, stage string, cause error) {
	syncRunsTotal.WithLabelValues("failure").Inc()

	log.ErrorContext(ctx, "catalog sync failed",
		slog.String("stage", stage),
		slog.String("error", textnorm.SanitizeASCII(cause.Error())),
	)

	if s.events != nil {
		if err := s.events.PublishSyncFailed(ctx, runID, stage, cause); err != nil {
			log.WarnContext(ctx, "failed to publish sync_failed event",
				slog.String("error", textnorm.SanitizeASCII(err.Error())),
			)
		}
	}
}
