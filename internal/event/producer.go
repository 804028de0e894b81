package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/domain"
	pkgkafka "github.com/Martin-Sil21/obraseco-sql-legacy/pkg/kafka"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/logger"
)

// Kafka topics for catalog sync domain events.
var (
	TopicSyncCompleted = pkgkafka.Topic("catalog", "sync_completed")
	TopicSyncFailed    = pkgkafka.Topic("catalog", "sync_failed")
)

// Aggregate type constant.
const AggregateTypeCatalogSync = "catalog_sync"

// Source identifier for events originating from this service.
const SourceCatalogService = "catalog-service"

// SyncCompletedData is the payload for a sync_completed event.
type SyncCompletedData struct {
	RunID      string `json:"run_id"`
	Read       int    `json:"read"`
	Inserted   int    `json:"inserted"`
	Batches    int    `json:"batches"`
	DurationMs int64  `json:"duration_ms"`
}

// SyncFailedData is the payload for a sync_failed event.
type SyncFailedData struct {
	RunID  string `json:"run_id"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// Producer publishes catalog sync domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the catalog service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// newSyncCompletedEvent builds the sync_completed envelope. A correlation
// ID on the context travels with the event.
func newSyncCompletedEvent(ctx context.Context, report *domain.SyncReport) (*pkgkafka.Event, error) {
	data := SyncCompletedData{
		RunID:      report.RunID,
		Read:       report.Read,
		Inserted:   report.Inserted,
		Batches:    report.Batches,
		DurationMs: report.Duration.Milliseconds(),
	}

	event, err := pkgkafka.NewEvent(TopicSyncCompleted, report.RunID, AggregateTypeCatalogSync, SourceCatalogService, data)
	if err != nil {
		return nil, err
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}
	return event, nil
}

// newSyncFailedEvent builds the sync_failed envelope.
func newSyncFailedEvent(ctx context.Context, runID, stage string, cause error) (*pkgkafka.Event, error) {
	data := SyncFailedData{
		RunID:  runID,
		Stage:  stage,
		Reason: cause.Error(),
	}

	event, err := pkgkafka.NewEvent(TopicSyncFailed, runID, AggregateTypeCatalogSync, SourceCatalogService, data)
	if err != nil {
		return nil, err
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}
	return event, nil
}

// PublishSyncCompleted publishes a catalog.sync_completed event.
func (p *Producer) PublishSyncCompleted(ctx context.Context, report *domain.SyncReport) error {
	event, err := newSyncCompletedEvent(ctx, report)
	if err != nil {
		return fmt.Errorf("create sync_completed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSyncCompleted, event); err != nil {
		return fmt.Errorf("publish sync_completed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published sync_completed event",
		slog.String("run_id", report.RunID),
		slog.Int("inserted", report.Inserted),
	)

	return nil
}

// PublishSyncFailed publishes a catalog.sync_failed event.
func (p *Producer) PublishSyncFailed(ctx context.Context, runID, stage string, cause error) error {
	event, err := newSyncFailedEvent(ctx, runID, stage, cause)
	if err != nil {
		return fmt.Errorf("create sync_failed event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicSyncFailed, event); err != nil {
		return fmt.Errorf("publish sync_failed event: %w", err)
	}

	p.logger.DebugContext(ctx, "published sync_failed event",
		slog.String("run_id", runID),
		slog.String("stage", stage),
	)

	return nil
}
