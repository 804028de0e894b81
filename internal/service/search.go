package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/domain"
	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/repository"
	apperrors "github.com/Martin-Sil21/obraseco-sql-legacy/pkg/errors"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/logger"
)

// SearchService implements the multi-term catalog search. Search reads
// the stock database directly, never the mirror store.
type SearchService struct {
	repo    repository.StockRepository
	logger  *slog.Logger
	timeout time.Duration
}

// NewSearchService creates a new search service. timeout bounds each
// search query against the stock database.
func NewSearchService(repo repository.StockRepository, logger *slog.Logger, timeout time.Duration) *SearchService {
	return &SearchService{
		repo:    repo,
		logger:  logger,
		timeout: timeout,
	}
}

// parseQuery splits a raw comma-separated query into trimmed terms.
// Duplicate terms survive. The error messages are part of the API
// contract, trailing period included.
func parseQuery(raw string) (*domain.SearchQuery, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, apperrors.InvalidInput("Query parameter is required.")
	}

	parts := strings.Split(raw, ",")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil, apperrors.InvalidInput("No valid terms provided.")
	}

	return &domain.SearchQuery{Terms: terms}, nil
}

// MultiSearch validates the raw query string and runs the disjunctive
// description search. Validation failures never reach the database.
func (s *SearchService) MultiSearch(ctx context.Context, rawQuery string) (*domain.SearchResult, error) {
	query, err := parseQuery(rawQuery)
	if err != nil {
		return nil, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.repo.SearchDescriptions(queryCtx, query.Terms)
	if err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "search query failed",
			slog.Int("terms", len(query.Terms)),
			slog.String("error", err.Error()),
		)
		return nil, apperrors.Upstream(err)
	}

	if rows == nil {
		rows = []domain.ResultRow{}
	}

	return &domain.SearchResult{
		Total:   len(rows),
		Results: rows,
	}, nil
}
