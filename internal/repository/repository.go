// Package repository defines the data access contracts for the catalog
// service. Implementations live in subpackages.
package repository

import (
	"context"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/domain"
)

// StockRepository reads the legacy stock table. The table is owned by
// the warehouse system; this service never writes to it.
type StockRepository interface {
	// ListEligible returns every product with a strictly positive final
	// price, ordered by code.
	ListEligible(ctx context.Context) ([]domain.ProductRecord, error)

	// SearchDescriptions returns up to 200 rows whose description matches
	// any of the given terms, cheapest first. terms must be non-empty.
	SearchDescriptions(ctx context.Context, terms []string) ([]domain.ResultRow, error)
}
