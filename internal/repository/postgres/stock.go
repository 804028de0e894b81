package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/domain"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/database"
)

// StockRepository implements repository.StockRepository against the
// re-platformed stock database. The legacy schema kept its mixed-case
// identifiers, so every reference is quoted and result column names
// reach the wire exactly as the old API returned them.
type StockRepository struct {
	db database.DBTX
}

// NewStockRepository creates a new stock repository.
func NewStockRepository(db database.DBTX) *StockRepository {
	return &StockRepository{db: db}
}

const listEligibleSQL = `
	SELECT "Codigo", "Descri", "PrecioFinal"
	FROM "ConsStock"
	WHERE "PrecioFinal" > 0
	ORDER BY "Codigo"`

// ListEligible returns every eligible product row for the sync pipeline.
func (r *StockRepository) ListEligible(ctx context.Context) ([]domain.ProductRecord, error) {
	ctx, end := database.TraceQuery(ctx, "ListEligible", listEligibleSQL)
	var err error
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, listEligibleSQL)
	if err != nil {
		return nil, fmt.Errorf("query eligible products: %w", err)
	}
	defer rows.Close()

	var records []domain.ProductRecord
	for rows.Next() {
		var (
			code  string
			descr *string
			price *float64
		)
		if err = rows.Scan(&code, &descr, &price); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}

		rec := domain.ProductRecord{Code: code}
		if descr != nil {
			rec.Description = *descr
		}
		if price != nil {
			rec.FinalPrice = *price
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}

	return records, nil
}

// searchSQL is completed with one positional ILIKE predicate per term.
// The 200-row cap and the price-ascending order are part of the wire
// contract.
const searchSQL = `
	SELECT "Codigo", "Descri", "PrecioFinal"
	FROM "ConsStock"
	WHERE (%s) AND "PrecioFinal" > 0
	ORDER BY "PrecioFinal" ASC
	LIMIT 200`

// SearchDescriptions runs the multi-term description search. Each term
// is bound through a placeholder; values never reach the SQL text.
func (r *StockRepository) SearchDescriptions(ctx context.Context, terms []string) ([]domain.ResultRow, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("search descriptions: no terms")
	}

	predicates := make([]string, len(terms))
	args := make([]any, len(terms))
	for i, term := range terms {
		predicates[i] = fmt.Sprintf(`"Descri" ILIKE $%d`, i+1)
		args[i] = "%" + term + "%"
	}
	query := fmt.Sprintf(searchSQL, strings.Join(predicates, " OR "))

	ctx, end := database.TraceQuery(ctx, "SearchDescriptions", query)
	var err error
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query descriptions: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	results := make([]domain.ResultRow, 0)
	for rows.Next() {
		values, verr := rows.Values()
		if verr != nil {
			err = fmt.Errorf("read result row: %w", verr)
			return nil, err
		}

		row := make(domain.ResultRow, len(fields))
		for i, fd := range fields {
			row[fd.Name] = transportValue(values[i])
		}
		results = append(results, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate result rows: %w", err)
	}

	return results, nil
}

// transportValue converts driver values to JSON-friendly ones. Numeric
// columns arrive as pgtype.Numeric and must cross the wire as plain
// floats, the way the legacy API always serialized prices.
func transportValue(v any) any {
	n, ok := v.(pgtype.Numeric)
	if !ok {
		return v
	}
	if !n.Valid {
		return nil
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	return f.Float64
}
