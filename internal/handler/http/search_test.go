package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/domain"
	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/service"
)

// stubStockRepository is a canned-response stock repository for handler
// tests. Term slices passed to SearchDescriptions are recorded so tests
// can assert what reached the data layer.
type stubStockRepository struct {
	records    []domain.ProductRecord
	rows       []domain.ResultRow
	err        error
	gotTerms   [][]string
	listCalled bool
}

func (s *stubStockRepository) ListEligible(ctx context.Context) ([]domain.ProductRecord, error) {
	s.listCalled = true
	return s.records, s.err
}

func (s *stubStockRepository) SearchDescriptions(ctx context.Context, terms []string) ([]domain.ResultRow, error) {
	s.gotTerms = append(s.gotTerms, terms)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSearchHandler(repo *stubStockRepository) *SearchHandler {
	logger := newTestLogger()
	svc := service.NewSearchService(repo, logger, 5*time.Second)
	return NewSearchHandler(svc, logger)
}

func TestSearchMulti_ReturnsTotalAndResults(t *testing.T) {
	repo := &stubStockRepository{
		rows: []domain.ResultRow{
			{"Codigo": "H010", "Descri": "Martillo galponero", "PrecioFinal": 1299.0},
			{"Codigo": "H020", "Descri": "Clavo punta paris", "PrecioFinal": 450.0},
		},
	}
	h := newSearchHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/search-multi?query=martillo,clavo", nil)
	w := httptest.NewRecorder()
	h.SearchMulti(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body struct {
		Total   int              `json:"total"`
		Results []map[string]any `json:"results"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Results, 2)
	assert.Equal(t, "H010", body.Results[0]["Codigo"])
	assert.Equal(t, 1299.0, body.Results[0]["PrecioFinal"])

	require.Len(t, repo.gotTerms, 1)
	assert.Equal(t, []string{"martillo", "clavo"}, repo.gotTerms[0])
}

func TestSearchMulti_EmptyResultsStayAnArray(t *testing.T) {
	repo := &stubStockRepository{rows: []domain.ResultRow{}}
	h := newSearchHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/search-multi?query=inexistente", nil)
	w := httptest.NewRecorder()
	h.SearchMulti(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":0,"results":[]}`, w.Body.String())
}

func TestSearchMulti_MissingQuery(t *testing.T) {
	repo := &stubStockRepository{}
	h := newSearchHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/search-multi", nil)
	w := httptest.NewRecorder()
	h.SearchMulti(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Query parameter is required."}`, w.Body.String())
	assert.Empty(t, repo.gotTerms, "validation failures must not reach the database")
}

func TestSearchMulti_OnlyCommas(t *testing.T) {
	repo := &stubStockRepository{}
	h := newSearchHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/search-multi?query=,+,+,", nil)
	w := httptest.NewRecorder()
	h.SearchMulti(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"No valid terms provided."}`, w.Body.String())
	assert.Empty(t, repo.gotTerms)
}

func TestSearchMulti_UpstreamErrorSurfacesMessage(t *testing.T) {
	repo := &stubStockRepository{err: context.DeadlineExceeded}
	h := newSearchHandler(repo)

	req := httptest.NewRequest(http.MethodGet, "/search-multi?query=taladro", nil)
	w := httptest.NewRecorder()
	h.SearchMulti(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Contains(t, body["error"], "context deadline exceeded")
}
