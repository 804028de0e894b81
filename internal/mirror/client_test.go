package mirror

import (
	"bytes"
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
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/httpclient"
)

func newTestClient(baseURL string) *Client {
	return newTestClientWithLogger(baseURL, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestClientWithLogger(baseURL string, logger *slog.Logger) *Client {
	httpc := httpclient.New(httpclient.Config{
		Timeout:         2 * time.Second,
		MaxRetries:      0,
		RetryWaitMin:    10 * time.Millisecond,
		RetryWaitMax:    20 * time.Millisecond,
		MaxConnsPerHost: 2,
	})
	return NewClient(Config{BaseURL: baseURL, APIKey: "service-key"}, httpc, logger)
}

func TestDeleteAll_SendsWildcardFilter(t *testing.T) {
	var gotMethod, gotPath, gotQuery, gotAPIKey, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.DeleteAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/rest/v1/productos_catalogo", gotPath)
	assert.Equal(t, "codigo=not.is.null", gotQuery)
	assert.Equal(t, "service-key", gotAPIKey)
	assert.Equal(t, "Bearer service-key", gotAuth)
}

func TestDeleteAll_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"row level security"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.DeleteAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "409")
	assert.Contains(t, err.Error(), "row level security")
}

func TestUpsertBatch_SendsMergeDuplicatesHeader(t *testing.T) {
	var gotPrefer, gotContentType string
	var gotBody []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	entries := []domain.CatalogEntry{
		{
			Code:                  "A100",
			Description:           "Válvula esférica",
			NormalizedDescription: "valvula esferica",
			FinalPrice:            1530.5,
			Keywords:              []string{"esferica", "esfericas", "valvula", "valvulas"},
			UpdatedAt:             time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	client := newTestClient(srv.URL)
	err := client.UpsertBatch(context.Background(), entries)

	require.NoError(t, err)
	assert.Equal(t, "resolution=merge-duplicates", gotPrefer)
	assert.Equal(t, "application/json", gotContentType)

	require.Len(t, gotBody, 1)
	assert.Equal(t, "A100", gotBody[0]["codigo"])
	assert.Equal(t, "Válvula esférica", gotBody[0]["descripcion"])
	assert.Equal(t, "valvula esferica", gotBody[0]["descripcion_normalizada"])
	assert.Equal(t, 1530.5, gotBody[0]["precio_final"])
	assert.Contains(t, gotBody[0], "keywords")
	assert.Contains(t, gotBody[0], "updated_at")
}

func TestUpsertBatch_FailedBatchReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid input"}`))
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.UpsertBatch(context.Background(), []domain.CatalogEntry{{Code: "X1"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestDeleteAll_ClientErrorIsFlagged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	client := newTestClientWithLogger(srv.URL, slog.New(slog.NewTextHandler(&logBuf, nil)))
	err := client.DeleteAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, logBuf.String(), "mirror store rejected request")
	assert.Contains(t, logBuf.String(), "status=401")
}

func TestUpsertBatch_ServerErrorIsNotFlagged(t *testing.T) {
	// A 5xx is an outage, not a rejected request.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var logBuf bytes.Buffer
	client := newTestClientWithLogger(srv.URL, slog.New(slog.NewTextHandler(&logBuf, nil)))
	err := client.UpsertBatch(context.Background(), []domain.CatalogEntry{{Code: "X1"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.NotContains(t, logBuf.String(), "rejected request")
}

func TestUpsertBatch_EmptyBatchSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	err := client.UpsertBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.False(t, called, "empty batch must not hit the store")
}

func TestPing(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		assert.NoError(t, client.Ping(context.Background()))
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := newTestClient(srv.URL)
		err := client.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})

	t.Run("unreachable", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:1")
		err := client.Ping(context.Background())
		require.Error(t, err)
	})
}
