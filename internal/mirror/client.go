// Package mirror implements the REST client for the denormalized catalog
// store. The store speaks the PostgREST dialect: row filters travel in the
// query string and upsert behavior is selected with a Prefer header.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Martin-Sil21/obraseco-sql-legacy/internal/domain"
	"github.com/Martin-Sil21/obraseco-sql-legacy/pkg/httpclient"
)

// catalogTable is the mirror table holding the denormalized catalog.
const catalogTable = "productos_catalogo"

// deleteAllFilter matches every row. The store rejects an unfiltered
// DELETE, so the wildcard predicate "codigo is not null" stands in for
// "all rows"; codigo is the primary key and can never be null.
const deleteAllFilter = "codigo=not.is.null"

// Doer executes an HTTP request. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds mirror store connection settings.
type Config struct {
	// BaseURL is the store root, e.g. "https://xyz.supabase.co".
	// The REST prefix /rest/v1 is appended by the client.
	BaseURL string

	// APIKey doubles as the apikey header and the bearer token, which is
	// how the store authenticates service-role callers.
	APIKey string
}

// Client reads and replaces rows in the mirror catalog table.
type Client struct {
	http    Doer
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// NewClient creates a mirror store client.
func NewClient(cfg Config, doer Doer, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: cfg.BaseURL + "/rest/v1",
		apiKey:  cfg.APIKey,
		logger:  logger,
	}
}

// setHeaders applies the store's authentication headers to a request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
}

// respError converts a non-2xx store response into an error. A 4xx is
// logged as well: the store rejected the key or payload, and every
// retry will hit the same status until configuration changes.
func (c *Client) respError(ctx context.Context, resp *http.Response) error {
	err := httpclient.ParseResponseError(resp, "mirror store")
	if httpclient.IsClientError(resp.StatusCode) {
		c.logger.WarnContext(ctx, "mirror store rejected request",
			slog.Int("status", resp.StatusCode),
		)
	}
	return err
}

// DeleteAll removes every row from the catalog table. Callers decide
// whether a failure aborts their operation.
func (c *Client) DeleteAll(ctx context.Context) error {
	url := fmt.Sprintf("%s/%s?%s", c.baseURL, catalogTable, deleteAllFilter)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("delete catalog rows: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.respError(ctx, resp)
	}
	_ = resp.Body.Close()

	return nil
}

// UpsertBatch inserts one batch of catalog entries. The merge-duplicates
// preference makes rows sharing a code overwrite instead of conflict.
func (c *Client) UpsertBatch(ctx context.Context, entries []domain.CatalogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	body, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal catalog batch: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, catalogTable)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create upsert request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Prefer", "resolution=merge-duplicates")

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("upsert catalog batch: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		_ = resp.Body.Close()
		return nil
	default:
		return c.respError(ctx, resp)
	}
}

// Ping checks that the store's REST root answers. Used by the readiness
// handler, where the mirror is a non-critical dependency.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("ping mirror store: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("mirror store not ready: status %d", resp.StatusCode)
	}
	return nil
}
