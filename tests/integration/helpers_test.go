// Package integration contains end-to-end tests that exercise a running
// catalog service over HTTP. Start the service and its stock database
// first (scripts/seed populates ConsStock), then run:
//
//	CATALOG_URL=http://localhost:5000 CATALOG_API_TOKEN=<token> go test ./tests/integration/...
//
// CATALOG_API_TOKEN must match the API_TOKEN the service was started
// with. Tests skip (not fail) when the service is unreachable, so the
// suite is safe to run in environments where nothing is up.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

// catalogURL returns the base URL of the catalog service under test.
func catalogURL() string {
	if v := os.Getenv("CATALOG_URL"); v != "" {
		return v
	}
	return "http://localhost:5000"
}

// apiToken returns the shared search token the service was started with.
func apiToken() string {
	if v := os.Getenv("CATALOG_API_TOKEN"); v != "" {
		return v
	}
	return "integration-token"
}

// searchURL builds a /search-multi URL. Empty token or query leaves the
// parameter out entirely, which is how the auth and validation paths
// are exercised.
func searchURL(token, query string) string {
	q := url.Values{}
	if token != "" {
		q.Set("token", token)
	}
	if query != "" {
		q.Set("query", query)
	}
	u := catalogURL() + "/search-multi"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// syncURL builds a /sync URL with the given token; empty leaves it out.
func syncURL(token string) string {
	u := catalogURL() + "/sync"
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u
}

// skipIfNotRunning performs a quick health check against the service.
// If the service is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(catalogURL() + "/health/live")
	if err != nil {
		t.Skipf("catalog service at %s not reachable: %v", catalogURL(), err)
	}
	resp.Body.Close()
}

// httpGet performs an HTTP GET request and returns the status code and decoded JSON body.
func httpGet(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// httpPost performs a bodyless HTTP POST request and returns the status
// code and decoded JSON body.
func httpPost(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(t, resp.Body)
}

// decodeBody reads the response body and attempts to decode it as JSON.
// If the body is empty or not JSON, it returns an empty map.
func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		// Not JSON; return the raw string in a "raw" key for debugging.
		return map[string]interface{}{"raw": string(raw)}
	}
	return result
}

// requireStatus asserts that the HTTP status code matches the expected value.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// requireError asserts the flat error body the service returns on failures.
func requireError(t *testing.T, data map[string]interface{}, want string) {
	t.Helper()
	got, ok := data["error"].(string)
	if !ok {
		t.Fatalf("expected error field in body, got %v", data)
	}
	if got != want {
		t.Fatalf("expected error %q, got %q", want, got)
	}
}
