package httpclient

import (
	"fmt"
	"io"
	"net/http"
)

// ResponseError describes a non-2xx response from an upstream HTTP
// service, keeping the status and a bounded snippet of the body for
// logs. PostgREST-style stores return small JSON error blobs that are
// worth surfacing verbatim.
type ResponseError struct {
	Service string
	Status  int
	Body    string
}

func (e *ResponseError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.Status, e.Body)
}

// ParseResponseError reads the body of a non-2xx HTTP response and
// wraps it in a ResponseError. The caller should only invoke this when
// resp.StatusCode indicates an error. The response body is fully
// consumed and closed.
func ParseResponseError(resp *http.Response, serviceName string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return &ResponseError{Service: serviceName, Status: resp.StatusCode}
	}

	return &ResponseError{
		Service: serviceName,
		Status:  resp.StatusCode,
		Body:    string(bodyBytes),
	}
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
