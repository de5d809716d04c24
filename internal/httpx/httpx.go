// Package httpx holds the error type for failed upstream HTTP calls.
package httpx

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

// MaxErrorBody caps how much of an upstream error body is kept.
const MaxErrorBody = 500

// HTTPError is a non-2xx answer from an upstream API.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	URL        string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s (status %d): %s", e.URL, e.Status, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s (status %d)", e.URL, e.Status, e.StatusCode)
}

// Temporary reports whether retrying the call could succeed.
func (e *HTTPError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// CheckResponse returns nil for statuses below 400. Otherwise it reads the
// body into an *HTTPError and leaves a re-readable copy on resp.
func CheckResponse(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(b))

	body := ""
	if err == nil {
		body = truncate(string(b), MaxErrorBody)
	}
	u := ""
	if resp.Request != nil && resp.Request.URL != nil {
		u = redactedURL(resp.Request)
	}
	return &HTTPError{
		StatusCode: resp.StatusCode,
		Status:     http.StatusText(resp.StatusCode),
		Body:       body,
		URL:        u,
	}
}

// redactedURL drops the query, which carries API keys for some upstreams.
func redactedURL(r *http.Request) string {
	u := *r.URL
	u.RawQuery = ""
	return u.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
