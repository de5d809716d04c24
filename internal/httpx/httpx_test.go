package httpx

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckResponseSuccess(t *testing.T) {
	assert.NoError(t, CheckResponse(&http.Response{StatusCode: 200, Body: http.NoBody}))
}

func TestCheckResponseError(t *testing.T) {
	resp := &http.Response{
		StatusCode: 503,
		Body:       io.NopCloser(strings.NewReader(`{"message":"overloaded"}`)),
		Request:    httptest.NewRequest("GET", "https://api.example.com/geocode/v1/json?key=secret&q=x", nil),
	}

	err := CheckResponse(resp)
	require.Error(t, err)

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, 503, he.StatusCode)
	assert.True(t, he.Temporary())
	assert.Contains(t, he.Error(), "overloaded")
	assert.NotContains(t, he.URL, "secret")

	// body is still readable
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "overloaded")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", MaxErrorBody+10)
	got := truncate(long, MaxErrorBody)
	assert.Len(t, got, MaxErrorBody+3)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "short", truncate("short", MaxErrorBody))
}

func TestTemporary(t *testing.T) {
	assert.False(t, (&HTTPError{StatusCode: 404}).Temporary())
	assert.True(t, (&HTTPError{StatusCode: 429}).Temporary())
}
