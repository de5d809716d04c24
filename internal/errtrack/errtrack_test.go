package errtrack

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutDSN(t *testing.T) {
	on, err := Init(Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.False(t, on)

	// Capturing without a client must be harmless.
	Capture(errors.New("boom"), map[string]string{"op": "test"})
	Capture(nil, nil)
}

func TestScrubRemovesCredentials(t *testing.T) {
	ev := &sentry.Event{Request: &sentry.Request{Headers: map[string]string{
		"Authorization": "Bearer secret",
		"Cookie":        "sid=1",
		"Accept":        "application/json",
	}}}
	out := scrub(ev, nil)
	assert.NotContains(t, out.Request.Headers, "Authorization")
	assert.NotContains(t, out.Request.Headers, "Cookie")
	assert.Equal(t, "application/json", out.Request.Headers["Accept"])
}
