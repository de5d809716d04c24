// Package errtrack reports unexpected failures to Sentry. With no DSN
// configured every call is a no-op.
package errtrack

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

type Config struct {
	DSN         string
	Environment string
	Release     string
}

// Init configures the global Sentry hub. It reports whether tracking is on.
func Init(cfg Config, logger *slog.Logger) (bool, error) {
	if cfg.DSN == "" {
		logger.Warn("sentry DSN not configured, error tracking disabled")
		return false, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		BeforeSend:  scrub,
	})
	if err != nil {
		return false, fmt.Errorf("sentry init: %w", err)
	}
	logger.Info("sentry initialized", "environment", cfg.Environment)
	return true, nil
}

// scrub drops credentials from captured requests.
func scrub(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil && event.Request.Headers != nil {
		delete(event.Request.Headers, "Authorization")
		delete(event.Request.Headers, "Cookie")
	}
	return event
}

// Capture sends err with tags attached to the event's scope.
func Capture(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
