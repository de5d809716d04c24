// Package api serves the route-finder HTTP interface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"route-finder/internal/auth"
	"route-finder/internal/errtrack"
	"route-finder/internal/history"
	"route-finder/internal/route"
	"route-finder/internal/state"
)

// Sessions is the session service behind the /api/session routes.
type Sessions interface {
	Snapshot(id string) state.State
	Subscribe(id string) (<-chan state.State, func())
	SetOrigin(id, text string) state.State
	SetOriginFromCoords(ctx context.Context, id string, lat, lng float64) state.State
	SetDestination(id, text string) state.State
	SetTransportMode(id string, mode route.Mode) state.State
	FindRoute(ctx context.Context, id, lang string) (state.State, error)
	ClearRoute(id string) state.State
	History(ctx context.Context, id string) []history.Entry
	SignOut(id string)
}

type Config struct {
	Sessions Sessions
	// Proxy serves POST /api/directions. Nil leaves the route out.
	Proxy    http.Handler
	Verifier auth.Verifier
	// CORSOrigin is the browser origin allowed to call the API.
	CORSOrigin string
	// DefaultLanguage applies when a request names none.
	DefaultLanguage string
	// Heartbeat is the keep-alive interval of event streams.
	Heartbeat time.Duration
	Logger    *slog.Logger
}

type server struct {
	sessions  Sessions
	verifier  auth.Verifier
	lang      string
	heartbeat time.Duration
	log       *slog.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 25 * time.Second
	}
	s := &server{
		sessions:  cfg.Sessions,
		verifier:  cfg.Verifier,
		lang:      cfg.DefaultLanguage,
		heartbeat: cfg.Heartbeat,
		log:       logger.With("component", "api"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	r.Use(middleware.SetHeader("Cross-Origin-Opener-Policy", "same-origin"))
	r.Use(middleware.SetHeader("Cross-Origin-Embedder-Policy", "require-corp"))
	if cfg.CORSOrigin != "" {
		r.Use(crossOrigin(cfg.CORSOrigin))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Proxy != nil {
		r.Method(http.MethodPost, "/api/directions", cfg.Proxy)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(cfg.Verifier))

		r.Route("/api/session", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Get("/events", s.streamSession)
			r.Put("/origin", s.putOrigin)
			r.Put("/destination", s.putDestination)
			r.Put("/mode", s.putMode)
			r.Post("/route", s.postRoute)
			r.Delete("/route", s.deleteRoute)
			r.Get("/route.gpx", s.exportGPX)
		})
		r.Get("/api/history", s.getHistory)
		r.Post("/api/signout", s.signOut)
	})

	return r
}

// statusFor maps pipeline errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, route.ErrMissingEndpoints):
		return http.StatusBadRequest
	case errors.Is(err, route.ErrAuthFailure):
		return http.StatusUnauthorized
	case errors.Is(err, route.ErrLocationNotFound):
		return http.StatusNotFound
	case errors.Is(err, route.ErrNoRouteFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, route.ErrNetworkFailure), errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"error": msg}. Errors outside the known taxonomy are
// reported to Sentry.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		errtrack.Capture(err, map[string]string{"route": chi.RouteContext(r.Context()).RoutePattern()})
		s.log.Error("request failed", "path", r.URL.Path, "error", err)
	}
	if msg == "" {
		msg = route.UserMessage(err)
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
}
