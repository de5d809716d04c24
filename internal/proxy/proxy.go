// Package proxy forwards directions requests to the Google Maps
// Directions API and logs who asked for what.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"googlemaps.github.io/maps"

	"route-finder/internal/history"
	"route-finder/internal/metrics"
	"route-finder/internal/route"
)

// Directions is the part of *maps.Client the proxy calls.
type Directions interface {
	Directions(ctx context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error)
}

// Request is the proxy's JSON body. Mode is optional and defaults to
// driving on the upstream side.
type Request struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	UserID      string `json:"userId,omitempty"`
	Mode        string `json:"mode,omitempty"`
}

// Response mirrors the upstream JSON answer.
type Response struct {
	Routes            []maps.Route            `json:"routes"`
	GeocodedWaypoints []maps.GeocodedWaypoint `json:"geocoded_waypoints"`
	Status            string                  `json:"status"`
}

const failureMessage = "Failed to fetch directions"

const maxBody = 1 << 16

var errBadRequest = errors.New("origin and destination are required")

type Handler struct {
	maps    Directions
	history history.Store
	metrics *metrics.Collector
	log     *slog.Logger
}

func NewHandler(d Directions, store history.Store, m *metrics.Collector, logger *slog.Logger) *Handler {
	if store == nil {
		store = history.Nop{}
	}
	return &Handler{maps: d, history: store, metrics: m, log: logger.With("component", "proxy")}
}

// NewMapsClient builds the upstream client.
func NewMapsClient(apiKey string, hc *http.Client) (*maps.Client, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if hc != nil {
		opts = append(opts, maps.WithHTTPClient(hc))
	}
	return maps.NewClient(opts...)
}

// Fetch calls the upstream API and, when a user is named, records the
// search. A failed write fails the whole request.
func (h *Handler) Fetch(ctx context.Context, req Request) (*Response, error) {
	req.Origin = strings.TrimSpace(req.Origin)
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Origin == "" || req.Destination == "" {
		return nil, errBadRequest
	}

	dr := &maps.DirectionsRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Mode:        travelMode(req.Mode),
	}
	routes, waypoints, err := h.maps.Directions(ctx, dr)
	if err != nil {
		h.upstreamError("directions")
		return nil, err
	}

	if req.UserID != "" {
		// Unknown modes are logged without one.
		mode, _ := route.ParseMode(req.Mode)
		_, err := h.history.Add(ctx, history.Entry{
			UserID:      req.UserID,
			Origin:      req.Origin,
			Destination: req.Destination,
			Mode:        mode,
		})
		if err != nil {
			h.upstreamError("history")
			return nil, err
		}
	}

	status := "OK"
	if len(routes) == 0 {
		status = "ZERO_RESULTS"
	}
	if routes == nil {
		routes = []maps.Route{}
	}
	if waypoints == nil {
		waypoints = []maps.GeocodedWaypoint{}
	}
	return &Response{Routes: routes, GeocodedWaypoints: waypoints, Status: status}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(&req); err != nil {
		h.fail(w, http.StatusBadRequest, "invalid json")
		return
	}

	resp, err := h.Fetch(r.Context(), req)
	switch {
	case errors.Is(err, errBadRequest):
		h.fail(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("error fetching directions", "origin", req.Origin, "destination", req.Destination, "error", err)
		h.fail(w, http.StatusInternalServerError, failureMessage)
		return
	}

	h.count("ok")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Handler) fail(w http.ResponseWriter, status int, msg string) {
	h.count("error")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handler) count(outcome string) {
	if h.metrics != nil {
		h.metrics.ProxyRequests.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) upstreamError(collaborator string) {
	if h.metrics != nil {
		h.metrics.UpstreamError(collaborator)
	}
}

func travelMode(mode string) maps.Mode {
	switch route.Mode(strings.ToLower(strings.TrimSpace(mode))) {
	case route.ModeWalking:
		return maps.TravelModeWalking
	case route.ModeCycling:
		return maps.TravelModeBicycling
	case route.ModeBus:
		return maps.TravelModeTransit
	case route.ModeDriving:
		return maps.TravelModeDriving
	default:
		return ""
	}
}
