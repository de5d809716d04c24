// Package routing fetches routes from an OSRM server and adapts their
// durations to the requested transport mode.
package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"route-finder/internal/httpx"
	"route-finder/internal/route"
)

type Client struct {
	http    *http.Client
	baseURL string
}

func New(hc *http.Client, baseURL string) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

// URL builds the OSRM route request for the mode's profile. OSRM takes
// coordinates as lng,lat.
func (c *Client) URL(origin, dest route.Coordinate, mode route.Mode) string {
	return fmt.Sprintf("%s/route/v1/%s/%s;%s?overview=full&steps=true&annotations=true&geometries=geojson",
		c.baseURL, mode.Profile(), lngLat(origin), lngLat(dest))
}

func lngLat(c route.Coordinate) string {
	return strconv.FormatFloat(c.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// Route fetches a route and applies the mode adjustment. An answer without
// candidates is route.ErrNoRouteFound.
func (c *Client) Route(ctx context.Context, origin, dest route.Coordinate, mode route.Mode) (*route.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(origin, dest, mode), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("route request: %w: %w", route.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	var out route.Response
	if err := httpx.CheckResponse(resp); err != nil {
		var he *httpx.HTTPError
		if errors.As(err, &he) && he.Temporary() {
			return nil, fmt.Errorf("route: %w: %w", route.ErrNetworkFailure, err)
		}
		// OSRM answers unroutable requests with 400 and a code.
		if json.NewDecoder(resp.Body).Decode(&out) == nil && noRoute(out.Code) {
			return nil, fmt.Errorf("route %s: %w", out.Code, route.ErrNoRouteFound)
		}
		return nil, fmt.Errorf("route: %w", err)
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}
	if len(out.Routes) == 0 {
		return nil, fmt.Errorf("route %s: %w", out.Code, route.ErrNoRouteFound)
	}
	Adjust(&out, mode)
	return &out, nil
}

func noRoute(code string) bool {
	switch code {
	case "NoRoute", "NoSegment":
		return true
	}
	return false
}
