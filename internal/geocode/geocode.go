// Package geocode resolves free-text places to coordinates through the
// OpenCage geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"route-finder/internal/httpx"
	"route-finder/internal/route"
)

var coordPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d*)?)\s*,\s*(-?\d+(?:\.\d*)?)\s*$`)

type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
}

func New(hc *http.Client, baseURL, apiKey string) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{http: hc, baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey}
}

type response struct {
	Results []struct {
		Formatted string `json:"formatted"`
		Geometry  struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"geometry"`
	} `json:"results"`
	Status struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

// ParseCoordinates recognizes a "lat,lng" string such as the one produced
// by a device location lookup.
func ParseCoordinates(s string) (route.Coordinate, bool) {
	m := coordPattern.FindStringSubmatch(s)
	if m == nil {
		return route.Coordinate{}, false
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lng, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return route.Coordinate{}, false
	}
	return route.Coordinate{Lat: lat, Lng: lng}, true
}

// Geocode resolves text to the best matching place. Text that already is a
// coordinate pair is reverse geocoded so it gains an address.
func (c *Client) Geocode(ctx context.Context, text string) (route.Coordinate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return route.Coordinate{}, fmt.Errorf("geocode: empty query: %w", route.ErrLocationNotFound)
	}
	if coord, ok := ParseCoordinates(text); ok {
		return c.Reverse(ctx, coord.Lat, coord.Lng)
	}
	res, err := c.query(ctx, text)
	if err != nil {
		return route.Coordinate{}, err
	}
	if len(res.Results) == 0 {
		return route.Coordinate{}, fmt.Errorf("geocode %q: %w", text, route.ErrLocationNotFound)
	}
	best := res.Results[0]
	return route.Coordinate{Lat: best.Geometry.Lat, Lng: best.Geometry.Lng, Formatted: best.Formatted}, nil
}

// Reverse finds the address at a point. The returned coordinate keeps the
// requested position rather than the matched place's.
func (c *Client) Reverse(ctx context.Context, lat, lng float64) (route.Coordinate, error) {
	q := strconv.FormatFloat(lat, 'f', -1, 64) + "+" + strconv.FormatFloat(lng, 'f', -1, 64)
	res, err := c.query(ctx, q)
	if err != nil {
		return route.Coordinate{}, err
	}
	if len(res.Results) == 0 {
		return route.Coordinate{}, fmt.Errorf("reverse geocode %v,%v: %w", lat, lng, route.ErrLocationNotFound)
	}
	return route.Coordinate{Lat: lat, Lng: lng, Formatted: res.Results[0].Formatted}, nil
}

func (c *Client) query(ctx context.Context, q string) (*response, error) {
	v := url.Values{}
	v.Set("q", q)
	v.Set("key", c.apiKey)
	v.Set("limit", "1")
	v.Set("no_annotations", "1")
	if lang := languageFrom(ctx); lang != "" {
		v.Set("language", lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/geocode/v1/json?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w: %w", route.ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if err := httpx.CheckResponse(resp); err != nil {
		var he *httpx.HTTPError
		if errors.As(err, &he) && he.Temporary() {
			return nil, fmt.Errorf("geocode: %w: %w", route.ErrNetworkFailure, err)
		}
		return nil, fmt.Errorf("geocode: %w", err)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return &out, nil
}

type langKey struct{}

// WithLanguage asks the geocoder for place names in lang.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

func languageFrom(ctx context.Context) string {
	s, _ := ctx.Value(langKey{}).(string)
	return s
}
