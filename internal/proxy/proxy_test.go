package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"googlemaps.github.io/maps"

	"route-finder/internal/history"
	"route-finder/internal/route"
)

type fakeMaps struct {
	got    *maps.DirectionsRequest
	routes []maps.Route
	err    error
}

func (f *fakeMaps) Directions(_ context.Context, r *maps.DirectionsRequest) ([]maps.Route, []maps.GeocodedWaypoint, error) {
	f.got = r
	return f.routes, []maps.GeocodedWaypoint{{PlaceID: "p1"}}, f.err
}

type failingStore struct{ history.Nop }

func (failingStore) Add(context.Context, history.Entry) (history.Entry, error) {
	return history.Entry{}, errors.New("firestore unavailable")
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/directions", strings.NewReader(body)))
	return rec
}

func TestProxyForwardsAndLogs(t *testing.T) {
	fm := &fakeMaps{routes: []maps.Route{{Summary: "Corniche"}}}
	store := history.NewMemory()
	h := NewHandler(fm, store, nil, discard())

	rec := post(h, `{"origin":"Cairo","destination":"Giza","userId":"u1","mode":"cycling"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Cairo", fm.got.Origin)
	assert.Equal(t, "Giza", fm.got.Destination)
	assert.Equal(t, maps.TravelModeBicycling, fm.got.Mode)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "OK", resp.Status)
	require.Len(t, resp.Routes, 1)
	assert.Equal(t, "Corniche", resp.Routes[0].Summary)
	assert.Len(t, resp.GeocodedWaypoints, 1)

	got, err := store.Recent(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Cairo", got[0].Origin)
	assert.Equal(t, "Giza", got[0].Destination)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestProxyAnonymousIsNotLogged(t *testing.T) {
	store := history.NewMemory()
	h := NewHandler(&fakeMaps{}, store, nil, discard())

	rec := post(h, `{"origin":"A","destination":"B"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ZERO_RESULTS"`)
	assert.Contains(t, rec.Body.String(), `"routes":[]`)

	got, _ := store.Recent(context.Background(), "", 10)
	assert.Empty(t, got)
}

func TestProxyUpstreamFailure(t *testing.T) {
	h := NewHandler(&fakeMaps{err: errors.New("REQUEST_DENIED")}, nil, nil, discard())

	rec := post(h, `{"origin":"A","destination":"B","userId":"u"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch directions"}`, rec.Body.String())
}

func TestProxyPersistFailure(t *testing.T) {
	h := NewHandler(&fakeMaps{}, failingStore{}, nil, discard())

	rec := post(h, `{"origin":"A","destination":"B","userId":"u"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch directions"}`, rec.Body.String())
}

func TestProxyBadRequests(t *testing.T) {
	h := NewHandler(&fakeMaps{}, nil, nil, discard())

	assert.Equal(t, http.StatusBadRequest, post(h, `{`).Code)
	assert.Equal(t, http.StatusBadRequest, post(h, `{"origin":"A"}`).Code)
}

func TestProxyDropsUnknownMode(t *testing.T) {
	store := history.NewMemory()
	h := NewHandler(&fakeMaps{}, store, nil, discard())

	require.Equal(t, http.StatusOK, post(h, `{"origin":"A","destination":"B","userId":"u1","mode":"teleport"}`).Code)
	require.Equal(t, http.StatusOK, post(h, `{"origin":"C","destination":"D","userId":"u1","mode":"BUS"}`).Code)

	got, err := store.Recent(context.Background(), "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, route.ModeBus, got[0].Mode)
	assert.Equal(t, route.Mode(""), got[1].Mode)
}

func TestProxyRejectsOversizedBody(t *testing.T) {
	fm := &fakeMaps{}
	h := NewHandler(fm, nil, nil, discard())

	body := `{"origin":"A","destination":"` + strings.Repeat("b", maxBody) + `"}`
	assert.Equal(t, http.StatusBadRequest, post(h, body).Code)
	assert.Nil(t, fm.got, "nothing is forwarded upstream")
}

func TestTravelMode(t *testing.T) {
	assert.Equal(t, maps.TravelModeWalking, travelMode("walking"))
	assert.Equal(t, maps.TravelModeTransit, travelMode("BUS"))
	assert.Equal(t, maps.TravelModeDriving, travelMode("driving"))
	assert.Equal(t, maps.Mode(""), travelMode(""))
}
