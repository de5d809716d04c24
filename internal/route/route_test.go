package route

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "walking", want: ModeWalking},
		{in: " Cycling ", want: ModeCycling},
		{in: "DRIVING", want: ModeDriving},
		{in: "bus", want: ModeBus},
		{in: "teleport", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestModeProfile(t *testing.T) {
	assert.Equal(t, "driving", ModeBus.Profile())
	assert.Equal(t, "walking", ModeWalking.Profile())
	assert.Equal(t, "cycling", ModeCycling.Profile())
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindNewName, ParseKind("new name"))
	assert.Equal(t, KindNewName, ParseKind("new-name"))
	assert.Equal(t, KindTurn, ParseKind("turn"))
	assert.Equal(t, KindBusStop, ParseKind("bus_stop"))
	assert.Equal(t, KindUnrecognized, ParseKind("merge"))
	assert.Equal(t, KindUnrecognized, ParseKind(""))
}

func TestFingerprint(t *testing.T) {
	a := Polyline{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}
	b := Polyline{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}
	c := Polyline{{Lat: 3, Lng: 4}, {Lat: 1, Lng: 2}}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
}

func TestPolylineLength(t *testing.T) {
	// One degree of latitude is roughly 111km.
	p := Polyline{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 0}}
	assert.InDelta(t, 111_195, p.Length(), 500)
	assert.Zero(t, Polyline{{Lat: 5, Lng: 5}}.Length())
}

func TestCandidateGeometryDecoding(t *testing.T) {
	body := `{
		"code": "Ok",
		"routes": [{
			"distance": 1200.5,
			"duration": 300,
			"geometry": {"type": "LineString", "coordinates": [[31.23, 30.04], [31.24, 30.05]]},
			"legs": [{"steps": [{"distance": 10, "duration": 2, "name": "Main St",
				"maneuver": {"type": "depart", "bearing_after": 90}}]}]
		}]
	}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Routes, 1)

	cand := resp.Routes[0]
	assert.Equal(t, 1200.5, cand.Distance)
	require.Len(t, cand.Geometry, 2)
	assert.Equal(t, Coordinate{Lat: 30.04, Lng: 31.23}, cand.Geometry[0])

	step := cand.Legs[0].Steps[0]
	require.NotNil(t, step.Maneuver.BearingAfter)
	assert.Equal(t, 90.0, *step.Maneuver.BearingAfter)
	assert.Equal(t, KindDepart, step.Maneuver.Kind())
}

func TestCandidateWithoutGeometry(t *testing.T) {
	var cand Candidate
	require.NoError(t, json.Unmarshal([]byte(`{"distance": 5, "legs": []}`), &cand))
	assert.Empty(t, cand.Geometry)
	assert.Equal(t, 5.0, cand.Distance)
}

func TestCandidateRejectsNonLineGeometry(t *testing.T) {
	var cand Candidate
	err := json.Unmarshal([]byte(`{"geometry": {"type": "Point", "coordinates": [1, 2]}}`), &cand)
	assert.Error(t, err)
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "No route found between these locations.", UserMessage(fmt.Errorf("osrm: %w", ErrNoRouteFound)))
	assert.Equal(t, "Please enter both origin and destination.", UserMessage(ErrMissingEndpoints))
	assert.Contains(t, UserMessage(fmt.Errorf("wrap: %w", ErrLocationNotFound)), "Could not find")
	assert.Contains(t, UserMessage(ErrNetworkFailure), "Network error")
	assert.Equal(t, "Failed to get directions. Please try again.", UserMessage(fmt.Errorf("boom")))
}

func TestLineStringIsLngLat(t *testing.T) {
	p := Polyline{{Lat: 30.04, Lng: 31.23}, {Lat: 30.05, Lng: 31.24}}
	ls := p.LineString()
	assert.Equal(t, 31.23, ls[0].Lon())
	assert.Equal(t, 30.04, ls[0].Lat())
	assert.Equal(t, p, PolylineFromLineString(ls))
}
