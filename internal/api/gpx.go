package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/tkrajina/gpxgo/gpx"

	"route-finder/internal/route"
	"route-finder/internal/state"
)

const gpxCreator = "route-finder"

// exportGPX returns the session's current route as a GPX 1.1 track.
func (s *server) exportGPX(w http.ResponseWriter, r *http.Request) {
	st := s.sessions.Snapshot(uid(r))
	if st.Directions == nil || len(st.Directions.Geometry) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "No route to export."})
		return
	}
	b, err := routeGPX(st, time.Now().UTC()).ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", `attachment; filename="route.gpx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func routeGPX(st state.State, now time.Time) *gpx.GPX {
	seg := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, 0, len(st.Directions.Geometry))}
	for _, c := range st.Directions.Geometry {
		seg.Points = append(seg.Points, gpx.GPXPoint{Point: gpx.Point{Latitude: c.Lat, Longitude: c.Lng}})
	}

	g := &gpx.GPX{
		Creator:     gpxCreator,
		Name:        st.Origin + " to " + st.Destination,
		Description: "Mode " + string(st.Mode) + ", " + strconv.FormatFloat(st.Directions.Summary.TotalDistance, 'f', 0, 64) + " m",
		Time:        &now,
		Tracks: []gpx.GPXTrack{{
			Name:     st.Origin + " to " + st.Destination,
			Type:     string(st.Mode),
			Segments: []gpx.GPXTrackSegment{seg},
		}},
	}
	if st.OriginPoint != nil {
		g.Waypoints = append(g.Waypoints, waypoint(*st.OriginPoint, st.Origin))
	}
	if st.DestinationPoint != nil {
		g.Waypoints = append(g.Waypoints, waypoint(*st.DestinationPoint, st.Destination))
	}
	return g
}

func waypoint(c route.Coordinate, fallback string) gpx.GPXPoint {
	name := c.Formatted
	if name == "" {
		name = fallback
	}
	return gpx.GPXPoint{Point: gpx.Point{Latitude: c.Lat, Longitude: c.Lng}, Name: name}
}
