package route

import "time"

type Coordinate struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Formatted string  `json:"formatted,omitempty"`
}

// Maneuver mirrors the OSRM step maneuver. BearingAfter is nil when the
// routing API omits it; callers treat that as "forward".
type Maneuver struct {
	Type         string     `json:"type"`
	Modifier     string     `json:"modifier,omitempty"`
	BearingAfter *float64   `json:"bearing_after,omitempty"`
	Location     [2]float64 `json:"location,omitempty"` // lng, lat
}

func (m Maneuver) Kind() Kind { return ParseKind(m.Type) }

// Step is a raw maneuver step as returned by the routing API.
type Step struct {
	Distance float64  `json:"distance"` // meters
	Duration float64  `json:"duration"` // seconds
	Name     string   `json:"name"`
	Mode     string   `json:"mode,omitempty"`
	Maneuver Maneuver `json:"maneuver"`
}

type Leg struct {
	Steps    []Step  `json:"steps"`
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Summary  string  `json:"summary,omitempty"`
}

// Candidate is one route option of a routing response.
type Candidate struct {
	Legs       []Leg    `json:"legs"`
	Distance   float64  `json:"distance"`
	Duration   float64  `json:"duration"`
	WeightName string   `json:"weight_name,omitempty"`
	Geometry   Polyline `json:"-"`
}

type Waypoint struct {
	Name     string     `json:"name"`
	Location [2]float64 `json:"location"` // lng, lat
}

// Response is the raw result of a routing request. Only the first
// candidate is ever used.
type Response struct {
	Code      string      `json:"code"`
	Routes    []Candidate `json:"routes"`
	Waypoints []Waypoint  `json:"waypoints,omitempty"`
}

type DisplayStep struct {
	Step
	Instruction       string `json:"instruction"`
	FormattedDistance string `json:"formattedDistance"`
	FormattedDuration string `json:"formattedDuration"`
}

type Summary struct {
	TotalDistance float64 `json:"totalDistance"`
	TotalDuration float64 `json:"totalDuration"`
}

// Directions is the synthesized, display-ready form of a route.
type Directions struct {
	Steps    []DisplayStep `json:"steps"`
	Summary  Summary       `json:"summary"`
	Geometry Polyline      `json:"geometry"`
}

// Sample is one animation tick: where the marker is and where it faces.
type Sample struct {
	Index    int        `json:"index"`
	Position Coordinate `json:"position"`
	Heading  float64    `json:"heading"`
	At       time.Time  `json:"at"`
}
