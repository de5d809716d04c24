package route

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// UnmarshalJSON decodes the GeoJSON geometry a routing response carries
// when requested with geometries=geojson. A missing geometry leaves the
// polyline empty.
func (c *Candidate) UnmarshalJSON(data []byte) error {
	type plain Candidate
	var raw struct {
		plain
		Geometry *geojson.Geometry `json:"geometry"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Candidate(raw.plain)
	if raw.Geometry == nil || raw.Geometry.Coordinates == nil {
		return nil
	}
	ls, ok := raw.Geometry.Coordinates.(orb.LineString)
	if !ok {
		return fmt.Errorf("route geometry: expected LineString, got %s", raw.Geometry.Type)
	}
	c.Geometry = PolylineFromLineString(ls)
	return nil
}
