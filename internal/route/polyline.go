package route

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Polyline is the dense route geometry used for map and marker rendering.
type Polyline []Coordinate

// PolylineFromLineString converts GeoJSON order (lng, lat) into coordinates.
func PolylineFromLineString(ls orb.LineString) Polyline {
	if len(ls) == 0 {
		return nil
	}
	out := make(Polyline, len(ls))
	for i, p := range ls {
		out[i] = Coordinate{Lat: p.Lat(), Lng: p.Lon()}
	}
	return out
}

func (p Polyline) LineString() orb.LineString {
	ls := make(orb.LineString, len(p))
	for i, c := range p {
		ls[i] = orb.Point{c.Lng, c.Lat}
	}
	return ls
}

// Fingerprint identifies the polyline by content. Two fetches that return
// the same geometry share a fingerprint.
func (p Polyline) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	for _, c := range p {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c.Lat))
		_, _ = d.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(c.Lng))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}

// Length is the haversine length in meters.
func (p Polyline) Length() float64 {
	total := 0.0
	for i := 1; i < len(p); i++ {
		total += DistanceMeters(p[i-1], p[i])
	}
	return total
}

func DistanceMeters(a, b Coordinate) float64 {
	return geo.Distance(orb.Point{a.Lng, a.Lat}, orb.Point{b.Lng, b.Lat})
}
