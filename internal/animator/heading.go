package animator

import (
	"math"

	"route-finder/internal/route"
)

// lookahead is how many points ahead of the cursor the heading is taken
// from. Looking past the next point smooths single-segment jitter.
const lookahead = 2

// smoothing is the share of the angular gap the displayed heading closes on
// each update.
const smoothing = 0.2

// Heading is the angle in degrees of the vector from a to b, measured as
// atan2 of the longitude delta over the latitude delta. North is 0, east 90.
func Heading(a, b route.Coordinate) float64 {
	return math.Atan2(b.Lng-a.Lng, b.Lat-a.Lat) * 180 / math.Pi
}

// normalizeAngle maps any angle into [-180, 180).
func normalizeAngle(d float64) float64 {
	d = math.Mod(d+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

// HeadingFilter low-pass filters headings so a marker turns gradually
// instead of snapping to each new target.
type HeadingFilter struct {
	current float64
	primed  bool
}

// Update moves the displayed heading a fifth of the shortest way toward
// target and returns it. The first update on a zero filter adopts target.
func (f *HeadingFilter) Update(target float64) float64 {
	if !f.primed {
		f.current, f.primed = target, true
		return f.current
	}
	f.current += normalizeAngle(target-f.current) * smoothing
	return f.current
}
