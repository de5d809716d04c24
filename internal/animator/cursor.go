package animator

import (
	"time"

	"route-finder/internal/route"
)

// Interval is how long the cursor rests on each point for a mode. Playback
// speed follows point density, not distance travelled.
func Interval(m route.Mode) time.Duration {
	switch m {
	case route.ModeWalking:
		return 100 * time.Millisecond
	case route.ModeCycling:
		return 70 * time.Millisecond
	case route.ModeBus:
		return 50 * time.Millisecond
	default:
		return 30 * time.Millisecond
	}
}

// Cursor walks a polyline one point per interval. It is driven by frame
// timestamps and holds no goroutine of its own.
type Cursor struct {
	path     route.Polyline
	interval time.Duration

	idx     int
	heading float64
	last    time.Time
	primed  bool
}

func NewCursor(path route.Polyline, interval time.Duration) *Cursor {
	return &Cursor{path: path, interval: interval}
}

// Start returns the placement sample at the first point. It is false for an
// empty polyline.
func (c *Cursor) Start(now time.Time) (route.Sample, bool) {
	if len(c.path) == 0 {
		return route.Sample{}, false
	}
	c.updateHeading()
	return c.sample(now), true
}

// Frame handles one display frame. The first frame only records the
// baseline; later frames advance once more than an interval has passed.
func (c *Cursor) Frame(now time.Time) (route.Sample, bool) {
	if c.Done() {
		return route.Sample{}, false
	}
	if !c.primed {
		c.last, c.primed = now, true
		return route.Sample{}, false
	}
	if now.Sub(c.last) <= c.interval {
		return route.Sample{}, false
	}
	c.idx++
	c.last = now
	c.updateHeading()
	return c.sample(now), true
}

// Done reports whether the cursor sits on the last point.
func (c *Cursor) Done() bool { return c.idx >= len(c.path)-1 }

func (c *Cursor) Index() int { return c.idx }

// updateHeading keeps the previous heading when the lookahead point is out
// of range.
func (c *Cursor) updateHeading() {
	if c.idx+lookahead < len(c.path) {
		c.heading = Heading(c.path[c.idx], c.path[c.idx+lookahead])
	}
}

func (c *Cursor) sample(now time.Time) route.Sample {
	return route.Sample{Index: c.idx, Position: c.path[c.idx], Heading: c.heading, At: now}
}
