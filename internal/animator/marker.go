package animator

import (
	"context"
	"math"
	"sync"

	"route-finder/internal/route"
)

// minMove is the smallest position change, in degrees, worth re-rendering.
const minMove = 0.00005

// Sink receives the samples of a session's animation.
type Sink interface {
	Place(ctx context.Context, session string, s route.Sample) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, session string, s route.Sample) error

func (f SinkFunc) Place(ctx context.Context, session string, s route.Sample) error {
	return f(ctx, session, s)
}

// Marker sits between the animator and a renderer. It smooths headings and
// drops samples that barely moved.
type Marker struct {
	next Sink

	mu      sync.Mutex
	filter  HeadingFilter
	prev    route.Coordinate
	hasPrev bool
}

func NewMarker(next Sink) *Marker {
	return &Marker{next: next}
}

// Place forwards s with its heading filtered, unless the marker moved less
// than minMove since the last forwarded sample.
func (m *Marker) Place(ctx context.Context, session string, s route.Sample) error {
	m.mu.Lock()
	if m.hasPrev && planarDistance(m.prev, s.Position) < minMove {
		m.mu.Unlock()
		return nil
	}
	m.prev, m.hasPrev = s.Position, true
	s.Heading = m.filter.Update(s.Heading)
	m.mu.Unlock()

	return m.next.Place(ctx, session, s)
}

func planarDistance(a, b route.Coordinate) float64 {
	return math.Hypot(b.Lat-a.Lat, b.Lng-a.Lng)
}
