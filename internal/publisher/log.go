package publisher

import (
	"context"
	"log/slog"

	"route-finder/internal/route"
)

// LogPublisher writes samples to the log instead of a broker. It is used
// when no NATS URL is configured.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{log: logger.With("component", "marker")}
}

func (p *LogPublisher) Place(ctx context.Context, session string, s route.Sample) error {
	p.log.DebugContext(ctx, "marker moved",
		"session", session,
		"index", s.Index,
		"lat", s.Position.Lat,
		"lng", s.Position.Lng,
		"heading", s.Heading,
	)
	return nil
}

func (p *LogPublisher) Close() {}
