package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"route-finder/internal/route"
)

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// conn is the slice of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
	Close()
}

// NATSPublisher streams marker samples, one subject per session.
type NATSPublisher struct {
	nc          conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
	log         *slog.Logger
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics, logger *slog.Logger) (*NATSPublisher, error) {
	logger = logger.With("component", "nats")
	nc, err := nats.Connect(url,
		nats.Name("route-finder"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			logger.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return newNATSPublisher(nc, prefix, logSubjects, m, logger), nil
}

func newNATSPublisher(nc conn, prefix string, logSubjects bool, m PublisherMetrics, logger *slog.Logger) *NATSPublisher {
	if strings.TrimSpace(prefix) == "" {
		prefix = "marker"
	}
	return &NATSPublisher{nc: nc, prefix: prefix, logSubjects: logSubjects, metrics: m, log: logger}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

// MarkerMessage is the wire form of one marker sample.
type MarkerMessage struct {
	Session   string    `json:"session"`
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Heading   float64   `json:"heading"`
}

func NewMarkerMessage(session string, s route.Sample) MarkerMessage {
	return MarkerMessage{
		Session:   session,
		Index:     s.Index,
		Timestamp: s.At,
		Lat:       s.Position.Lat,
		Lng:       s.Position.Lng,
		Heading:   s.Heading,
	}
}

// Subject is where samples for a session are published.
func (p *NATSPublisher) Subject(session string) string {
	return fmt.Sprintf("%s.%s", p.prefix, subjectToken(session))
}

// Place publishes the sample on the session's subject.
func (p *NATSPublisher) Place(_ context.Context, session string, s route.Sample) error {
	subject := p.Subject(session)
	b, err := json.Marshal(NewMarkerMessage(session, s))
	if err != nil {
		return err
	}
	if p.logSubjects {
		p.log.Debug("nats publish", "subject", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS tokens cannot hold whitespace, wildcards or separators.
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
