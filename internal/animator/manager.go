// Package animator walks a route polyline over time and emits marker
// samples, one cancellable run per session.
package animator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"route-finder/internal/metrics"
	"route-finder/internal/route"
)

// Key identifies what a run animates. Restarting with an equal key while
// the run is still going changes nothing.
type Key struct {
	Fingerprint uint64
	Mode        route.Mode
}

type run struct {
	key    Key
	cancel context.CancelFunc
	done   chan struct{}
}

type Manager struct {
	frames  FrameSource
	metrics *metrics.Collector
	log     *slog.Logger

	mu      sync.Mutex
	running map[string]*run // session -> run
	wg      sync.WaitGroup
}

func NewManager(frames FrameSource, m *metrics.Collector, logger *slog.Logger) *Manager {
	if frames == nil {
		frames = TickerFrames(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		frames:  frames,
		metrics: m,
		log:     logger.With("component", "animator"),
		running: make(map[string]*run),
	}
}

// Start animates path for the session, replacing any earlier run. The
// previous run is cancelled and has returned before the new one places its
// first sample. It reports whether a new run was started.
func (m *Manager) Start(parent context.Context, session string, path route.Polyline, mode route.Mode, sink Sink) bool {
	key := Key{Fingerprint: path.Fingerprint(), Mode: mode}

	m.mu.Lock()
	prev := m.running[session]
	if prev != nil && prev.key == key && !isClosed(prev.done) {
		m.mu.Unlock()
		return false
	}
	if len(path) == 0 {
		delete(m.running, session)
		m.mu.Unlock()
		stopRun(prev)
		return false
	}
	ctx, cancel := context.WithCancel(parent)
	r := &run{key: key, cancel: cancel, done: make(chan struct{})}
	m.running[session] = r
	m.wg.Add(1)
	m.mu.Unlock()

	stopRun(prev)

	if m.metrics != nil {
		m.metrics.AnimationsStarted.Inc()
		m.metrics.ActiveAnimations.Inc()
	}
	m.log.Debug("animation started", "session", session, "points", len(path), "mode", mode)

	go func() {
		defer m.wg.Done()
		defer close(r.done)
		err := m.run(ctx, session, path, mode, sink)
		if err != nil && !errors.Is(err, context.Canceled) {
			m.log.Warn("animation stopped", "session", session, "error", err)
		}
		m.mu.Lock()
		if m.running[session] == r {
			delete(m.running, session)
		}
		m.mu.Unlock()
		if m.metrics != nil {
			m.metrics.AnimationsFinished.Inc()
			m.metrics.ActiveAnimations.Dec()
		}
	}()
	return true
}

func (m *Manager) run(ctx context.Context, session string, path route.Polyline, mode route.Mode, sink Sink) error {
	c := NewCursor(path, Interval(mode))
	if s, ok := c.Start(time.Now()); ok {
		m.place(ctx, session, sink, s)
	}
	if c.Done() {
		return nil
	}

	fr := m.frames()
	defer fr.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-fr.C():
			if s, ok := c.Frame(now); ok {
				m.place(ctx, session, sink, s)
			}
			if c.Done() {
				m.log.Debug("animation finished", "session", session, "points", len(path))
				return nil
			}
		}
	}
}

func (m *Manager) place(ctx context.Context, session string, sink Sink, s route.Sample) {
	if ctx.Err() != nil {
		return
	}
	if err := sink.Place(ctx, session, s); err != nil {
		m.log.Warn("place marker", "session", session, "index", s.Index, "error", err)
		return
	}
	if m.metrics != nil {
		m.metrics.SamplesPlaced.Inc()
	}
}

// Stop cancels the session's run, if any, and waits for it to return.
func (m *Manager) Stop(session string) {
	m.mu.Lock()
	r := m.running[session]
	delete(m.running, session)
	m.mu.Unlock()
	stopRun(r)
}

// Active returns the key of the session's unfinished run.
func (m *Manager) Active(session string) (Key, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.running[session]
	if !ok || isClosed(r.done) {
		return Key{}, false
	}
	return r.key, true
}

// Shutdown cancels every run and waits for all of them.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for _, r := range m.running {
		r.cancel()
	}
	m.running = make(map[string]*run)
	m.mu.Unlock()
	m.wg.Wait()
}

func stopRun(r *run) {
	if r == nil {
		return
	}
	r.cancel()
	<-r.done
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
