// Package finder runs route-finder sessions: it takes a user's origin,
// destination and mode, fetches and synthesizes directions, and keeps the
// session's marker animation in step with the current route.
package finder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"route-finder/internal/animator"
	"route-finder/internal/geocode"
	"route-finder/internal/history"
	"route-finder/internal/i18n"
	"route-finder/internal/instructions"
	"route-finder/internal/metrics"
	"route-finder/internal/route"
	"route-finder/internal/state"
)

type Geocoder interface {
	Geocode(ctx context.Context, text string) (route.Coordinate, error)
	Reverse(ctx context.Context, lat, lng float64) (route.Coordinate, error)
}

type Router interface {
	Route(ctx context.Context, origin, dest route.Coordinate, mode route.Mode) (*route.Response, error)
}

// Animator is the part of *animator.Manager a finder drives.
type Animator interface {
	Start(parent context.Context, session string, path route.Polyline, mode route.Mode, sink animator.Sink) bool
	Stop(session string)
}

type Options struct {
	Geocoder Geocoder
	Router   Router
	Animator Animator
	// Sink receives marker samples after heading smoothing.
	Sink animator.Sink
	// History persists searches. Nil keeps them in the session only.
	History      history.Store
	HistoryLimit int
	// DefaultLanguage is used when a request names none.
	DefaultLanguage string
	Metrics         *metrics.Collector
	Logger          *slog.Logger
}

type session struct {
	store *state.Store

	mu          sync.Mutex
	cancelFetch context.CancelFunc
}

type Finder struct {
	ctx     context.Context
	geo     Geocoder
	router  Router
	anim    Animator
	sink    animator.Sink
	history history.Store
	limit   int
	lang    string
	metrics *metrics.Collector
	log     *slog.Logger

	mu       sync.Mutex
	sessions map[string]*session
	wg       sync.WaitGroup
}

// New returns a finder whose animations and background writes live as long
// as ctx.
func New(ctx context.Context, opts Options) *Finder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := opts.HistoryLimit
	if limit <= 0 || limit > state.HistoryLimit {
		limit = state.HistoryLimit
	}
	sink := opts.Sink
	if sink == nil {
		sink = animator.SinkFunc(func(context.Context, string, route.Sample) error { return nil })
	}
	return &Finder{
		ctx:      ctx,
		geo:      opts.Geocoder,
		router:   opts.Router,
		anim:     opts.Animator,
		sink:     sink,
		history:  opts.History,
		limit:    limit,
		lang:     opts.DefaultLanguage,
		metrics:  opts.Metrics,
		log:      logger.With("component", "finder"),
		sessions: make(map[string]*session),
	}
}

func (f *Finder) session(id string) *session {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		s = &session{store: state.NewStore(state.Initial())}
		f.sessions[id] = s
	}
	return s
}

func (f *Finder) Snapshot(id string) state.State {
	return f.session(id).store.Snapshot()
}

// Subscribe streams the session's state. Call the returned func when done.
func (f *Finder) Subscribe(id string) (<-chan state.State, func()) {
	return f.session(id).store.Subscribe()
}

// SetOrigin sets the origin text. Any device position set earlier is
// forgotten.
func (f *Finder) SetOrigin(id, text string) state.State {
	return f.session(id).store.Dispatch(state.SetOrigin{Text: text})
}

// SetOriginFromCoords uses a device position as the origin. The label is
// the address found there, or the raw "lat,lng" when the lookup fails.
func (f *Finder) SetOriginFromCoords(ctx context.Context, id string, lat, lng float64) state.State {
	coords := route.Coordinate{Lat: lat, Lng: lng}
	text := strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)

	found, err := f.geo.Reverse(ctx, lat, lng)
	switch {
	case err != nil:
		f.upstreamError("geocode")
		f.log.Warn("reverse geocode failed, using coordinates", "session", id, "error", err)
	case strings.TrimSpace(found.Formatted) != "":
		text = found.Formatted
		coords.Formatted = found.Formatted
	}
	return f.session(id).store.Dispatch(state.SetOriginCoords{Coords: coords, Text: text})
}

func (f *Finder) SetDestination(id, text string) state.State {
	return f.session(id).store.Dispatch(state.SetDestination{Text: text})
}

// SetTransportMode changes the mode. A route already on screen keeps its
// geometry and the marker restarts at the new mode's pace.
func (f *Finder) SetTransportMode(id string, mode route.Mode) state.State {
	s := f.session(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.store.Dispatch(state.SetMode{Mode: mode})
	if st.Directions != nil {
		f.animate(id, st.Directions.Geometry, st.Mode)
	}
	return st
}

// FindRoute fetches directions for the session's current inputs. A newer
// call, or ClearRoute, supersedes a running one; the superseded call
// returns the newer state and no error.
func (f *Finder) FindRoute(ctx context.Context, id, lang string) (state.State, error) {
	s := f.session(id)
	in := s.store.Snapshot()

	origin, dest := strings.TrimSpace(in.Origin), strings.TrimSpace(in.Destination)
	if (origin == "" && in.OriginCoords == nil) || dest == "" {
		err := route.ErrMissingEndpoints
		f.count(err)
		return s.store.Dispatch(state.SetError{Message: f.message(lang, err)}), err
	}

	ctx, done, st := s.beginFetch(ctx)
	defer done()
	seq := st.Seq

	start := time.Now()
	tag := f.language(lang)
	dirs, o, d, err := f.fetch(ctx, in, tag)
	if f.metrics != nil {
		f.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		st, current := s.settle(state.FetchFailed{Seq: seq, Message: f.message(lang, err)}, seq, func() {
			// The failed fetch discarded the route, so the marker goes too.
			f.stop(id)
		})
		if !current {
			f.countOutcome("superseded")
			return st, nil
		}
		f.count(err)
		f.log.Info("route fetch failed", "session", id, "error", err)
		return st, err
	}

	st, current := s.settle(state.FetchSucceeded{Seq: seq, Directions: dirs, Origin: o, Destination: d}, seq, func() {
		f.animate(id, dirs.Geometry, in.Mode)
	})
	if !current {
		f.countOutcome("superseded")
		return st, nil
	}
	f.count(nil)
	f.log.Debug("route found", "session", id, "mode", in.Mode, "points", len(dirs.Geometry), "length_m", int(dirs.Geometry.Length()))

	st = s.store.Dispatch(state.AddHistory{Entry: history.Entry{
		ID:          uuid.NewString(),
		UserID:      id,
		Origin:      originLabel(in),
		Destination: dest,
		Mode:        in.Mode,
		Timestamp:   time.Now().UTC(),
	}})
	f.persist(id, st.History[0])
	return st, nil
}

func (f *Finder) fetch(ctx context.Context, in state.State, tag language.Tag) (*route.Directions, route.Coordinate, route.Coordinate, error) {
	base, _ := tag.Base()
	gctx := geocode.WithLanguage(ctx, base.String())

	var o, d route.Coordinate
	g, gctx := errgroup.WithContext(gctx)
	if in.OriginCoords != nil {
		o = *in.OriginCoords
	} else {
		g.Go(func() (err error) {
			o, err = f.geo.Geocode(gctx, in.Origin)
			return err
		})
	}
	g.Go(func() (err error) {
		d, err = f.geo.Geocode(gctx, in.Destination)
		return err
	})
	if err := g.Wait(); err != nil {
		f.upstreamError("geocode")
		return nil, o, d, err
	}

	resp, err := f.router.Route(ctx, o, d, in.Mode)
	if err != nil {
		f.upstreamError("routing")
		return nil, o, d, err
	}
	dirs, err := instructions.New(i18n.Printer(tag)).Synthesize(resp)
	if err != nil {
		return nil, o, d, err
	}
	return dirs, o, d, nil
}

// ClearRoute drops the route, stops the marker and abandons any running
// fetch.
func (f *Finder) ClearRoute(id string) state.State {
	s := f.session(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.store.Dispatch(state.ClearRoute{})
	s.abandon()
	f.stop(id)
	return st
}

// History returns the user's recent searches, newest first. It reads the
// configured store and falls back to the session's own list when there is
// none or the store fails.
func (f *Finder) History(ctx context.Context, id string) []history.Entry {
	s := f.session(id)
	if f.history == nil {
		return s.store.Snapshot().History
	}
	entries, err := f.history.Recent(ctx, id, f.limit)
	if err != nil {
		f.upstreamError("history")
		f.log.Warn("load history", "session", id, "error", err)
		return s.store.Snapshot().History
	}
	return s.store.Dispatch(state.LoadHistory{Entries: entries}).History
}

// SignOut ends the session: fetches and animation stop and its state is
// dropped.
func (f *Finder) SignOut(id string) {
	f.mu.Lock()
	s, ok := f.sessions[id]
	delete(f.sessions, id)
	f.mu.Unlock()
	f.stop(id)
	if ok {
		s.cancel()
		s.store.Close()
	}
}

// Shutdown waits for pending history writes.
func (f *Finder) Shutdown() {
	f.wg.Wait()
}

func (f *Finder) animate(id string, path route.Polyline, mode route.Mode) {
	if f.anim == nil {
		return
	}
	f.anim.Start(f.ctx, id, path, mode, animator.NewMarker(f.sink))
}

func (f *Finder) stop(id string) {
	if f.anim != nil {
		f.anim.Stop(id)
	}
}

// persist writes a search to the history store in the background.
func (f *Finder) persist(id string, e history.Entry) {
	if f.history == nil {
		return
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(f.ctx), 10*time.Second)
		defer cancel()
		if _, err := f.history.Add(ctx, e); err != nil {
			f.upstreamError("history")
			f.log.Warn("save history", "session", id, "error", err)
		}
	}()
}

func (f *Finder) language(lang string) language.Tag {
	return i18n.Match(lang, f.lang)
}

func (f *Finder) message(lang string, err error) string {
	return i18n.Printer(f.language(lang)).Sprintf(route.UserMessage(err))
}

func (f *Finder) count(err error) { f.countOutcome(Outcome(err)) }

func (f *Finder) countOutcome(outcome string) {
	if f.metrics != nil {
		f.metrics.RouteFetches.WithLabelValues(outcome).Inc()
	}
}

func (f *Finder) upstreamError(collaborator string) {
	if f.metrics != nil {
		f.metrics.UpstreamError(collaborator)
	}
}

// Outcome labels a fetch result for metrics.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, route.ErrMissingEndpoints):
		return "invalid"
	case errors.Is(err, route.ErrLocationNotFound):
		return "not_found"
	case errors.Is(err, route.ErrNoRouteFound):
		return "no_route"
	case errors.Is(err, route.ErrAuthFailure):
		return "auth"
	case errors.Is(err, route.ErrNetworkFailure), errors.Is(err, context.DeadlineExceeded):
		return "network"
	default:
		return "error"
	}
}

func originLabel(s state.State) string {
	if o := strings.TrimSpace(s.Origin); o != "" {
		return o
	}
	c := s.OriginCoords
	return fmt.Sprintf("%s,%s", strconv.FormatFloat(c.Lat, 'f', -1, 64), strconv.FormatFloat(c.Lng, 'f', -1, 64))
}

// beginFetch cancels the session's running fetch and starts a new one. The
// returned func releases the fetch's resources.
func (s *session) beginFetch(parent context.Context) (context.Context, context.CancelFunc, state.State) {
	ctx, cancel := context.WithCancel(parent)
	s.mu.Lock()
	defer s.mu.Unlock()
	// Bump the sequence first so the cancelled fetch sees itself as stale.
	st := s.store.Dispatch(state.FetchStarted{})
	if s.cancelFetch != nil {
		s.cancelFetch()
	}
	s.cancelFetch = cancel
	return ctx, cancel, st
}

// settle applies a fetch result and, when no newer fetch or clear has
// happened since seq, runs then before anything else can change the route.
func (s *session) settle(a state.Action, seq uint64, then func()) (state.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.store.Dispatch(a)
	if st.Seq != seq {
		return st, false
	}
	then()
	return st, true
}

func (s *session) cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.abandon()
}

// abandon cancels the running fetch. s.mu must be held.
func (s *session) abandon() {
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
}
