// Package state holds a session's route-finder state. Changes go through
// typed actions and a pure reducer; a Store serializes them.
package state

import (
	"route-finder/internal/history"
	"route-finder/internal/route"
)

// HistoryLimit caps the searches kept in a session, newest first.
const HistoryLimit = 10

// State is treated as immutable: the reducer returns a new value and never
// writes through the slices or pointers of the old one.
type State struct {
	Origin       string            `json:"origin"`
	OriginCoords *route.Coordinate `json:"originCoords,omitempty"`
	Destination  string            `json:"destination"`
	Mode         route.Mode        `json:"mode"`

	Directions *route.Directions `json:"directions,omitempty"`
	// Geocoded endpoints of the current route.
	OriginPoint      *route.Coordinate `json:"originPoint,omitempty"`
	DestinationPoint *route.Coordinate `json:"destinationPoint,omitempty"`

	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`

	History []history.Entry `json:"history"`

	// Seq numbers route fetches. Results tagged with an older Seq are stale.
	Seq uint64 `json:"-"`
	// Version counts applied actions.
	Version uint64 `json:"version"`
}

// Initial is the state of a fresh session.
func Initial() State {
	return State{Mode: route.ModeWalking, History: []history.Entry{}}
}

type Action interface{ action() }

type SetOrigin struct{ Text string }

// SetOriginCoords sets the origin from a device position. Text is the
// reverse geocoded label, or the raw coordinates when none was found.
type SetOriginCoords struct {
	Coords route.Coordinate
	Text   string
}

type SetDestination struct{ Text string }

type SetMode struct{ Mode route.Mode }

// SetError reports a problem found before any fetch started.
type SetError struct{ Message string }

type FetchStarted struct{}

type FetchSucceeded struct {
	Seq         uint64
	Directions  *route.Directions
	Origin      route.Coordinate
	Destination route.Coordinate
}

type FetchFailed struct {
	Seq     uint64
	Message string
}

type ClearRoute struct{}

type AddHistory struct{ Entry history.Entry }

type LoadHistory struct{ Entries []history.Entry }

func (SetOrigin) action()       {}
func (SetOriginCoords) action() {}
func (SetDestination) action()  {}
func (SetMode) action()         {}
func (SetError) action()        {}
func (FetchStarted) action()    {}
func (FetchSucceeded) action()  {}
func (FetchFailed) action()     {}
func (ClearRoute) action()      {}
func (AddHistory) action()      {}
func (LoadHistory) action()     {}

// Reduce applies a to s. Unknown actions and stale fetch results leave s
// unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetOrigin:
		s.Origin = a.Text
		s.OriginCoords = nil
	case SetOriginCoords:
		c := a.Coords
		s.Origin = a.Text
		s.OriginCoords = &c
	case SetDestination:
		s.Destination = a.Text
	case SetMode:
		if a.Mode == "" {
			return s
		}
		s.Mode = a.Mode
	case SetError:
		s.Error = a.Message
	case FetchStarted:
		s.Seq++
		s.Loading = true
		s.Error = ""
	case FetchSucceeded:
		if a.Seq != s.Seq {
			return s
		}
		o, d := a.Origin, a.Destination
		s.Directions = a.Directions
		s.OriginPoint, s.DestinationPoint = &o, &d
		s.Loading = false
		s.Error = ""
	case FetchFailed:
		if a.Seq != s.Seq {
			return s
		}
		s.Directions = nil
		s.OriginPoint, s.DestinationPoint = nil, nil
		s.Loading = false
		s.Error = a.Message
	case ClearRoute:
		// A fetch still running when the route is cleared must not land.
		s.Seq++
		s.Directions = nil
		s.OriginPoint, s.DestinationPoint = nil, nil
		s.Loading = false
		s.Error = ""
	case AddHistory:
		h := make([]history.Entry, 0, HistoryLimit)
		h = append(h, a.Entry)
		h = append(h, s.History...)
		s.History = capHistory(h)
	case LoadHistory:
		s.History = capHistory(append([]history.Entry(nil), a.Entries...))
	default:
		return s
	}
	s.Version++
	return s
}

func capHistory(h []history.Entry) []history.Entry {
	if h == nil {
		return []history.Entry{}
	}
	if len(h) > HistoryLimit {
		h = h[:HistoryLimit]
	}
	return h
}
