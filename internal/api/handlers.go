package api

import (
	"math"
	"net/http"
	"strings"

	"route-finder/internal/auth"
	"route-finder/internal/route"
)

type originRequest struct {
	Text string   `json:"text"`
	Lat  *float64 `json:"lat,omitempty"`
	Lng  *float64 `json:"lng,omitempty"`
}

type textRequest struct {
	Text string `json:"text"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

func uid(r *http.Request) string {
	id, _ := auth.FromContext(r.Context())
	return id.UID
}

func (s *server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.Snapshot(uid(r)))
}

func (s *server) putOrigin(w http.ResponseWriter, r *http.Request) {
	var req originRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	switch {
	case req.Lat != nil && req.Lng != nil:
		lat, lng := *req.Lat, *req.Lng
		if math.Abs(lat) > 90 || math.Abs(lng) > 180 || math.IsNaN(lat) || math.IsNaN(lng) {
			badRequest(w, "lat must be within [-90,90] and lng within [-180,180]")
			return
		}
		writeJSON(w, http.StatusOK, s.sessions.SetOriginFromCoords(r.Context(), uid(r), lat, lng))
	case req.Lat != nil || req.Lng != nil:
		badRequest(w, "lat and lng must be given together")
	default:
		writeJSON(w, http.StatusOK, s.sessions.SetOrigin(uid(r), req.Text))
	}
}

func (s *server) putDestination(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	writeJSON(w, http.StatusOK, s.sessions.SetDestination(uid(r), req.Text))
}

func (s *server) putMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid json")
		return
	}
	mode, err := route.ParseMode(req.Mode)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.sessions.SetTransportMode(uid(r), mode))
}

// postRoute fetches directions. The language comes from ?lang= or, failing
// that, Accept-Language.
func (s *server) postRoute(w http.ResponseWriter, r *http.Request) {
	lang := strings.TrimSpace(r.URL.Query().Get("lang"))
	if lang == "" {
		lang = r.Header.Get("Accept-Language")
	}
	st, err := s.sessions.FindRoute(r.Context(), uid(r), lang)
	if err != nil {
		s.fail(w, r, err, st.Error)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *server) deleteRoute(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.ClearRoute(uid(r)))
}

func (s *server) getHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"history": s.sessions.History(r.Context(), uid(r))})
}

// signOut revokes the user's tokens and drops the session.
func (s *server) signOut(w http.ResponseWriter, r *http.Request) {
	id := uid(r)
	if err := s.verifier.Revoke(r.Context(), id); err != nil {
		s.log.Warn("revoke tokens", "uid", id, "error", err)
		s.fail(w, r, err, "")
		return
	}
	s.sessions.SignOut(id)
	w.WriteHeader(http.StatusNoContent)
}
