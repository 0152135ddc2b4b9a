package api

import (
	"net/http"

	"github.com/centresolea/solea-events/internal/calendar"
	"github.com/centresolea/solea-events/internal/event"
)

func (s *Server) handleWelcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Welcome))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	lines, err := s.source.Courses(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"informations": lines})
}

func (s *Server) handleTariffs(w http.ResponseWriter, r *http.Request) {
	tariffs, err := s.source.Tariffs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tarifs": tariffs})
}

func (s *Server) handleMembership(w http.ResponseWriter, r *http.Request) {
	fee, ok, err := s.source.Membership(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorBody{
			Error: "Montant de l'adhésion introuvable",
			Code:  CodeNotFound,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"adhesion": fee})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q, events, err := s.events(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if q.Vocal {
		writeJSON(w, http.StatusOK, map[string]any{"evenements": event.SpokenAll(events)})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"evenements": events})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	_, events, err := s.events(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="centre-solea.ics"`)
	_, _ = w.Write([]byte(calendar.GenerateICS(events, s.Now(), s.source.Location())))
}

// events parses the query and runs the extraction.
func (s *Server) events(r *http.Request) (eventsQuery, []*event.Event, error) {
	q, err := s.val.parseEventsQuery(r.URL.Query())
	if err != nil {
		return q, nil, err
	}
	opts, err := q.options(s.Now(), s.source.Location(), s.pages)
	if err != nil {
		return q, nil, err
	}

	events, err := s.source.Events(r.Context(), opts)
	if err != nil {
		return q, nil, err
	}
	if events == nil {
		events = []*event.Event{}
	}
	return q, events, nil
}
