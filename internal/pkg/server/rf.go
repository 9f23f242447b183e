package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func (s *Server) outletRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []string{"/outlet"})
	})
	r.Get("/outlet", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.outlets.List())
	})
	r.Put("/outlet/{id}/toggle", s.toggleOutlet)
	r.Put("/outlet/{id}/{state}", s.switchOutlet)
}

func (s *Server) switchOutlet(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	state, err := outletState(chi.URLParam(r, "state"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	outlet, err := s.outlets.Switch(r.Context(), id, state)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outlet)
}

func (s *Server) toggleOutlet(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	outlet, err := s.outlets.Toggle(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, outlet)
}

// outletState accepts the code names on/off as well as 1/0.
func outletState(value string) (int, error) {
	switch value {
	case "on", "1":
		return 1, nil
	case "off", "0":
		return 0, nil
	}
	return 0, fmt.Errorf("%w: unknown outlet state %q", errBadRequest, value)
}

func (s *Server) shutterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []string{"/shutter"})
	})
	r.Get("/shutter", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.shutters.List())
	})
	r.Put("/shutter/{id}/up", s.moveShutter(s.shutters.Up))
	r.Put("/shutter/{id}/down", s.moveShutter(s.shutters.Down))
}

// moveShutter moves a shutter, the optional delay query parameter is a duration like 30s.
func (s *Server) moveShutter(move func(ctx context.Context, id int, delay time.Duration) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := intParam(r, "id")
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		var delay time.Duration
		if value := r.URL.Query().Get("delay"); value != "" {
			if delay, err = time.ParseDuration(value); err != nil {
				s.handleError(w, r, fmt.Errorf("%w: invalid delay %q", errBadRequest, value))
				return
			}
		}
		if err := move(r.Context(), id, delay); err != nil {
			s.handleError(w, r, err)
			return
		}
		writeOK(w)
	}
}
