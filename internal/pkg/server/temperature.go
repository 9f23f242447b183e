package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) sensorRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.sensors.List(r.Context()))
	})
	r.Get("/{id}", s.getSensor)
	r.Get("/{id}/history", s.getSensorHistory)
}

func (s *Server) getSensor(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	sensor, err := s.sensors.Get(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

// getSensorHistory serves the readings between the unix seconds min and max.
func (s *Server) getSensorHistory(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	from, err := unixQuery(r, "min")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	until, err := unixQuery(r, "max")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	readings, err := s.sensors.History(r.Context(), id, from, until)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}
