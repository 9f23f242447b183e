package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/model"
	"github.com/anicoll/home-bridge/internal/pkg/tradfri"
)

// DiscoRequest is the optional body of PUT /tradfri/disco/{mode}. Without device ids
// all rgb bulbs take part.
type DiscoRequest struct {
	DeviceIDs    []int `json:"deviceIds"`
	IntervalMs   int   `json:"intervalMs"`
	TransitionMs int   `json:"transitionMs"`
}

func (s *Server) tradfriRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, []string{"/gateway", "/device", "/group", "/disco", "/notification", "/schedule"})
	})

	r.Get("/gateway", s.getGateway)
	r.Post("/gateway/reboot", s.rebootGateway)

	r.Get("/device", s.getDevices)
	r.Put("/device", s.putBulbs)
	r.Route("/device/{id}", func(r chi.Router) {
		r.Get("/", s.getDevice)
		r.Put("/", s.putDevice)
		r.Put("/name/{name}", s.putDeviceName)
		r.Put("/state/{state}", s.putDeviceState)
		r.Put("/toggle", s.toggleDevice)
		r.Put("/brightness/{brightness}", s.putDeviceBrightness)
		r.Put("/brightness/{brightness}/{transition}", s.putDeviceBrightness)
		r.Put("/brightness/{brightness}/{transition}/{unit}", s.putDeviceBrightness)
		r.Put("/color/{color}", s.putDeviceColor)
		r.Put("/color/{color}/{transition}", s.putDeviceColor)
		r.Put("/color/{color}/{transition}/{unit}", s.putDeviceColor)
	})

	r.Get("/group", s.getGroups)
	r.Route("/group/{id}", func(r chi.Router) {
		r.Get("/", s.getGroup)
		r.Put("/name/{name}", s.putGroupName)
		r.Put("/state/{state}", s.putGroupState)
		r.Put("/brightness/{brightness}", s.putGroupBrightness)
		r.Put("/brightness/{brightness}/{transition}", s.putGroupBrightness)
		r.Put("/brightness/{brightness}/{transition}/{unit}", s.putGroupBrightness)
		r.Put("/color/{color}", s.putGroupColor)
	})

	r.Put("/disco/{mode}", s.putDisco)
	r.Get("/notification", s.getNotifications)
	r.Get("/schedule", s.getSchedules)
	r.Get("/schedule/{id}", s.getSchedule)
}

func (s *Server) getGateway(w http.ResponseWriter, r *http.Request) {
	details, err := s.tradfri.GatewayDetails(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) rebootGateway(w http.ResponseWriter, r *http.Request) {
	if err := s.tradfri.RebootGateway(r.Context()); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Info("gateway reboot requested")
	writeOK(w)
}

func (s *Server) getDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := s.tradfri.Devices(r.Context(), tradfri.DeviceQuery{
		Type:    model.DeviceType(r.URL.Query().Get("type")),
		SortBy:  sortFields(r),
		WithRaw: boolQuery(r, "withRaw"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, devices)
}

func (s *Server) getDevice(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	device, err := s.tradfri.Device(r.Context(), id, boolQuery(r, "withRaw"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, device)
}

func (s *Server) putBulbs(w http.ResponseWriter, r *http.Request) {
	patch, err := unmarshalPayload[model.DevicePatch](r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	bulbs, err := s.tradfri.PutBulbs(r.Context(), *patch)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bulbs)
}

func (s *Server) putDevice(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	patch, err := unmarshalPayload[model.DevicePatch](r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	device, err := s.tradfri.Device(r.Context(), id, false)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.PutDevice(r.Context(), device, *patch); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) putDeviceName(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetDeviceName(r.Context(), id, chi.URLParam(r, "name")); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) putDeviceState(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	state, err := intParam(r, "state")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetDeviceState(r.Context(), id, state); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) toggleDevice(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	state, err := s.tradfri.ToggleDeviceState(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"state": state})
}

func (s *Server) putDeviceBrightness(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	brightness, err := intParam(r, "brightness")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	transition, err := transitionParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetDeviceBrightness(r.Context(), id, brightness, transition); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) putDeviceColor(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	transition, err := transitionParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetDeviceColor(r.Context(), id, chi.URLParam(r, "color"), transition); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) getGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.tradfri.Groups(r.Context(), tradfri.GroupQuery{
		SortBy:  sortFields(r),
		WithRaw: boolQuery(r, "withRaw"),
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	group, err := s.tradfri.Group(r.Context(), id, boolQuery(r, "withRaw"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, group)
}

func (s *Server) putGroupName(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetGroupName(r.Context(), id, chi.URLParam(r, "name")); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) putGroupState(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	state, err := intParam(r, "state")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetGroupState(r.Context(), id, state); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) putGroupBrightness(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	brightness, err := intParam(r, "brightness")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	transition, err := transitionParam(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetGroupBrightness(r.Context(), id, brightness, transition); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) putGroupColor(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if err := s.tradfri.SetGroupColor(r.Context(), id, chi.URLParam(r, "color"), nil); err != nil {
		s.handleError(w, r, err)
		return
	}
	writeOK(w)
}

func (s *Server) putDisco(w http.ResponseWriter, r *http.Request) {
	on := chi.URLParam(r, "mode") == "on"
	req := &DiscoRequest{}
	if r.ContentLength != 0 {
		var err error
		if req, err = unmarshalPayload[DiscoRequest](r); err != nil {
			s.handleError(w, r, err)
			return
		}
	}

	ids := req.DeviceIDs
	if on && len(ids) == 0 {
		bulbs, err := s.tradfri.Devices(r.Context(), tradfri.DeviceQuery{Type: model.DeviceTypeBulb})
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		ids = lo.FilterMap(bulbs, func(d model.Device, _ int) (int, bool) {
			return d.ID, d.BulbType == model.BulbTypeRGB
		})
	}

	interval := time.Duration(req.IntervalMs) * time.Millisecond
	transition := time.Duration(req.TransitionMs) * time.Millisecond
	if err := s.tradfri.Disco(r.Context(), ids, on, interval, transition); err != nil {
		s.handleError(w, r, err)
		return
	}
	s.logger.Info("disco switched", zap.Bool("on", on), zap.Ints("deviceIds", ids))
	writeOK(w)
}

func (s *Server) getNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.tradfri.Notifications(r.Context(), boolQuery(r, "withRaw"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) getSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.tradfri.Schedules(r.Context())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedules)
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	schedule, err := s.tradfri.Schedule(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

// transitionParam reads the optional {transition}/{unit} path segments. A transition
// without unit is in seconds.
func transitionParam(r *http.Request) (*tradfri.Transition, error) {
	if chi.URLParam(r, "transition") == "" {
		return nil, nil
	}
	value, err := intParam(r, "transition")
	if err != nil {
		return nil, err
	}
	return tradfri.NewTransition(value, tradfri.TimeUnit(chi.URLParam(r, "unit"))), nil
}

// sortFields accepts sortBy as repeated parameter or comma separated list.
func sortFields(r *http.Request) []string {
	var fields []string
	for _, value := range r.URL.Query()["sortBy"] {
		fields = append(fields, lo.Compact(strings.Split(value, ","))...)
	}
	return fields
}
