package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/config"
	"github.com/anicoll/home-bridge/internal/pkg/model"
	"github.com/anicoll/home-bridge/internal/pkg/tradfri"
)

var errBadRequest = errors.New("bad request")

type tradfriService interface {
	GatewayDetails(ctx context.Context) (model.GatewayDetails, error)
	RebootGateway(ctx context.Context) error
	Devices(ctx context.Context, query tradfri.DeviceQuery) ([]model.Device, error)
	Device(ctx context.Context, id int, withRaw bool) (model.Device, error)
	PutDevice(ctx context.Context, device model.Device, patch model.DevicePatch) error
	PutBulbs(ctx context.Context, patch model.DevicePatch) ([]model.Device, error)
	SetDeviceName(ctx context.Context, id int, name string) error
	SetDeviceState(ctx context.Context, id, state int) error
	ToggleDeviceState(ctx context.Context, id int) (int, error)
	SetDeviceBrightness(ctx context.Context, id, brightness int, transition *tradfri.Transition) error
	SetDeviceColor(ctx context.Context, id int, color string, transition *tradfri.Transition) error
	Groups(ctx context.Context, query tradfri.GroupQuery) ([]model.Group, error)
	Group(ctx context.Context, id int, withRaw bool) (model.Group, error)
	SetGroupName(ctx context.Context, id int, name string) error
	SetGroupState(ctx context.Context, id, state int) error
	SetGroupBrightness(ctx context.Context, id, brightness int, transition *tradfri.Transition) error
	SetGroupColor(ctx context.Context, id int, color string, transition *tradfri.Transition) error
	Disco(ctx context.Context, ids []int, on bool, interval, transition time.Duration) error
	Notifications(ctx context.Context, withRaw bool) ([]model.Notification, error)
	Schedules(ctx context.Context) ([]model.Schedule, error)
	Schedule(ctx context.Context, id int) (model.Schedule, error)
}

type outletService interface {
	List() []model.Outlet
	Switch(ctx context.Context, id, state int) (model.Outlet, error)
	Toggle(ctx context.Context, id int) (model.Outlet, error)
}

type shutterService interface {
	List() []model.Shutter
	Up(ctx context.Context, id int, delay time.Duration) error
	Down(ctx context.Context, id int, delay time.Duration) error
}

type sensorService interface {
	List(ctx context.Context) []model.SensorValue
	Get(ctx context.Context, id int) (model.SensorValue, error)
	History(ctx context.Context, id int, from, until time.Time) (model.TemperatureReadings, error)
}

// Server serves the REST API. Every device backend is optional, routers of
// missing backends are not mounted.
type Server struct {
	tradfri  tradfriService
	outlets  outletService
	shutters shutterService
	sensors  sensorService
	hub      *Hub
	users    []config.User
	logger   *zap.Logger
}

type Option func(*Server)

func WithTradfri(t tradfriService) Option {
	return func(s *Server) { s.tradfri = t }
}

func WithOutlets(o outletService) Option {
	return func(s *Server) { s.outlets = o }
}

func WithShutters(sh shutterService) Option {
	return func(s *Server) { s.shutters = sh }
}

func WithSensors(sensors sensorService) Option {
	return func(s *Server) { s.sensors = sensors }
}

func WithHub(h *Hub) Option {
	return func(s *Server) { s.hub = h }
}

// WithUsers enables API key authentication for the given users.
func WithUsers(users []config.User) Option {
	return func(s *Server) { s.users = users }
}

func New(opts ...Option) *Server {
	s := &Server{logger: zap.L()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the http handler with all mounted routers and middlewares.
func (s *Server) Router() (http.Handler, error) {
	validator, err := newRequestValidator()
	if err != nil {
		return nil, err
	}
	if len(s.users) == 0 {
		s.logger.Warn("no api users configured, the api is open to everyone")
	}

	r := chi.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(corsMiddleware)
	r.Use(s.authMiddleware)
	r.Use(validator.middleware)

	prefixes := []string{}
	if s.tradfri != nil {
		r.Route("/tradfri", s.tradfriRoutes)
		prefixes = append(prefixes, "/tradfri")
	}
	if s.outlets != nil {
		r.Route("/rfoutlets", s.outletRoutes)
		prefixes = append(prefixes, "/rfoutlets")
	}
	if s.shutters != nil {
		r.Route("/shutters", s.shutterRoutes)
		prefixes = append(prefixes, "/shutters")
	}
	if s.sensors != nil {
		r.Route("/tempSensors", s.sensorRoutes)
		prefixes = append(prefixes, "/tempSensors")
	}
	if s.hub != nil {
		r.Get("/events", s.hub.ServeHTTP)
		prefixes = append(prefixes, "/events")
	}
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, prefixes)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, fmt.Sprintf("%s %s not found", r.Method, r.URL.Path))
	})
	return r, nil
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return &out, nil
}

func intParam(r *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", errBadRequest, name)
	}
	return value, nil
}

// boolQuery treats a present value other than 0 and false as true.
func boolQuery(r *http.Request, name string) bool {
	value := r.URL.Query().Get(name)
	return value != "" && value != "0" && value != "false"
}

// unixQuery parses a unix seconds query parameter, a missing value yields the zero time.
func unixQuery(r *http.Request, name string) (time.Time, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return time.Time{}, nil
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be unix seconds", errBadRequest, name)
	}
	return time.Unix(seconds, 0).UTC(), nil
}
