package publisher

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

// Publisher receives temperature readings, e.g. the history store or the mqtt broker.
type Publisher interface {
	Write(ctx context.Context, readings model.TemperatureReadings) error
	RegisterSensor(ctx context.Context, sensor model.TemperatureSensor) error
}

// Registry fans readings out to every registered publisher. A failing publisher
// is logged and does not keep the others from receiving the readings.
type Registry struct {
	mu         sync.RWMutex
	publishers map[string]Publisher
	published  sync.Map
	logger     *zap.Logger
}

func New() *Registry {
	return &Registry{
		publishers: make(map[string]Publisher),
		logger:     zap.L(),
	}
}

func (r *Registry) RegisterPublisher(name string, p Publisher) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.publishers[name]; ok {
		return fmt.Errorf("%w: %s", errAlreadyRegistered, name)
	}
	r.publishers[name] = p
	return nil
}

// Names returns the registered publisher names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.publishers))
	for name := range r.publishers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Publish writes the readings not published before. It returns the number of readings written.
func (r *Registry) Publish(ctx context.Context, readings model.TemperatureReadings) int {
	fresh := make(model.TemperatureReadings, 0, len(readings))
	for _, reading := range readings {
		if r.shouldUpdate(reading) {
			fresh = append(fresh, reading)
		}
	}
	if len(fresh) == 0 {
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, p := range r.publishers {
		if err := p.Write(ctx, fresh); err != nil {
			r.logger.Error("failed to publish readings", zap.Error(err), zap.String("publisher", name))
			continue
		}
		r.logger.Debug("published readings", zap.Int("count", len(fresh)), zap.String("publisher", name))
	}
	return len(fresh)
}

func (r *Registry) RegisterSensor(ctx context.Context, sensor model.TemperatureSensor) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, p := range r.publishers {
		if err := p.RegisterSensor(ctx, sensor); err != nil {
			r.logger.Error("failed to register sensor", zap.Error(err), zap.String("publisher", name))
			continue
		}
		r.logger.Debug("registered sensor", zap.Int("sensor_id", sensor.ID), zap.String("publisher", name))
	}
}

// shouldUpdate drops a reading when the same sensor was already published for that timestamp.
func (r *Registry) shouldUpdate(reading model.TemperatureReading) bool {
	last, exists := r.published.Load(reading.SensorID)
	if exists && !reading.TimeStamp.After(last.(model.TemperatureReading).TimeStamp) {
		return false
	}
	if !exists {
		r.logger.Info("first reading of sensor", zap.Int("sensor_id", reading.SensorID), zap.Float64("value", reading.Value))
	}
	r.published.Store(reading.SensorID, reading)
	return true
}
