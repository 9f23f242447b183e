package temperature

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

var ErrSensorNotFound = errors.New("temperature sensor not found")

// DefaultHistoryStart is used when a history request has no lower bound.
var DefaultHistoryStart = time.Unix(1500000000, 0).UTC()

type HistoryStore interface {
	ReadTemperatureHistory(ctx context.Context, sensorID int, from, until time.Time) (model.TemperatureReadings, error)
}

type Sensors struct {
	reader  *Reader
	history HistoryStore
	sensors []model.TemperatureSensor
	logger  *zap.Logger
	now     func() time.Time
}

func NewSensors(reader *Reader, history HistoryStore, sensors []model.TemperatureSensor) *Sensors {
	return &Sensors{
		reader:  reader,
		history: history,
		sensors: sensors,
		logger:  zap.L(),
		now:     time.Now,
	}
}

func (s *Sensors) Configured() []model.TemperatureSensor {
	return s.sensors
}

// List reads all sensors concurrently. Unreadable sensors are reported without a value.
func (s *Sensors) List(ctx context.Context) []model.SensorValue {
	values := make([]model.SensorValue, len(s.sensors))
	var eg errgroup.Group
	for i, sensor := range s.sensors {
		eg.Go(func() error {
			values[i] = s.read(sensor)
			return nil
		})
	}
	_ = eg.Wait()
	return values
}

func (s *Sensors) Get(_ context.Context, id int) (model.SensorValue, error) {
	sensor, ok := lo.Find(s.sensors, func(sensor model.TemperatureSensor) bool { return sensor.ID == id })
	if !ok {
		return model.SensorValue{}, fmt.Errorf("%w: %d", ErrSensorNotFound, id)
	}
	return s.read(sensor), nil
}

// History returns the stored readings of a sensor. Zero bounds default to DefaultHistoryStart and now.
func (s *Sensors) History(ctx context.Context, id int, from, until time.Time) (model.TemperatureReadings, error) {
	if !lo.ContainsBy(s.sensors, func(sensor model.TemperatureSensor) bool { return sensor.ID == id }) {
		return nil, fmt.Errorf("%w: %d", ErrSensorNotFound, id)
	}
	if s.history == nil {
		return model.TemperatureReadings{}, nil
	}
	if from.IsZero() {
		from = DefaultHistoryStart
	}
	if until.IsZero() {
		until = s.now()
	}
	return s.history.ReadTemperatureHistory(ctx, id, from, until)
}

func (s *Sensors) read(sensor model.TemperatureSensor) model.SensorValue {
	value, err := s.reader.Read(sensor.DeviceID)
	if err != nil {
		s.logger.Warn("failed to read temperature sensor", zap.Int("sensor_id", sensor.ID), zap.String("device_id", sensor.DeviceID), zap.Error(err))
	}
	return model.SensorValue{TemperatureSensor: sensor, CelsiusValue: value}
}
