package temperature

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

const timestampResolution = 10 * time.Second

type Publisher interface {
	Publish(ctx context.Context, readings model.TemperatureReadings) int
}

// Recorder takes a reading of every sensor and hands the batch to the publishers.
type Recorder struct {
	sensors   *Sensors
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewRecorder(sensors *Sensors, publisher Publisher) *Recorder {
	return &Recorder{
		sensors:   sensors,
		publisher: publisher,
		logger:    zap.L(),
		now:       time.Now,
	}
}

// Record reads all sensors once. All readings of a batch share one timestamp,
// truncated to ten seconds. Sensors without a value are skipped.
func (r *Recorder) Record(ctx context.Context) model.TemperatureReadings {
	ts := r.now().UTC().Truncate(timestampResolution)
	readings := model.TemperatureReadings{}
	for _, value := range r.sensors.List(ctx) {
		if value.CelsiusValue == nil {
			r.logger.Warn("no temperature reading", zap.Int("sensor_id", value.ID))
			continue
		}
		readings = append(readings, model.TemperatureReading{SensorID: value.ID, TimeStamp: ts, Value: *value.CelsiusValue})
	}
	if len(readings) > 0 {
		count := r.publisher.Publish(ctx, readings)
		r.logger.Info("recorded temperatures", zap.Int("count", count))
	}
	return readings
}
