package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

const (
	discoveryPrefix = "homeassistant/sensor"
	manufacturer    = "home-bridge"
)

// sensorSlug identifies a sensor in topics, e.g. "temperature-1-outside".
func sensorSlug(id int, name string) string {
	return slug.Make(fmt.Sprintf("temperature %d %s", id, name))
}

func (s *service) Write(_ context.Context, readings model.TemperatureReadings) error {
	for _, reading := range readings {
		if err := s.publishReading(reading); err != nil {
			return err
		}
	}
	return nil
}

// RegisterSensor publishes the retained Home Assistant discovery config once per sensor.
func (s *service) RegisterSensor(_ context.Context, sensor model.TemperatureSensor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.configuredSensors[sensor.ID]; exists {
		return nil
	}

	payload, err := json.Marshal(defaultRegisterMsg(sensor))
	if err != nil {
		return err
	}
	identifier := sensorSlug(sensor.ID, sensor.Name)
	topic := fmt.Sprintf("%s/%s/config", discoveryPrefix, identifier)
	if err := wait(s.client.Publish(topic, 1, true, payload)); err != nil {
		return err
	}
	s.configuredSensors[sensor.ID] = identifier
	s.logger.Info("registered sensor with home assistant", zap.Int("sensor_id", sensor.ID), zap.String("topic", topic))
	return nil
}

func (s *service) publishReading(reading model.TemperatureReading) error {
	s.mu.Lock()
	identifier, configured := s.configuredSensors[reading.SensorID]
	s.mu.Unlock()
	if !configured {
		s.logger.Debug("skipping reading of unregistered sensor", zap.Int("sensor_id", reading.SensorID))
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"value":     strconv.FormatFloat(reading.Value, 'f', 2, 64),
		"timestamp": reading.TimeStamp.UTC().Format("2006-01-02T15:04:05Z"),
	})
	if err != nil {
		return err
	}
	topic := fmt.Sprintf("%s/%s/state", discoveryPrefix, identifier)
	return wait(s.client.Publish(topic, 0, false, payload))
}

func wait(token paho_mqtt.Token) error {
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish timed out after %s", publishTimeout)
	}
	return token.Error()
}

func defaultRegisterMsg(sensor model.TemperatureSensor) model.RegisterMessage {
	identifier := sensorSlug(sensor.ID, sensor.Name)

	return model.RegisterMessage{
		Tilda:             fmt.Sprintf("%s/%s", discoveryPrefix, identifier),
		Name:              sensor.Name,
		ID:                identifier,
		StateTopic:        "~/state",
		DeviceClass:       "temperature",
		UnitOfMeasurement: "°C",
		ValueTemplate:     "{{ value_json.value }}",
		Device: model.RegisterDevice{
			Name:         sensor.Name,
			Identifiers:  []string{sensor.DeviceID},
			Model:        "DS18B20",
			Manufacturer: manufacturer,
		},
	}
}
