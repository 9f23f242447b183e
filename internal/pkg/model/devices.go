package model

import "time"

// Outlet is a 433MHz power outlet switched by sending one of two RF codes.
type Outlet struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	On          int    `json:"on" yaml:"on"`
	Off         int    `json:"off" yaml:"off"`
	Protocol    int    `json:"protocol" yaml:"protocol"`
	PulseLength int    `json:"pulseLength,omitempty" yaml:"pulseLength"`
	State       *int   `json:"state,omitempty" yaml:"-"`
}

type Shutter struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	CodeUp   int    `json:"codeUp" yaml:"codeUp"`
	CodeDown int    `json:"codeDown" yaml:"codeDown"`
	Protocol int    `json:"protocol" yaml:"protocol"`
}

// TemperatureSensor is a one-wire sensor, DeviceID is the w1 bus id (28-...).
type TemperatureSensor struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	DeviceID string `json:"deviceId" yaml:"deviceId"`
}

type SensorValue struct {
	TemperatureSensor
	CelsiusValue *float64 `json:"celsiusValue"`
}

type TemperatureReading struct {
	SensorID  int       `json:"sensorId"`
	TimeStamp time.Time `json:"time"`
	Value     float64   `json:"val"`
}

type TemperatureReadings []TemperatureReading
