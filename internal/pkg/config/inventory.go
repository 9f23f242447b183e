package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

// Inventory lists the devices and automations of a home, read from the yaml config file.
type Inventory struct {
	Users              []User                    `yaml:"users"`
	Outlets            []model.Outlet            `yaml:"outlets"`
	Shutters           []model.Shutter           `yaml:"shutters"`
	TemperatureSensors []model.TemperatureSensor `yaml:"temperatureSensors"`
	RFButtons          []RFButton                `yaml:"rfButtons"`
	WindowSensors      []WindowSensor            `yaml:"windowSensors"`
	DashButtons        []DashButton              `yaml:"dashButtons"`
	CronJobs           []CronJob                 `yaml:"cronJobs"`
}

// User is an API user, KeyHash is the bcrypt hash printed by the keygen command.
type User struct {
	Name    string `yaml:"name"`
	KeyHash string `yaml:"keyHash"`
}

type RFButton struct {
	Name   string `yaml:"name"`
	Code   int    `yaml:"code"`
	Action string `yaml:"action"`
}

type WindowSensor struct {
	Name         string `yaml:"name"`
	CodeOpened   int    `yaml:"codeOpened"`
	CodeClosed   int    `yaml:"codeClosed"`
	ActionOpened string `yaml:"actionOpened"`
	ActionClosed string `yaml:"actionClosed"`
}

type DashButton struct {
	Label      string `yaml:"label"`
	MacAddress string `yaml:"macAddress"`
	Action     string `yaml:"action"`
}

type CronJob struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"`
	Action   string `yaml:"action"`
}

// LoadInventory reads the inventory file. A missing file yields an empty inventory.
func LoadInventory(path string) (*Inventory, error) {
	inv := &Inventory{}
	if path == "" {
		return inv, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return inv, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, inv); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return inv, nil
}

// Validate rejects duplicate ids and incomplete entries.
func (inv *Inventory) Validate() error {
	var errs []error
	errs = append(errs, uniqueIDs("outlet", inv.Outlets, func(o model.Outlet) int { return o.ID })...)
	errs = append(errs, uniqueIDs("shutter", inv.Shutters, func(s model.Shutter) int { return s.ID })...)
	errs = append(errs, uniqueIDs("temperature sensor", inv.TemperatureSensors, func(s model.TemperatureSensor) int { return s.ID })...)
	for _, u := range inv.Users {
		if u.Name == "" || u.KeyHash == "" {
			errs = append(errs, fmt.Errorf("user %q needs a name and a keyHash", u.Name))
		}
	}
	for _, s := range inv.TemperatureSensors {
		if s.DeviceID == "" {
			errs = append(errs, fmt.Errorf("temperature sensor %d has no deviceId", s.ID))
		}
	}
	for _, j := range inv.CronJobs {
		if j.Schedule == "" || j.Action == "" {
			errs = append(errs, fmt.Errorf("cron job %q needs a schedule and an action", j.Name))
		}
	}
	return errors.Join(errs...)
}

func uniqueIDs[T any](kind string, items []T, id func(T) int) []error {
	var errs []error
	seen := map[int]bool{}
	for _, item := range items {
		if seen[id(item)] {
			errs = append(errs, fmt.Errorf("duplicate %s id %d", kind, id(item)))
		}
		seen[id(item)] = true
	}
	return errs
}
