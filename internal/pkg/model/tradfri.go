package model

import "time"

type DeviceType string

const (
	DeviceTypeBulb         DeviceType = "bulb"
	DeviceTypeSwitch       DeviceType = "switch"
	DeviceTypePlug         DeviceType = "plug"
	DeviceTypeMotionSensor DeviceType = "motionSensor"
	DeviceTypeUnknown      DeviceType = "unknown"
)

func (t DeviceType) String() string {
	return string(t)
}

type BulbType string

const (
	BulbTypeRGB           BulbType = "rgb"
	BulbTypeWhiteSpectrum BulbType = "white-spectrum"
	BulbTypeWhite         BulbType = "white"
)

type SwitchType string

const (
	SwitchTypeRemote SwitchType = "remote"
	SwitchTypeDimmer SwitchType = "dimmer"
)

// Device is the sanitized form of a gateway device payload.
// Bulb and switch specific fields are only set for the matching Type.
type Device struct {
	ID           int            `json:"id"`
	Type         DeviceType     `json:"type"`
	Name         string         `json:"name"`
	Model        string         `json:"model"`
	Firmware     string         `json:"firmware"`
	Manufacturer string         `json:"manufacturer"`
	State        *int           `json:"state,omitempty"`
	Brightness   *int           `json:"brightness,omitempty"`
	BulbType     BulbType       `json:"bulbType,omitempty"`
	Color        string         `json:"color,omitempty"`
	SubType      SwitchType     `json:"subType,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
}

func (d Device) IsBulb() bool {
	return d.Type == DeviceTypeBulb
}

type Group struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	DeviceIDs []int          `json:"deviceIds"`
	Raw       map[string]any `json:"raw,omitempty"`
}

// Schedule is a gateway timer, passed through as returned by the gateway.
type Schedule map[string]any

type Notification struct {
	Time  time.Time      `json:"time"`
	State int            `json:"state"`
	Type  string         `json:"type"`
	Raw   map[string]any `json:"raw,omitempty"`
}

// GatewayDetails is the unmodified gateway info payload.
type GatewayDetails map[string]any

// DevicePatch carries the optional changes of a composite device update.
type DevicePatch struct {
	State      *int    `json:"state,omitempty"`
	Brightness *int    `json:"brightness,omitempty"`
	Color      *string `json:"color,omitempty"`
	Name       *string `json:"name,omitempty"`
}
