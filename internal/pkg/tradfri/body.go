package tradfri

import "encoding/json"

// lightSetting holds the writable light fields. Field order matches the
// ascending key order the gateway tooling produces.
type lightSetting struct {
	ColorHex   *string `json:"5706,omitempty"`
	Hue        *int    `json:"5707,omitempty"`
	Saturation *int    `json:"5708,omitempty"`
	ColorX     *int    `json:"5709,omitempty"`
	ColorY     *int    `json:"5710,omitempty"`
	Transition *int    `json:"5712,omitempty"`
	State      *int    `json:"5850,omitempty"`
	Brightness *int    `json:"5851,omitempty"`
}

// deviceBody wraps a light setting the way single devices expect it.
type deviceBody struct {
	Light []lightSetting `json:"3311"`
}

type nameBody struct {
	Name string `json:"9001"`
}

func newDeviceBody(setting lightSetting) ([]byte, error) {
	return json.Marshal(deviceBody{Light: []lightSetting{setting}})
}

func newGroupBody(setting lightSetting) ([]byte, error) {
	return json.Marshal(setting)
}

func stateSetting(state int) lightSetting {
	return lightSetting{State: &state}
}

func brightnessSetting(brightness int, transition *Transition) (lightSetting, error) {
	ds, err := transition.deciSeconds()
	if err != nil {
		return lightSetting{}, err
	}
	return lightSetting{Brightness: &brightness, Transition: ds}, nil
}

func colorSetting(color ColorSpec, transition *Transition) (lightSetting, error) {
	ds, err := transition.deciSeconds()
	if err != nil {
		return lightSetting{}, err
	}
	setting := lightSetting{Transition: ds}
	if color.IsTemperature() {
		hex := color.Hex
		setting.ColorHex = &hex
		return setting, nil
	}
	hsxy := *color.HSXY
	setting.Hue = &hsxy.Hue
	setting.Saturation = &hsxy.Saturation
	setting.ColorX = &hsxy.ColorX
	setting.ColorY = &hsxy.ColorY
	return setting, nil
}
