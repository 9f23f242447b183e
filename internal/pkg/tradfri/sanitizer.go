package tradfri

import (
	"fmt"
	"time"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

// Gateway payload keys.
const (
	keyDeviceInfo   = "3"
	keyLight        = "3311"
	keyColorHex     = "5706"
	keyHue          = "5707"
	keySaturation   = "5708"
	keyColorX       = "5709"
	keyColorY       = "5710"
	keyTransition   = "5712"
	keyDeviceType   = "5750"
	keyState        = "5850"
	keyBrightness   = "5851"
	keyName         = "9001"
	keyCreatedAt    = "9002"
	keyID           = "9003"
	keyNotifyState  = "9014"
	keyNotifyEvent  = "9015"
	pathModel       = keyDeviceInfo + ".1"
	pathFirmware    = keyDeviceInfo + ".3"
	pathVendor      = keyDeviceInfo + ".0"
	pathLight       = keyLight + ".0."
	pathGroupMember = "9018.15002.9003"
)

const (
	modelRemote = "TRADFRI remote control"
	modelDimmer = "TRADFRI wireless dimmer"
)

var deviceTypes = map[int]model.DeviceType{
	0: model.DeviceTypeSwitch,
	2: model.DeviceTypeBulb,
	3: model.DeviceTypePlug,
	4: model.DeviceTypeMotionSensor,
}

var notificationTypes = map[int]string{
	1001: "NEW_FIRMWARE_AVAILABLE",
	1003: "GATEWAY_REBOOT_NOTIFICATION",
	1004: "UNKNOWN_EVENT_1004",
	1005: "UNKNOWN_EVENT_1005",
	5001: "LOSS_OF_INTERNET_CONNECTIVITY",
}

// SanitizeDevice maps a raw device payload to a Device.
func SanitizeDevice(raw map[string]any, includeRaw bool) model.Device {
	device := model.Device{
		Type:         deviceType(raw),
		Name:         lookupString(raw, keyName),
		Model:        lookupString(raw, pathModel),
		Firmware:     lookupString(raw, pathFirmware),
		Manufacturer: lookupString(raw, pathVendor),
	}
	device.ID, _ = lookupInt(raw, keyID)

	switch device.Type {
	case model.DeviceTypeBulb:
		device.State = lookupIntPtr(raw, pathLight+keyState)
		device.Brightness = lookupIntPtr(raw, pathLight+keyBrightness)
		device.BulbType = bulbType(raw)
		device.Color = DecodeColor(colorFields(raw))
	case model.DeviceTypeSwitch:
		device.SubType = switchType(device.Model)
	}

	if includeRaw {
		device.Raw = raw
	}
	return device
}

func deviceType(raw map[string]any) model.DeviceType {
	code, ok := lookupInt(raw, keyDeviceType)
	if !ok {
		return model.DeviceTypeUnknown
	}
	if t, ok := deviceTypes[code]; ok {
		return t
	}
	return model.DeviceTypeUnknown
}

// bulbType is derived from the colour fields present, the model string is not reliable.
func bulbType(raw map[string]any) model.BulbType {
	if _, ok := lookup(raw, pathLight+keyHue); ok {
		return model.BulbTypeRGB
	}
	if _, ok := lookup(raw, pathLight+keyColorHex); ok {
		return model.BulbTypeWhiteSpectrum
	}
	return model.BulbTypeWhite
}

func switchType(deviceModel string) model.SwitchType {
	switch deviceModel {
	case modelRemote:
		return model.SwitchTypeRemote
	case modelDimmer:
		return model.SwitchTypeDimmer
	}
	return ""
}

func colorFields(raw map[string]any) ColorFields {
	fields := ColorFields{Hex: lookupString(raw, pathLight+keyColorHex)}
	hue, ok := lookupInt(raw, pathLight+keyHue)
	if !ok || hue == 0 {
		return fields
	}
	fields.HSXY = &HueSatXY{Hue: hue}
	fields.HSXY.Saturation, _ = lookupInt(raw, pathLight+keySaturation)
	fields.HSXY.ColorX, _ = lookupInt(raw, pathLight+keyColorX)
	fields.HSXY.ColorY, _ = lookupInt(raw, pathLight+keyColorY)
	return fields
}

// SanitizeGroup maps a raw group payload to a Group. Missing members yield an empty list.
func SanitizeGroup(raw map[string]any, includeRaw bool) model.Group {
	group := model.Group{
		Name:      lookupString(raw, keyName),
		DeviceIDs: lookupIntSlice(raw, pathGroupMember),
	}
	group.ID, _ = lookupInt(raw, keyID)
	if includeRaw {
		group.Raw = raw
	}
	return group
}

// SanitizeNotification maps a raw notification payload. Unknown event codes are labelled, not rejected.
func SanitizeNotification(raw map[string]any, includeRaw bool) model.Notification {
	notification := model.Notification{}
	if ts, ok := lookupInt(raw, keyCreatedAt); ok {
		notification.Time = time.Unix(int64(ts), 0).UTC()
	}
	notification.State, _ = lookupInt(raw, keyNotifyState)

	event, _ := lookupInt(raw, keyNotifyEvent)
	if name, ok := notificationTypes[event]; ok {
		notification.Type = name
	} else {
		notification.Type = fmt.Sprintf("UNKNOWN_EVENT_%d", event)
	}

	if includeRaw {
		notification.Raw = raw
	}
	return notification
}
