package tradfri

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anicoll/home-bridge/internal/pkg/model"
)

func decodeRaw(t *testing.T, payload string) map[string]any {
	t.Helper()
	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestSanitizeDevice(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    model.Device
	}{
		{
			name:    "rgb bulb",
			payload: rgbBulbPayload,
			want: model.Device{
				ID:           65537,
				Type:         model.DeviceTypeBulb,
				Name:         "Living room",
				Model:        "TRADFRI bulb E27 CWS opal 600lm",
				Firmware:     "1.3.002",
				Manufacturer: "IKEA of Sweden",
				State:        intPtr(1),
				Brightness:   intPtr(254),
				BulbType:     model.BulbTypeRGB,
				Color:        "red",
			},
		},
		{
			name:    "white spectrum bulb",
			payload: spectrumBulbPayload,
			want: model.Device{
				ID:           65538,
				Type:         model.DeviceTypeBulb,
				Name:         "Kitchen",
				Model:        "TRADFRI bulb GU10 WS 400lm",
				Firmware:     "1.2.217",
				Manufacturer: "IKEA of Sweden",
				State:        intPtr(0),
				Brightness:   intPtr(100),
				BulbType:     model.BulbTypeWhiteSpectrum,
				Color:        "warm",
			},
		},
		{
			name:    "white bulb",
			payload: `{"3311":[{"5850":1,"5851":12}],"5750":2,"9003":7}`,
			want: model.Device{
				ID:         7,
				Type:       model.DeviceTypeBulb,
				State:      intPtr(1),
				Brightness: intPtr(12),
				BulbType:   model.BulbTypeWhite,
			},
		},
		{
			name:    "remote",
			payload: remotePayload,
			want: model.Device{
				ID:           65536,
				Type:         model.DeviceTypeSwitch,
				Name:         "Remote",
				Model:        "TRADFRI remote control",
				Firmware:     "1.2.214",
				Manufacturer: "IKEA of Sweden",
				SubType:      model.SwitchTypeRemote,
			},
		},
		{
			name:    "unknown type code",
			payload: `{"5750":42,"9003":9,"9001":"New thing"}`,
			want:    model.Device{ID: 9, Type: model.DeviceTypeUnknown, Name: "New thing"},
		},
		{
			name:    "bulb without light fields",
			payload: `{"5750":2,"9003":10}`,
			want:    model.Device{ID: 10, Type: model.DeviceTypeBulb, BulbType: model.BulbTypeWhite},
		},
		{
			name:    "unknown rgb quadruple",
			payload: `{"3311":[{"5707":1,"5708":2,"5709":3,"5710":4,"5850":1}],"5750":2,"9003":11}`,
			want:    model.Device{ID: 11, Type: model.DeviceTypeBulb, State: intPtr(1), BulbType: model.BulbTypeRGB},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SanitizeDevice(decodeRaw(t, tt.payload), false)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeDevice_RawPassthrough(t *testing.T) {
	raw := decodeRaw(t, remotePayload)

	assert.Equal(t, raw, SanitizeDevice(raw, true).Raw)
	assert.Nil(t, SanitizeDevice(raw, false).Raw)
}

func TestSanitizeDevice_EmptyPayload(t *testing.T) {
	assert.NotPanics(t, func() {
		device := SanitizeDevice(map[string]any{}, false)
		assert.Equal(t, model.DeviceTypeUnknown, device.Type)
	})
}

func TestSanitizeGroup(t *testing.T) {
	group := SanitizeGroup(decodeRaw(t, groupPayload), false)
	assert.Equal(t, model.Group{ID: 131073, Name: "Downstairs", DeviceIDs: []int{65536, 65537, 65538}}, group)

	empty := SanitizeGroup(decodeRaw(t, `{"9001":"Empty","9003":131074}`), false)
	assert.Equal(t, []int{}, empty.DeviceIDs)
}

func TestSanitizeNotification(t *testing.T) {
	known := SanitizeNotification(decodeRaw(t, `{"9002":1500000000,"9014":0,"9015":1001}`), false)
	assert.Equal(t, "NEW_FIRMWARE_AVAILABLE", known.Type)
	assert.Equal(t, time.Unix(1500000000, 0).UTC(), known.Time)
	assert.Equal(t, 0, known.State)

	unknown := SanitizeNotification(decodeRaw(t, `{"9002":1500000000,"9014":1,"9015":7777}`), true)
	assert.Equal(t, "UNKNOWN_EVENT_7777", unknown.Type)
	assert.Equal(t, 1, unknown.State)
	assert.NotNil(t, unknown.Raw)
}

func TestLookup(t *testing.T) {
	raw := decodeRaw(t, rgbBulbPayload)

	v, ok := lookupInt(raw, "3311.0.5851")
	assert.True(t, ok)
	assert.Equal(t, 254, v)

	_, ok = lookup(raw, "3311.1.5851")
	assert.False(t, ok)
	_, ok = lookup(raw, "9001.0")
	assert.False(t, ok)
	_, ok = lookup(raw, "missing.path")
	assert.False(t, ok)
	assert.Equal(t, "", lookupString(raw, "3.9"))
}

func intPtr(v int) *int {
	return &v
}
