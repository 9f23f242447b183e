package tradfri

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupColor(t *testing.T) {
	tests := []struct {
		name    string
		hex     string
		hsxy    *HueSatXY
		wantErr bool
	}{
		{name: "warm", hex: "efd275"},
		{name: "kalt", hex: "f5faf6"},
		{name: "red", hsxy: &HueSatXY{63828, 65279, 41084, 21159}},
		{name: "grün", hsxy: &HueSatXY{20673, 65279, 19659, 39108}},
		{name: "gruen", hsxy: &HueSatXY{20673, 65279, 19659, 39108}},
		{name: "lila", hsxy: &HueSatXY{49141, 65279, 13353, 5879}},
		{name: "coolDaylight", hsxy: &HueSatXY{34061, 7299, 20480, 21186}},
		{name: "mauve", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := LookupColor(tt.name)
			if tt.wantErr {
				var colorErr *UnknownColorError
				require.ErrorAs(t, err, &colorErr)
				assert.True(t, IsInputError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hex, spec.Hex)
			assert.Equal(t, tt.hsxy, spec.HSXY)
			assert.Equal(t, tt.hsxy == nil, spec.IsTemperature())
		})
	}
}

func TestDecodeColor(t *testing.T) {
	assert.Equal(t, "neutral", DecodeColor(ColorFields{Hex: "f1e0b5"}))
	assert.Equal(t, "blue", DecodeColor(ColorFields{Hex: "4a418a"}))
	assert.Equal(t, "orange", DecodeColor(ColorFields{Hex: "0", HSXY: &HueSatXY{4137, 65279, 42596, 26189}}))
	assert.Equal(t, "", DecodeColor(ColorFields{Hex: "123456"}))
	assert.Equal(t, "", DecodeColor(ColorFields{HSXY: &HueSatXY{4138, 65279, 42596, 26189}}))
	assert.Equal(t, "", DecodeColor(ColorFields{}))
}

func TestDecodeColor_RoundTrip(t *testing.T) {
	for _, name := range ColorNames() {
		spec, err := LookupColor(name)
		require.NoError(t, err)
		assert.Equal(t, name, DecodeColor(ColorFields{Hex: spec.Hex, HSXY: spec.HSXY}))
	}
}

func TestColorPicker_RandomNeverRepeats(t *testing.T) {
	picker := newColorPicker(rand.New(rand.NewPCG(1, 2)))

	previous := ""
	for range 200 {
		spec, err := picker.resolve("random")
		require.NoError(t, err)
		require.False(t, spec.IsTemperature())
		assert.NotEqual(t, previous, spec.Name)
		previous = spec.Name
	}

	spec, err := picker.resolve("zufall")
	require.NoError(t, err)
	assert.NotEqual(t, previous, spec.Name)
}

func TestColorPicker_InstancesAreIndependent(t *testing.T) {
	a := newColorPicker(rand.New(rand.NewPCG(7, 7)))
	b := newColorPicker(rand.New(rand.NewPCG(7, 7)))

	first := a.random()
	assert.Equal(t, first, b.random())
	assert.Equal(t, first, b.lastRandom)
	assert.Equal(t, first, a.lastRandom)
}
