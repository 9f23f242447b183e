package tradfri

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTransitionTime(t *testing.T) {
	tests := []struct {
		value int
		unit  TimeUnit
		want  int
	}{
		{1, Hours, 36000},
		{2, Minutes, 1200},
		{5, Seconds, 50},
		{7, DeciSeconds, 7},
		{250, MilliSeconds, 3},
		{149, MilliSeconds, 1},
		{150, MilliSeconds, 2},
		{40, MilliSeconds, 0},
		{0, Seconds, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.unit), func(t *testing.T) {
			got, err := ConvertTransitionTime(tt.value, tt.unit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertTransitionTime_UnknownUnit(t *testing.T) {
	_, err := ConvertTransitionTime(1, "d")

	var unitErr *UnknownTimeUnitError
	require.ErrorAs(t, err, &unitErr)
	assert.Equal(t, TimeUnit("d"), unitErr.Unit)
	assert.True(t, IsInputError(err))
}

func TestTransition_DeciSeconds(t *testing.T) {
	var missing *Transition
	ds, err := missing.deciSeconds()
	require.NoError(t, err)
	assert.Nil(t, ds)

	ds, err = NewTransition(0, "").deciSeconds()
	require.NoError(t, err)
	assert.Nil(t, ds)

	ds, err = NewTransition(3, "").deciSeconds()
	require.NoError(t, err)
	assert.Equal(t, 30, *ds)

	ds, err = TransitionFromDuration(1500 * time.Millisecond).deciSeconds()
	require.NoError(t, err)
	assert.Equal(t, 15, *ds)
}
