package tradfri

import "time"

type TimeUnit string

const (
	Hours        TimeUnit = "h"
	Minutes      TimeUnit = "m"
	Seconds      TimeUnit = "s"
	DeciSeconds  TimeUnit = "ds" // smallest unit the gateway understands
	MilliSeconds TimeUnit = "ms"
)

// Transition is an optional transition time sent along with brightness and colour changes.
type Transition struct {
	Value int
	Unit  TimeUnit
}

// NewTransition builds a transition, an empty unit defaults to seconds.
func NewTransition(value int, unit TimeUnit) *Transition {
	if unit == "" {
		unit = Seconds
	}
	return &Transition{Value: value, Unit: unit}
}

// TransitionFromDuration converts a duration to a millisecond based transition.
func TransitionFromDuration(d time.Duration) *Transition {
	return &Transition{Value: int(d.Milliseconds()), Unit: MilliSeconds}
}

// ConvertTransitionTime converts value in unit to deci-seconds.
func ConvertTransitionTime(value int, unit TimeUnit) (int, error) {
	switch unit {
	case Hours:
		return value * 36000, nil
	case Minutes:
		return value * 600, nil
	case Seconds:
		return value * 10, nil
	case DeciSeconds:
		return value, nil
	case MilliSeconds:
		return roundDiv(value, 100), nil
	default:
		return 0, &UnknownTimeUnitError{Unit: unit}
	}
}

// roundDiv divides rounding halves away from zero.
func roundDiv(value, divisor int) int {
	if value < 0 {
		return -((-value + divisor/2) / divisor)
	}
	return (value + divisor/2) / divisor
}

// deciSeconds returns nil for a missing or zero transition.
func (t *Transition) deciSeconds() (*int, error) {
	if t == nil || t.Value == 0 {
		return nil, nil
	}
	ds, err := ConvertTransitionTime(t.Value, t.Unit)
	if err != nil {
		return nil, err
	}
	return &ds, nil
}
