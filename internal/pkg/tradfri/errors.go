package tradfri

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedOperation = errors.New("operation not supported by the gateway")
	ErrDeviceNotFound       = errors.New("device not found")
	ErrGroupNotFound        = errors.New("group not found")
	ErrScheduleNotFound     = errors.New("schedule not found")
)

// TransportError is returned when the coap client command could not complete a request.
type TransportError struct {
	Method Method
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("coap %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type UnknownColorError struct {
	Color string
}

func (e *UnknownColorError) Error() string {
	return fmt.Sprintf("color %q not supported", e.Color)
}

type UnknownTimeUnitError struct {
	Unit TimeUnit
}

func (e *UnknownTimeUnitError) Error() string {
	return fmt.Sprintf("time unit %q not supported", string(e.Unit))
}

type UnknownSortFieldError struct {
	Field string
}

func (e *UnknownSortFieldError) Error() string {
	return fmt.Sprintf("cannot sort by %q", e.Field)
}

// IsNotFound reports whether err signals a gateway resource that does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDeviceNotFound) || errors.Is(err, ErrGroupNotFound) || errors.Is(err, ErrScheduleNotFound)
}

// IsInputError reports whether err was caused by caller input rather than the gateway.
func IsInputError(err error) bool {
	var colorErr *UnknownColorError
	var unitErr *UnknownTimeUnitError
	var sortErr *UnknownSortFieldError
	return errors.As(err, &colorErr) || errors.As(err, &unitErr) || errors.As(err, &sortErr) ||
		errors.Is(err, ErrUnsupportedOperation)
}
