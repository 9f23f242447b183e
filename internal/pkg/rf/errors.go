package rf

import (
	"errors"
	"fmt"
)

var (
	ErrOutletNotFound  = errors.New("outlet not found")
	ErrShutterNotFound = errors.New("shutter not found")
)

// SendError is returned when the codesend command failed.
type SendError struct {
	Code int
	Err  error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send rf code %d: %v", e.Code, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}
