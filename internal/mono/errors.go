package mono

import (
	"errors"
	"fmt"
)

var ErrMissingToken = errors.New("MONO_TOKEN is not configured")

// UpstreamError is returned when the processor answers with anything but a
// well-formed 200. StatusCode is 0 when no response was received at all.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mono %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("mono %s failed with status %d", e.Op, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
