package video

import (
	"errors"
	"fmt"
)

// Error taxonomy of the command pipeline.
var (
	// ErrValidation is returned when resource parameters or payload data are
	// malformed. The call is rejected before any state is mutated.
	ErrValidation = errors.New("video: validation failed")

	// ErrHandleInvalid is returned when an operation references an unknown,
	// freed, stale or not yet committed handle.
	ErrHandleInvalid = errors.New("video: invalid handle")

	// ErrCapacityExceeded is returned when the front frame's command list or
	// payload arena is full. It signals misconfiguration and is not retried.
	ErrCapacityExceeded = errors.New("video: frame capacity exceeded")

	// ErrBackend is matched by every BackendError.
	ErrBackend = errors.New("video: backend failure")
)

// BackendError wraps a failure reported by the Visitor while dispatching
// a frame.
type BackendError struct {
	// Command is the command being dispatched when the backend failed.
	// CmdBegin and CmdEnd identify failures outside of a command, and
	// CmdResize a failed Visitor.Resize.
	Command CommandType

	// Err is the error returned by the backend.
	Err error
}

// Error implements error.
func (e *BackendError) Error() string {
	return fmt.Sprintf("video: backend failed on %s: %v", e.Command, e.Err)
}

// Unwrap returns the backend error.
func (e *BackendError) Unwrap() error { return e.Err }

// Is reports whether target is ErrBackend.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// validationErrorf wraps ErrValidation with a formatted reason.
func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// invalidHandle wraps ErrHandleInvalid with the offending handle.
func invalidHandle(kind string, h Handle) error {
	return fmt.Errorf("%w: %s %v", ErrHandleInvalid, kind, h)
}
