package dekoi

import (
	"fmt"
	"runtime"

	"github.com/cockroachdb/errors"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// Status classifies every error returned by the renderer.
type Status int

const (
	StatusSuccess Status = iota
	StatusError
	StatusInvalidValue
	StatusAllocation
	StatusNotAvailable
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	case StatusInvalidValue:
		return "invalid value"
	case StatusAllocation:
		return "allocation failure"
	case StatusNotAvailable:
		return "not available"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

var (
	// ErrError is a generic back-end failure: unsupported layer or
	// extension, no suitable device, device or surface lost, failed object
	// construction.
	ErrError = errors.New("dekoi: error")
	// ErrInvalidValue reports malformed creation parameters.
	ErrInvalidValue = errors.New("dekoi: invalid value")
	// ErrAllocation reports host memory exhaustion.
	ErrAllocation = errors.New("dekoi: allocation failure")
	// ErrNotAvailable reports a missing memory type, present mode, image
	// usage or surface format, or a frame that could not be acquired yet.
	ErrNotAvailable = errors.New("dekoi: not available")
)

var statusSentinels = [...]struct {
	status Status
	err    error
}{
	{StatusInvalidValue, ErrInvalidValue},
	{StatusAllocation, ErrAllocation},
	{StatusNotAvailable, ErrNotAvailable},
	{StatusError, ErrError},
}

// StatusOf returns the status err is marked with. Unmarked non-nil errors
// are reported as StatusError.
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	for _, s := range statusSentinels {
		if errors.Is(err, s.err) {
			return s.status
		}
	}
	return StatusError
}

func sentinel(status Status) error {
	for _, s := range statusSentinels {
		if s.status == status {
			return s.err
		}
	}
	return ErrError
}

// markUnclassified marks err with ErrError unless it already carries a
// status. A native result keeps the status it maps to.
func markUnclassified(err error) error {
	for _, s := range statusSentinels {
		if errors.Is(err, s.err) {
			return err
		}
	}
	var res gpu.Result
	if errors.As(err, &res) {
		return withStatus(err, statusForResult(res))
	}
	return withStatus(err, StatusError)
}

// statusError carries a status sentinel in a way both the standard library
// and cockroachdb errors.Is recognize.
type statusError struct {
	cause    error
	sentinel error
}

func (e *statusError) Error() string { return e.cause.Error() }

func (e *statusError) Unwrap() error { return e.cause }

func (e *statusError) Is(target error) bool { return target == e.sentinel }

func (e *statusError) Format(s fmt.State, verb rune) { errors.FormatError(e, s, verb) }

// withStatus marks err with the sentinel of status.
func withStatus(err error, status Status) error {
	s := sentinel(status)
	return &statusError{cause: errors.Mark(err, s), sentinel: s}
}

// newError builds an error marked with status.
func newError(status Status, format string, args ...any) error {
	return withStatus(errors.Newf(format, args...), status)
}

// statusForResult is the default mapping of native results. Call sites with
// their own taxonomy (image acquisition) handle their codes first.
func statusForResult(res gpu.Result) Status {
	switch res {
	case gpu.Success:
		return StatusSuccess
	case gpu.ErrorOutOfHostMemory:
		return StatusAllocation
	}
	return StatusError
}

// resultError wraps a failed native call, recording where it was observed.
func resultError(res gpu.Result, format string, args ...any) error {
	if res == gpu.Success {
		return nil
	}
	return wrapResult(statusForResult(res), res, format, args...)
}

// resultErrorAs is resultError with an explicit status.
func resultErrorAs(status Status, res gpu.Result, format string, args ...any) error {
	return wrapResult(status, res, format, args...)
}

func wrapResult(status Status, res gpu.Result, format string, args ...any) error {
	err := errors.Wrapf(res, format, args...)
	if _, file, line, ok := runtime.Caller(2); ok {
		err = errors.WithDetailf(err, "observed at %s:%d", file, line)
	}
	return withStatus(err, status)
}
