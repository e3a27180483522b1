package devmem

import (
	"errors"
	"fmt"

	"devmem/internal/devrt"
)

// Operation names carried by RuntimeError.
const (
	OpAllocate = "allocate"
	OpFree     = "free"
	OpHtoD     = "copy_host_to_device"
	OpDtoH     = "copy_device_to_host"
)

// RuntimeError reports a device runtime call that did not succeed. It is the
// only error category produced by this package.
type RuntimeError struct {
	Op     string
	Status devrt.Status
	// Bytes is the transfer or allocation size involved, when known.
	Bytes uint64
	// Detail adds context for argument errors detected before the runtime call.
	Detail string
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("devmem: %s failed: %s (status %d)", e.Op, e.Status, int(e.Status))
	if e.Bytes > 0 {
		msg += fmt.Sprintf(", %d bytes", e.Bytes)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// Unwrap exposes the runtime Status so errors.Is(err, devrt.StatusMemoryAllocation) works.
func (e *RuntimeError) Unwrap() error { return e.Status }

// IsRuntimeFailure reports whether err is, or wraps, a RuntimeError.
func IsRuntimeFailure(err error) bool {
	var re *RuntimeError
	return errors.As(err, &re)
}

// StatusOf extracts the runtime status from err. ok is false when err is not
// a RuntimeError.
func StatusOf(err error) (devrt.Status, bool) {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Status, true
	}
	return devrt.StatusSuccess, false
}

func invalidValue(op, detail string) error {
	return &RuntimeError{Op: op, Status: devrt.StatusInvalidValue, Detail: detail}
}
