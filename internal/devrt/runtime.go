package devrt

import (
	"errors"
	"io"
)

// DevPtr is an address-like token for device memory. Zero is the null pointer.
// A DevPtr must never be dereferenced on the host.
type DevPtr uintptr

// IsNil reports whether p is the null device pointer.
func (p DevPtr) IsNil() bool { return p == 0 }

// Runtime performs raw device memory operations. Every call is synchronous
// and reports its outcome as a Status. Implementations may be used from one
// goroutine at a time unless they document otherwise.
type Runtime interface {
	// Info describes the runtime and its device.
	Info() Info
	// Malloc reserves size bytes. Malloc(0) succeeds with the null pointer.
	Malloc(size uint64) (DevPtr, Status)
	// Free releases a pointer returned by Malloc. Free(0) succeeds.
	Free(p DevPtr) Status
	// MemcpyHtoD copies len(src) bytes from host memory to dst.
	MemcpyHtoD(dst DevPtr, src []byte) Status
	// MemcpyDtoH copies len(dst) bytes from src to host memory.
	MemcpyDtoH(dst []byte, src DevPtr) Status
}

// Info describes a runtime implementation and its device.
type Info struct {
	Name        string `json:"name"`
	Device      string `json:"device"`
	TotalBytes  uint64 `json:"total_bytes"`
	Description string `json:"description,omitempty"`
}

// Stats is a snapshot of runtime accounting.
type Stats struct {
	Allocations uint64 `json:"allocations"`
	Frees       uint64 `json:"frees"`
	Failures    uint64 `json:"failures"`
	LiveBuffers int    `json:"live_buffers"`
	BytesInUse  uint64 `json:"bytes_in_use"`
	PeakBytes   uint64 `json:"peak_bytes"`
	HtoDBytes   uint64 `json:"htod_bytes"`
	DtoHBytes   uint64 `json:"dtoh_bytes"`
	BudgetBytes uint64 `json:"budget_bytes"`
	MarginBytes uint64 `json:"margin_bytes"`
}

// StatsReporter is implemented by runtimes that keep accounting.
type StatsReporter interface {
	Stats() Stats
}

// StatsOf returns rt's accounting, looking through decorators that expose
// Unwrap. ok is false when no runtime in the chain keeps stats.
func StatsOf(rt Runtime) (Stats, bool) {
	for rt != nil {
		if sr, ok := rt.(StatsReporter); ok {
			return sr.Stats(), true
		}
		u, ok := rt.(interface{ Unwrap() Runtime })
		if !ok {
			break
		}
		rt = u.Unwrap()
	}
	return Stats{}, false
}

var (
	// ErrBackendUnavailable is returned when a runtime is not compiled in or
	// has no usable device.
	ErrBackendUnavailable = errors.New("devrt: backend unavailable")

	// ErrUnknownRuntime is returned by Open for an unrecognized name.
	ErrUnknownRuntime = errors.New("devrt: unknown runtime")
)

const mb = 1024 * 1024

// Close releases rt, or the first runtime under it that implements
// io.Closer. Runtimes without resources are left alone.
func Close(rt Runtime) error {
	for rt != nil {
		if c, ok := rt.(io.Closer); ok {
			return c.Close()
		}
		u, ok := rt.(interface{ Unwrap() Runtime })
		if !ok {
			return nil
		}
		rt = u.Unwrap()
	}
	return nil
}
