package types

// ProbeRequest asks the daemon to run a device workload.
type ProbeRequest struct {
	// Probe kind: roundtrip or grow.
	// example: roundtrip
	Kind string `json:"kind" example:"roundtrip"`
	// Element type; defaults to float32.
	// example: float32
	DType string `json:"dtype,omitempty" example:"float32"`
	// Element count for a roundtrip probe.
	// example: 1048576
	Elems int `json:"elems,omitempty" example:"1048576"`
	// Requested sizes, in elements, for a grow probe.
	// example: [1024,512,4096,4096]
	Sizes []int `json:"sizes,omitempty" example:"1024,512,4096,4096"`
}

// ProbeResponse reports the outcome of a probe.
type ProbeResponse struct {
	// Operation identifier assigned by the daemon.
	// example: probe-7
	ID string `json:"id" example:"probe-7"`
	// Probe kind that ran.
	// example: roundtrip
	Kind string `json:"kind" example:"roundtrip"`
	// Element type used.
	// example: float32
	DType string `json:"dtype" example:"float32"`
	// Name of the device runtime.
	// example: host
	Runtime string `json:"runtime" example:"host"`
	// Elements transferred in each direction (roundtrip) or the final request (grow).
	// example: 1048576
	Elems int `json:"elems" example:"1048576"`
	// Bytes moved host to device plus device to host.
	// example: 8388608
	BytesCopied uint64 `json:"bytes_copied" example:"8388608"`
	// Device allocations performed while the probe ran.
	// example: 2
	Allocations int `json:"allocations" example:"2"`
	// Device frees performed while the probe ran, including final release.
	// example: 2
	Frees int `json:"frees" example:"2"`
	// Internal capacity of the handle, in elements, before release.
	// example: 4096
	Capacity int `json:"capacity" example:"4096"`
	// True when every downloaded element matched what was uploaded.
	// example: true
	Verified bool `json:"verified" example:"true"`
	// Number of mismatched elements (roundtrip only).
	// example: 0
	Mismatches int `json:"mismatches" example:"0"`
	// Wall time of the device work in milliseconds.
	// example: 3
	DurationMS int64 `json:"duration_ms" example:"3"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// RuntimeStatus describes the device runtime in use.
type RuntimeStatus struct {
	// example: host
	Name string `json:"name" example:"host"`
	// example: host
	Device string `json:"device" example:"host"`
	// example: simulated device backed by host memory
	Description string `json:"description,omitempty" example:"simulated device backed by host memory"`
	// Device memory visible to the runtime, in bytes.
	// example: 8589934592
	TotalBytes uint64 `json:"total_bytes" example:"8589934592"`
}

// MemoryStatus mirrors the runtime's allocation counters. Fields are zero when
// the runtime does not track them.
type MemoryStatus struct {
	// example: 12
	Allocations uint64 `json:"allocations" example:"12"`
	// example: 12
	Frees uint64 `json:"frees" example:"12"`
	// Failed runtime calls.
	// example: 0
	Failures uint64 `json:"failures" example:"0"`
	// example: 0
	LiveBuffers int `json:"live_buffers" example:"0"`
	// example: 0
	BytesInUse uint64 `json:"bytes_in_use" example:"0"`
	// example: 16777216
	PeakBytes uint64 `json:"peak_bytes" example:"16777216"`
	// example: 4194304
	HtoDBytes uint64 `json:"htod_bytes" example:"4194304"`
	// example: 4194304
	DtoHBytes uint64 `json:"dtoh_bytes" example:"4194304"`
	// Allocation budget in MB; 0 means unlimited.
	// example: 8192
	BudgetMB int `json:"budget_mb" example:"8192"`
	// Reserved margin in MB.
	// example: 512
	MarginMB int `json:"margin_mb" example:"512"`
}

// QueueStatus summarizes probe admission.
type QueueStatus struct {
	// Probes waiting for the device, including the running one.
	// example: 0
	QueueLen int `json:"queue_len" example:"0"`
	// example: 1
	Inflight int `json:"inflight" example:"1"`
	// example: 32
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Manager state: loading, ready, error or draining.
	// example: ready
	State string `json:"state" example:"ready"`
	// Device runtime in use.
	Runtime RuntimeStatus `json:"runtime"`
	// Runtime allocation counters.
	Memory MemoryStatus `json:"memory"`
	// Probe admission state.
	Queue QueueStatus `json:"queue"`
	// Probes completed successfully.
	// example: 42
	ProbesTotal uint64 `json:"probes_total" example:"42"`
	// Probes that ended with an error.
	// example: 1
	ProbeFailures uint64 `json:"probe_failures" example:"1"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
