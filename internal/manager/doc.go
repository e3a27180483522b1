// Package manager runs device probes on behalf of the daemon and the CLI.
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, Ready/Close.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: lifecycle State.
//   - errors.go: error types and helpers (IsTooBusy, IsInvalidProbe).
//   - admission.go: single in-flight slot with a bounded wait queue.
//   - probe.go: request validation and dispatch by element type.
//   - workload.go: the roundtrip and grow workloads over devmem handles.
//   - status_report.go: Status reporting for /status.
//   - events.go, eventpub_memory.go: lifecycle events.
//
// Device calls are synchronous and cannot be cancelled; a context only bounds
// the time a probe waits for admission.
package manager
