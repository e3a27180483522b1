// Package devrt is the boundary to the device runtime: the raw allocate, free
// and copy calls that the rest of the module builds on.
//
// Files by concern:
//
//   - runtime.go: Runtime interface, DevPtr, Info and Stats.
//   - status.go: Status codes reported per runtime call.
//   - host.go: HostRuntime, a simulated device backed by host memory with
//     optional VRAM budget accounting.
//   - cuda.go / cuda_stub.go: CUDA runtime binding, enabled with
//     `-tags=cuda` on cgo builds.
//   - instrument.go, metrics.go: Instrumented decorator (zerolog, Prometheus,
//     events).
//   - open.go: name based runtime selection.
//
// Runtimes report a Status instead of an error so that higher layers decide
// the failure policy.
package devrt
