// Package devmem manages typed device memory on top of a devrt.Runtime.
//
// The primitives (Allocate, Free, CopyHostToDevice, CopyDeviceToHost) take
// element counts and return a *RuntimeError when the runtime reports
// anything but success. The Must* variants and DevicePtr.Allocate route
// failures to the process-wide failure handler instead, which by default
// logs the failing call and exits.
//
// DevicePtr is a single-owner handle that either owns a growth-only internal
// buffer or borrows an external one:
//
//	buf := devmem.NewDevicePtr[float32](rt)
//	defer buf.Close()
//	for _, n := range sizes {
//		buf.Allocate(n) // reallocates only when n exceeds the capacity
//		...
//	}
package devmem
