//go:build cuda && cgo

package devrt

/*
#cgo LDFLAGS: -lcudart
#include <cuda_runtime.h>
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// CUDARuntime binds the CUDA runtime API of the current device.
type CUDARuntime struct {
	device string
	total  uint64
}

// NewCUDARuntime initializes the CUDA runtime on the current device.
func NewCUDARuntime() (*CUDARuntime, error) {
	var count C.int
	if st := Status(C.cudaGetDeviceCount(&count)); !st.OK() {
		return nil, fmt.Errorf("%w: cudaGetDeviceCount: %v", ErrBackendUnavailable, st)
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, StatusNoDevice)
	}
	var dev C.int
	if st := Status(C.cudaGetDevice(&dev)); !st.OK() {
		return nil, fmt.Errorf("%w: cudaGetDevice: %v", ErrBackendUnavailable, st)
	}
	var props C.struct_cudaDeviceProp
	if st := Status(C.cudaGetDeviceProperties(&props, dev)); !st.OK() {
		return nil, fmt.Errorf("%w: cudaGetDeviceProperties: %v", ErrBackendUnavailable, st)
	}
	return &CUDARuntime{
		device: C.GoString(&props.name[0]),
		total:  uint64(props.totalGlobalMem),
	}, nil
}

func (r *CUDARuntime) Info() Info {
	return Info{
		Name:        "cuda",
		Device:      r.device,
		TotalBytes:  r.total,
		Description: "CUDA runtime API",
	}
}

func (r *CUDARuntime) Malloc(size uint64) (DevPtr, Status) {
	var p unsafe.Pointer
	st := Status(C.cudaMalloc(&p, C.size_t(size)))
	if !st.OK() {
		return 0, st
	}
	return DevPtr(uintptr(p)), StatusSuccess
}

func (r *CUDARuntime) Free(p DevPtr) Status {
	if p.IsNil() {
		return StatusSuccess
	}
	return Status(C.cudaFree(unsafe.Pointer(uintptr(p))))
}

func (r *CUDARuntime) MemcpyHtoD(dst DevPtr, src []byte) Status {
	if len(src) == 0 {
		return StatusSuccess
	}
	return Status(C.cudaMemcpy(unsafe.Pointer(uintptr(dst)), unsafe.Pointer(&src[0]), C.size_t(len(src)), C.cudaMemcpyHostToDevice))
}

func (r *CUDARuntime) MemcpyDtoH(dst []byte, src DevPtr) Status {
	if len(dst) == 0 {
		return StatusSuccess
	}
	return Status(C.cudaMemcpy(unsafe.Pointer(&dst[0]), unsafe.Pointer(uintptr(src)), C.size_t(len(dst)), C.cudaMemcpyDeviceToHost))
}

// MemoryUsage returns used and total device memory in bytes.
func (r *CUDARuntime) MemoryUsage() (used, total uint64, st Status) {
	var free, tot C.size_t
	st = Status(C.cudaMemGetInfo(&free, &tot))
	if !st.OK() {
		return 0, 0, st
	}
	return uint64(tot - free), uint64(tot), StatusSuccess
}
