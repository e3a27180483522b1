//go:build !cuda || !cgo

package devrt

// This file provides a no-CGO stub for the CUDA runtime. It is compiled when
// the 'cuda' build tag is not set, keeping default builds CGO-free.

// CUDARuntime is unavailable in this build.
type CUDARuntime struct{}

// NewCUDARuntime always fails without the 'cuda' build tag.
func NewCUDARuntime() (*CUDARuntime, error) {
	return nil, ErrBackendUnavailable
}

func (r *CUDARuntime) Info() Info {
	return Info{Name: "cuda", Device: "unavailable", Description: "CUDA support not built (missing 'cuda' build tag)"}
}

func (r *CUDARuntime) Malloc(uint64) (DevPtr, Status) { return 0, StatusNoDevice }
func (r *CUDARuntime) Free(DevPtr) Status { return StatusNoDevice }
func (r *CUDARuntime) MemcpyHtoD(DevPtr, []byte) Status { return StatusNoDevice }
func (r *CUDARuntime) MemcpyDtoH([]byte, DevPtr) Status { return StatusNoDevice }
