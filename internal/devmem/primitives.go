package devmem

import (
	"fmt"
	"math"

	"devmem/internal/devrt"
)

// Allocate reserves device memory for n elements of T.
func Allocate[T any](rt devrt.Runtime, n int) (Ptr[T], error) {
	size, err := byteSize[T](OpAllocate, n)
	if err != nil {
		return Ptr[T]{}, err
	}
	p, st := rt.Malloc(size)
	if !st.OK() {
		return Ptr[T]{}, &RuntimeError{Op: OpAllocate, Status: st, Bytes: size}
	}
	return Ptr[T]{addr: p}, nil
}

// Free releases p. Freeing a null pointer is a no-op and never fails.
func Free[T any](rt devrt.Runtime, p Ptr[T]) error {
	if p.IsNil() {
		return nil
	}
	if st := rt.Free(p.addr); !st.OK() {
		return &RuntimeError{Op: OpFree, Status: st}
	}
	return nil
}

// CopyHostToDevice copies n elements from src to dst. When dst is null or
// src is nil nothing is transferred and no error is returned.
func CopyHostToDevice[T any](rt devrt.Runtime, dst Ptr[T], src []T, n int) error {
	if dst.IsNil() || src == nil {
		return nil
	}
	if err := checkCount(OpHtoD, n, len(src)); err != nil {
		return err
	}
	b := asBytes(src, n)
	if st := rt.MemcpyHtoD(dst.addr, b); !st.OK() {
		return &RuntimeError{Op: OpHtoD, Status: st, Bytes: uint64(len(b))}
	}
	return nil
}

// CopyDeviceToHost copies n elements from src to dst. When dst is nil or
// src is null nothing is transferred and no error is returned.
func CopyDeviceToHost[T any](rt devrt.Runtime, dst []T, src Ptr[T], n int) error {
	if dst == nil || src.IsNil() {
		return nil
	}
	if err := checkCount(OpDtoH, n, len(dst)); err != nil {
		return err
	}
	b := asBytes(dst, n)
	if st := rt.MemcpyDtoH(b, src.addr); !st.OK() {
		return &RuntimeError{Op: OpDtoH, Status: st, Bytes: uint64(len(b))}
	}
	return nil
}

// byteSize returns the size of n elements of T in bytes, refusing negative
// counts and counts whose byte size does not fit in 64 bits.
func byteSize[T any](op string, n int) (uint64, error) {
	if n < 0 {
		return 0, invalidValue(op, fmt.Sprintf("negative element count %d", n))
	}
	size := uint64(elemSize[T]())
	if size > 0 && uint64(n) > math.MaxUint64/size {
		return 0, invalidValue(op, fmt.Sprintf("element count %d overflows the byte size", n))
	}
	return uint64(n) * size, nil
}

// checkCount refuses counts the host slice cannot cover. A count within the
// slice length always has a byte size that fits in an int.
func checkCount(op string, n, have int) error {
	if n < 0 {
		return invalidValue(op, fmt.Sprintf("negative element count %d", n))
	}
	if n > have {
		return invalidValue(op, fmt.Sprintf("element count %d exceeds host buffer length %d", n, have))
	}
	return nil
}

// MustAllocate is Allocate with failures routed to the failure handler.
func MustAllocate[T any](rt devrt.Runtime, n int) Ptr[T] {
	p, err := Allocate[T](rt, n)
	check(err)
	return p
}

// MustFree is Free with failures routed to the failure handler.
func MustFree[T any](rt devrt.Runtime, p Ptr[T]) {
	check(Free(rt, p))
}

// MustCopyHostToDevice is CopyHostToDevice with failures routed to the
// failure handler.
func MustCopyHostToDevice[T any](rt devrt.Runtime, dst Ptr[T], src []T, n int) {
	check(CopyHostToDevice(rt, dst, src, n))
}

// MustCopyDeviceToHost is CopyDeviceToHost with failures routed to the
// failure handler.
func MustCopyDeviceToHost[T any](rt devrt.Runtime, dst []T, src Ptr[T], n int) {
	check(CopyDeviceToHost(rt, dst, src, n))
}
