package devmem

import (
	"fmt"
	"math/bits"
	"unsafe"

	"devmem/internal/devrt"
)

// Ptr is a device pointer to elements of type T. The zero value is null.
type Ptr[T any] struct {
	addr devrt.DevPtr
}

// PtrOf tags a raw device address with element type T.
func PtrOf[T any](addr devrt.DevPtr) Ptr[T] { return Ptr[T]{addr: addr} }

// Addr returns the raw device address.
func (p Ptr[T]) Addr() devrt.DevPtr { return p.addr }

// IsNil reports whether p is null.
func (p Ptr[T]) IsNil() bool { return p.addr.IsNil() }

// Offset returns p advanced by n elements; n may be negative. Offsetting a
// null pointer, or by a distance that leaves the address space, yields null.
func (p Ptr[T]) Offset(n int) Ptr[T] {
	if p.IsNil() {
		return p
	}
	mag := uint64(n)
	if n < 0 {
		mag = -mag
	}
	hi, dist := bits.Mul64(mag, uint64(elemSize[T]()))
	if hi != 0 {
		return Ptr[T]{}
	}
	base := uint64(p.addr)
	var addr uint64
	if n < 0 {
		if dist >= base {
			return Ptr[T]{}
		}
		addr = base - dist
	} else {
		if dist > maxAddr-base {
			return Ptr[T]{}
		}
		addr = base + dist
	}
	return Ptr[T]{addr: devrt.DevPtr(addr)}
}

func (p Ptr[T]) String() string {
	return fmt.Sprintf("%#x", uintptr(p.addr))
}

const maxAddr = uint64(^uintptr(0))

// elemSize is the byte size of one T.
func elemSize[T any]() int {
	var zero T
	return int(unsafe.Sizeof(zero))
}

// asBytes views the first n elements of s as raw bytes.
func asBytes[T any](s []T, n int) []byte {
	if n == 0 || len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), n*elemSize[T]())
}
