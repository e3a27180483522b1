package manager

import (
	"unsafe"

	"devmem/internal/devmem"
	"devmem/internal/devrt"
)

// number is the set of element types a probe can run on.
type number interface {
	~float32 | ~float64 | ~int32 | ~uint8
}

type workloadResult struct {
	Elems       int
	BytesCopied uint64
	Allocations int
	Frees       int
	Capacity    int
	Verified    bool
	Mismatches  int
}

// countingRuntime counts the allocations and frees a single workload causes.
type countingRuntime struct {
	devrt.Runtime
	mallocs int
	frees   int
}

func (c *countingRuntime) Malloc(size uint64) (devrt.DevPtr, devrt.Status) {
	p, st := c.Runtime.Malloc(size)
	if st.OK() && !p.IsNil() {
		c.mallocs++
	}
	return p, st
}

func (c *countingRuntime) Free(p devrt.DevPtr) devrt.Status {
	st := c.Runtime.Free(p)
	if st.OK() {
		c.frees++
	}
	return st
}

func pattern[T number](i, seed int) T {
	return T((i+seed)%251 + 1)
}

func fill[T number](dst []T, seed int) {
	for i := range dst {
		dst[i] = pattern[T](i, seed)
	}
}

func mismatches[T number](want, got []T) int {
	n := 0
	for i := range want {
		if want[i] != got[i] {
			n++
		}
	}
	return n
}

// runRoundTrip uploads n patterned elements, downloads them into a fresh
// slice and counts the differences.
func runRoundTrip[T number](rt devrt.Runtime, n int) (res workloadResult, err error) {
	var zero T
	size := uint64(unsafe.Sizeof(zero))

	crt := &countingRuntime{Runtime: rt}
	buf := devmem.NewDevicePtr[T](crt)
	res.Elems = n
	defer func() {
		if cerr := buf.Close(); err == nil {
			err = cerr
		}
		res.Allocations, res.Frees = crt.mallocs, crt.frees
	}()

	if err = buf.TryAllocate(n); err != nil {
		return res, err
	}
	res.Capacity = buf.Capacity()

	src := make([]T, n)
	fill(src, 0)
	if err = buf.Upload(src); err != nil {
		return res, err
	}
	dst := make([]T, n)
	if err = buf.Download(dst); err != nil {
		return res, err
	}
	res.BytesCopied = 2 * uint64(n) * size
	res.Mismatches = mismatches(src, dst)
	res.Verified = res.Mismatches == 0
	return res, nil
}

// runGrow requests each size in turn from one handle, uploading a full
// buffer each time, and verifies the last upload by reading it back.
func runGrow[T number](rt devrt.Runtime, sizes []int) (res workloadResult, err error) {
	var zero T
	size := uint64(unsafe.Sizeof(zero))

	crt := &countingRuntime{Runtime: rt}
	buf := devmem.NewDevicePtr[T](crt)
	defer func() {
		if cerr := buf.Close(); err == nil {
			err = cerr
		}
		res.Allocations, res.Frees = crt.mallocs, crt.frees
	}()

	var last []T
	for step, n := range sizes {
		if err = buf.TryAllocate(n); err != nil {
			return res, err
		}
		last = make([]T, n)
		fill(last, step)
		if err = buf.Upload(last); err != nil {
			return res, err
		}
		res.BytesCopied += uint64(n) * size
		res.Elems = n
	}
	res.Capacity = buf.Capacity()

	got := make([]T, len(last))
	if err = buf.Download(got); err != nil {
		return res, err
	}
	res.BytesCopied += uint64(len(got)) * size
	res.Mismatches = mismatches(last, got)
	res.Verified = res.Mismatches == 0
	return res, nil
}
