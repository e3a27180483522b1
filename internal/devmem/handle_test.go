package devmem

import (
	"testing"

	"devmem/internal/devrt"
)

func TestDevicePtr_EmptyHandle(t *testing.T) {
	rt := newFakeRuntime(t)
	d := NewDevicePtr[float32](rt)
	if !d.Get().IsNil() {
		t.Fatalf("expected null Get on empty handle")
	}
	if d.Valid() {
		t.Fatalf("expected Valid() == false on empty handle")
	}
	if d.Capacity() != 0 || d.IsExternal() {
		t.Fatalf("unexpected empty state: cap=%d external=%v", d.Capacity(), d.IsExternal())
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close empty: %v", err)
	}
	if len(rt.frees) != 0 {
		t.Fatalf("closing an empty handle must not free")
	}
}

func TestDevicePtr_GrowthOnlyAllocation(t *testing.T) {
	cases := []struct {
		name   string
		sizes  []int
		allocs []uint64 // bytes per malloc, float32 elements
		frees  int
		cap    int
	}{
		{"single", []int{8}, []uint64{32}, 0, 8},
		{"equal", []int{8, 8}, []uint64{32}, 0, 8},
		{"shrinking request reuses", []int{16, 4}, []uint64{64}, 0, 16},
		{"growth reallocates", []int{4, 16}, []uint64{16, 64}, 1, 16},
		{"loop", []int{4, 2, 8, 8, 3, 8}, []uint64{16, 32}, 1, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := newFakeRuntime(t)
			d := NewDevicePtr[float32](rt)
			for _, n := range tc.sizes {
				if err := d.TryAllocate(n); err != nil {
					t.Fatalf("allocate %d: %v", n, err)
				}
			}
			if len(rt.mallocs) != len(tc.allocs) {
				t.Fatalf("mallocs=%v want %v", rt.mallocs, tc.allocs)
			}
			for i := range tc.allocs {
				if rt.mallocs[i] != tc.allocs[i] {
					t.Fatalf("mallocs=%v want %v", rt.mallocs, tc.allocs)
				}
			}
			if len(rt.frees) != tc.frees {
				t.Fatalf("frees=%d want %d", len(rt.frees), tc.frees)
			}
			if d.Capacity() != tc.cap {
				t.Fatalf("capacity=%d want %d", d.Capacity(), tc.cap)
			}
			if err := d.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			if live := rt.Stats().LiveBuffers; live != 0 {
				t.Fatalf("leaked %d buffers", live)
			}
		})
	}
}

func TestDevicePtr_NonDecreasingPairs(t *testing.T) {
	for n1 := 1; n1 <= 6; n1++ {
		for n2 := n1; n2 <= 6; n2++ {
			rt := newFakeRuntime(t)
			up := NewDevicePtr[int16](rt)
			up.Allocate(n1)
			up.Allocate(n2)
			if n1 == n2 && len(rt.mallocs) != 1 {
				t.Fatalf("n1=n2=%d: expected one malloc, got %v", n1, rt.mallocs)
			}
			if got := rt.mallocs[len(rt.mallocs)-1]; got != uint64(2*n2) {
				t.Fatalf("n1=%d n2=%d: final malloc %d bytes", n1, n2, got)
			}
			if rt.Stats().LiveBuffers != 1 {
				t.Fatalf("n1=%d n2=%d: expected exactly one live buffer", n1, n2)
			}
			_ = up.Close()

			rt2 := newFakeRuntime(t)
			down := NewDevicePtr[int16](rt2)
			down.Allocate(n2)
			down.Allocate(n1)
			if len(rt2.mallocs) != 1 || down.Capacity() != n2 {
				t.Fatalf("n2=%d then n1=%d: mallocs=%v cap=%d", n2, n1, rt2.mallocs, down.Capacity())
			}
			_ = down.Close()
		}
	}
}

func TestDevicePtr_ExternalBlocksAllocation(t *testing.T) {
	rt := newFakeRuntime(t)
	owner, err := Allocate[float64](rt, 4)
	if err != nil {
		t.Fatalf("allocate owner: %v", err)
	}
	d := NewDevicePtr[float64](rt)
	d.SetExternal(owner)
	if !d.IsExternal() || d.Get() != owner || !d.Valid() {
		t.Fatalf("external not active: %+v", d.Get())
	}
	before := len(rt.mallocs)
	for _, n := range []int{0, 1, 4, 1000} {
		d.Allocate(n)
	}
	if len(rt.mallocs) != before || d.Capacity() != 0 {
		t.Fatalf("allocate must be a no-op with external set: mallocs=%v cap=%d", rt.mallocs, d.Capacity())
	}
	if d.Get() != owner {
		t.Fatalf("Get must keep returning the external reference")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	for _, p := range rt.frees {
		if p == owner.Addr() {
			t.Fatalf("handle freed external memory")
		}
	}
	if err := Free(rt, owner); err != nil {
		t.Fatalf("owner free: %v", err)
	}
}

func TestDevicePtr_ExternalWinsOverInternal(t *testing.T) {
	rt := newFakeRuntime(t)
	d := NewDevicePtr[uint32](rt)
	d.Allocate(16)
	internal := d.Get()
	ext, _ := Allocate[uint32](rt, 2)

	d.SetExternal(ext)
	if d.Get() != ext {
		t.Fatalf("external must take priority over existing internal buffer")
	}
	d.UnsetExternal()
	if d.IsExternal() || d.Get() != internal {
		t.Fatalf("expected revert to internal buffer after unset")
	}
	d.Allocate(8)
	if d.Get() != internal || len(rt.mallocs) != 2 {
		t.Fatalf("sufficient internal buffer must be reused after unset")
	}

	d.SetExternal(ext)
	d.SetExternal(Ptr[uint32]{})
	if d.IsExternal() || d.Get() != internal {
		t.Fatalf("setting a null external must clear it")
	}
	_ = d.Close()
	_ = Free(rt, ext)
}

func TestDevicePtr_UploadDownload(t *testing.T) {
	for _, n := range []int{1, 3, 100000} {
		rt := newFakeRuntime(t)
		d := NewDevicePtr[complex64](rt)
		d.Allocate(n)
		src := make([]complex64, n)
		for i := range src {
			src[i] = complex(float32(i), float32(-i))
		}
		if err := d.Upload(src); err != nil {
			t.Fatalf("n=%d upload: %v", n, err)
		}
		out := make([]complex64, n)
		if err := d.Download(out); err != nil {
			t.Fatalf("n=%d download: %v", n, err)
		}
		for i := range out {
			if out[i] != src[i] {
				t.Fatalf("n=%d mismatch at %d", n, i)
			}
		}
		_ = d.Close()
	}
}

func TestDevicePtr_DownloadFromEmptyLeavesHostUntouched(t *testing.T) {
	rt := newFakeRuntime(t)
	d := NewDevicePtr[int](rt)
	host := []int{1, 2, 3}
	if err := d.Download(host); err != nil {
		t.Fatalf("download: %v", err)
	}
	if host[0] != 1 || host[1] != 2 || host[2] != 3 || rt.dtoh != 0 {
		t.Fatalf("expected no transfer, host=%v dtoh=%d", host, rt.dtoh)
	}
}

func TestDevicePtr_MoveReleasesOnce(t *testing.T) {
	rt := newFakeRuntime(t)
	src := NewDevicePtr[float32](rt)
	src.Allocate(32)
	p := src.Get()

	dst := src.Move()
	if dst.Get() != p || dst.Capacity() != 32 {
		t.Fatalf("move did not transfer ownership: %v cap=%d", dst.Get(), dst.Capacity())
	}
	if src.Valid() || src.Capacity() != 0 {
		t.Fatalf("moved-from handle must be empty")
	}
	if err := src.Close(); err != nil {
		t.Fatalf("close moved-from: %v", err)
	}
	if len(rt.frees) != 0 {
		t.Fatalf("moved-from close freed memory: %v", rt.frees)
	}
	if err := dst.Close(); err != nil {
		t.Fatalf("close destination: %v", err)
	}
	if err := dst.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if len(rt.frees) != 1 || rt.frees[0] != p.Addr() {
		t.Fatalf("expected exactly one free of %v, got %v", p, rt.frees)
	}
}

func TestDevicePtr_MoveCarriesExternal(t *testing.T) {
	rt := newFakeRuntime(t)
	ext, _ := Allocate[byte](rt, 8)
	src := NewDevicePtr[byte](rt)
	src.SetExternal(ext)
	dst := src.Move()
	if !dst.IsExternal() || dst.Get() != ext || src.IsExternal() {
		t.Fatalf("external reference must move with the handle")
	}
	_ = Free(rt, ext)
}

func TestDevicePtr_ZeroSize(t *testing.T) {
	rt := newFakeRuntime(t)
	d := NewDevicePtr[float64](rt)
	if err := d.TryAllocate(0); err != nil {
		t.Fatalf("allocate(0): %v", err)
	}
	if d.Capacity() != 0 || d.Valid() {
		t.Fatalf("zero-size allocation should leave a null buffer: cap=%d", d.Capacity())
	}
	if err := d.TryAllocate(2); err != nil || d.Capacity() != 2 || !d.Valid() {
		t.Fatalf("allocate after zero-size: err=%v cap=%d", err, d.Capacity())
	}
	_ = d.Close()
}

func TestDevicePtr_AllocateFailureGoesToHandler(t *testing.T) {
	failures := recordFailures(t)
	rt := newFakeRuntime(t)
	d := NewDevicePtr[float32](rt)
	d.Allocate(4)
	first := d.Get()

	rt.failNext[devrt.EventMalloc] = devrt.StatusMemoryAllocation
	d.Allocate(8)
	if len(*failures) != 1 {
		t.Fatalf("expected one reported failure, got %v", *failures)
	}
	if st, _ := StatusOf((*failures)[0]); st != devrt.StatusMemoryAllocation {
		t.Fatalf("unexpected failure: %v", (*failures)[0])
	}
	// The old buffer was released before the failed allocation.
	if d.Valid() || d.Capacity() != 0 {
		t.Fatalf("expected empty handle after failed growth, got %v cap=%d", d.Get(), d.Capacity())
	}
	if len(rt.frees) != 1 || rt.frees[0] != first.Addr() {
		t.Fatalf("expected old buffer freed once: %v", rt.frees)
	}
}

func TestDevicePtr_FreeFailureKeepsBuffer(t *testing.T) {
	rt := newFakeRuntime(t)
	d := NewDevicePtr[float32](rt)
	d.Allocate(4)
	p := d.Get()
	rt.failNext[devrt.EventFree] = devrt.StatusLaunchFailure
	if err := d.TryAllocate(8); err == nil {
		t.Fatalf("expected free failure")
	}
	if d.Get() != p || d.Capacity() != 4 {
		t.Fatalf("handle must be unchanged when the old buffer could not be freed")
	}
	_ = d.Close()
}

func TestDevicePtr_OverflowingCountKeepsBuffer(t *testing.T) {
	rt := newFakeRuntime(t)
	d := NewDevicePtr[float64](rt)
	if err := d.TryAllocate(2); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	p := d.Get()

	err := d.TryAllocate((1 << 61) + 2)
	if st, _ := StatusOf(err); st != devrt.StatusInvalidValue {
		t.Fatalf("expected invalid value, got %v", err)
	}
	if d.Get() != p || d.Capacity() != 2 {
		t.Fatalf("handle changed after refused count: %v cap=%d", d.Get(), d.Capacity())
	}
	if len(rt.mallocs) != 1 || len(rt.frees) != 0 {
		t.Fatalf("unexpected runtime calls: mallocs=%v frees=%v", rt.mallocs, rt.frees)
	}

	// A later request above the real capacity still reallocates.
	if err := d.TryAllocate(1000); err != nil {
		t.Fatalf("allocate 1000: %v", err)
	}
	if d.Capacity() != 1000 || len(rt.mallocs) != 2 || rt.mallocs[1] != 8000 {
		t.Fatalf("expected growth to 1000 elements: cap=%d mallocs=%v", d.Capacity(), rt.mallocs)
	}
	if err := d.Upload(make([]float64, 1000)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	_ = d.Close()
}

func TestDevicePtr_ZeroSizedElements(t *testing.T) {
	rt := newFakeRuntime(t)
	d := NewDevicePtr[struct{}](rt)
	if err := d.TryAllocate(4); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if d.Valid() || d.Capacity() != 0 {
		t.Fatalf("zero-byte allocation must record no capacity: valid=%v cap=%d", d.Valid(), d.Capacity())
	}
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(rt.frees) != 0 {
		t.Fatalf("nothing to free, got %v", rt.frees)
	}
}
