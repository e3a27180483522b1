package devmem

import "devmem/internal/devrt"

// noCopy makes `go vet` (copylocks) flag DevicePtr values copied after first
// use. Handles are shared by pointer or transferred with Move.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// DevicePtr is a single-owner handle to device memory for elements of T.
//
// It holds at most one internal buffer, which it owns, and at most one
// external reference, which it borrows. Get returns the external reference
// whenever one is set, and the internal buffer otherwise. The internal buffer
// only grows: Allocate reallocates when asked for more than the recorded
// capacity and reuses the buffer otherwise.
//
// A DevicePtr is not safe for concurrent use.
type DevicePtr[T any] struct {
	_ noCopy

	rt devrt.Runtime

	internal Ptr[T]
	capacity int
	external Ptr[T]
}

// NewDevicePtr returns an empty handle bound to rt: no internal buffer, no
// external reference, capacity 0.
func NewDevicePtr[T any](rt devrt.Runtime) *DevicePtr[T] {
	return &DevicePtr[T]{rt: rt}
}

// Runtime returns the runtime the handle allocates from.
func (d *DevicePtr[T]) Runtime() devrt.Runtime { return d.rt }

// SetExternal points the handle at memory owned elsewhere. While set, Get
// returns p and Allocate does nothing. A null p clears the reference.
func (d *DevicePtr[T]) SetExternal(p Ptr[T]) { d.external = p }

// UnsetExternal clears the external reference; Get falls back to the
// internal buffer.
func (d *DevicePtr[T]) UnsetExternal() { d.external = Ptr[T]{} }

// IsExternal reports whether an external reference is set.
func (d *DevicePtr[T]) IsExternal() bool { return !d.external.IsNil() }

// TryAllocate ensures the internal buffer holds at least n elements.
//
//   - With an external reference set it does nothing.
//   - If the internal buffer is smaller than n it is freed and replaced by a
//     buffer of exactly n elements.
//   - If the internal buffer already holds n elements or more it is reused.
//   - Without an internal buffer a new one of n elements is allocated.
//
// Counts that are negative or whose byte size overflows are refused before
// the current buffer is touched. If the old buffer was freed but the new
// allocation fails, the handle is left with no internal buffer and capacity 0.
// A request that needs zero bytes records no capacity.
func (d *DevicePtr[T]) TryAllocate(n int) error {
	if d.IsExternal() {
		return nil
	}
	if _, err := byteSize[T](OpAllocate, n); err != nil {
		return err
	}
	if !d.internal.IsNil() {
		if d.capacity >= n {
			return nil
		}
		if err := Free(d.rt, d.internal); err != nil {
			return err
		}
		d.internal, d.capacity = Ptr[T]{}, 0
	}
	p, err := Allocate[T](d.rt, n)
	if err != nil {
		return err
	}
	if p.IsNil() {
		// Zero bytes: nothing was allocated, so no capacity is recorded.
		return nil
	}
	d.internal, d.capacity = p, n
	return nil
}

// Allocate is TryAllocate with failures routed to the failure handler.
func (d *DevicePtr[T]) Allocate(n int) {
	check(d.TryAllocate(n))
}

// Get returns the external reference if set, otherwise the internal buffer,
// which is null until allocated. Get never allocates.
func (d *DevicePtr[T]) Get() Ptr[T] {
	if d.IsExternal() {
		return d.external
	}
	return d.internal
}

// Valid reports whether Get returns a non-null pointer.
func (d *DevicePtr[T]) Valid() bool { return !d.Get().IsNil() }

// Capacity returns the recorded internal capacity in elements; 0 when
// nothing has been allocated. It says nothing about external memory.
func (d *DevicePtr[T]) Capacity() int { return d.capacity }

// Upload copies len(src) elements from src to Get(). With a null target or a
// nil src nothing is transferred.
func (d *DevicePtr[T]) Upload(src []T) error {
	return CopyHostToDevice(d.rt, d.Get(), src, len(src))
}

// Download copies len(dst) elements from Get() into dst. With a null source
// or a nil dst nothing is transferred.
func (d *DevicePtr[T]) Download(dst []T) error {
	return CopyDeviceToHost(d.rt, dst, d.Get(), len(dst))
}

// Move transfers the internal buffer, its capacity and the external
// reference to a new handle. d is left empty, so closing it is a no-op.
func (d *DevicePtr[T]) Move() *DevicePtr[T] {
	moved := &DevicePtr[T]{
		rt:       d.rt,
		internal: d.internal,
		capacity: d.capacity,
		external: d.external,
	}
	d.internal, d.capacity, d.external = Ptr[T]{}, 0, Ptr[T]{}
	return moved
}

// Close frees the internal buffer, if any, and resets the handle to its
// empty state. External memory is never freed. Close is idempotent.
func (d *DevicePtr[T]) Close() error {
	if d == nil {
		return nil
	}
	p := d.internal
	d.internal, d.capacity, d.external = Ptr[T]{}, 0, Ptr[T]{}
	return Free(d.rt, p)
}
