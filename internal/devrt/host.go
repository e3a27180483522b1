package devrt

import (
	"fmt"
	"sync"
)

const (
	// hostAlign mirrors the 256-byte alignment guaranteed by cudaMalloc.
	hostAlign = 256
	// hostBase is the first synthetic address handed out; low addresses stay
	// unused so that small integers never alias a live buffer.
	hostBase DevPtr = 0x7f0000000000
)

// HostConfig tunes a HostRuntime. Zero values mean "unlimited".
type HostConfig struct {
	// BudgetMB caps the bytes in use across all live buffers (0 = unlimited).
	BudgetMB int
	// MarginMB is kept free below the budget.
	MarginMB int
	// Device is a human-readable device name.
	Device string
}

// HostRuntime is a simulated device backed by host memory that lives outside
// the Go heap. Addresses are synthetic and cannot be dereferenced; only the
// runtime's copy calls move data. Safe for concurrent use.
type HostRuntime struct {
	mu        sync.Mutex
	device    string
	budget    uint64
	margin    uint64
	next      DevPtr
	buffers   map[DevPtr][]byte
	stats     Stats
	publisher EventPublisher
}

// NewHostRuntime constructs a HostRuntime from cfg.
func NewHostRuntime(cfg HostConfig) *HostRuntime {
	r := &HostRuntime{
		device:    cfg.Device,
		next:      hostBase,
		buffers:   make(map[DevPtr][]byte),
		publisher: noopPublisher{},
	}
	if r.device == "" {
		r.device = "host"
	}
	if cfg.BudgetMB > 0 {
		r.budget = uint64(cfg.BudgetMB) * mb
	}
	if cfg.MarginMB > 0 {
		r.margin = uint64(cfg.MarginMB) * mb
	}
	r.stats.BudgetBytes = r.budget
	r.stats.MarginBytes = r.margin
	return r
}

// SetEventPublisher installs a publisher for runtime events. Nil restores the
// default no-op publisher.
func (r *HostRuntime) SetEventPublisher(p EventPublisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		p = noopPublisher{}
	}
	r.publisher = p
}

func (r *HostRuntime) Info() Info {
	return Info{
		Name:        "host",
		Device:      r.device,
		TotalBytes:  r.budget,
		Description: "simulated device backed by host memory",
	}
}

func (r *HostRuntime) Malloc(size uint64) (DevPtr, Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if size == 0 {
		r.publish(Event{Name: EventMalloc, Status: StatusSuccess})
		return 0, StatusSuccess
	}
	if !r.fits(size) {
		return 0, r.fail(Event{Name: EventMalloc, Bytes: size}, StatusMemoryAllocation)
	}
	buf, err := allocBacking(size)
	if err != nil {
		return 0, r.fail(Event{Name: EventMalloc, Bytes: size}, StatusMemoryAllocation)
	}
	p := r.next
	r.next += DevPtr(alignUp(size, hostAlign) + hostAlign)
	r.buffers[p] = buf

	r.stats.Allocations++
	r.stats.LiveBuffers = len(r.buffers)
	r.stats.BytesInUse += size
	if r.stats.BytesInUse > r.stats.PeakBytes {
		r.stats.PeakBytes = r.stats.BytesInUse
	}
	r.publish(Event{Name: EventMalloc, Ptr: p, Bytes: size, Status: StatusSuccess})
	return p, StatusSuccess
}

func (r *HostRuntime) Free(p DevPtr) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.IsNil() {
		return StatusSuccess
	}
	buf, ok := r.buffers[p]
	if !ok {
		return r.fail(Event{Name: EventFree, Ptr: p}, StatusInvalidDevicePointer)
	}
	delete(r.buffers, p)
	size := uint64(len(buf))
	// The address is released even if unmapping fails, so it counts as a free.
	r.stats.Frees++
	r.stats.BytesInUse -= size
	r.stats.LiveBuffers = len(r.buffers)
	if err := freeBacking(buf); err != nil {
		return r.fail(Event{Name: EventFree, Ptr: p, Bytes: size}, StatusUnknown)
	}
	r.publish(Event{Name: EventFree, Ptr: p, Bytes: size, Status: StatusSuccess})
	return StatusSuccess
}

func (r *HostRuntime) MemcpyHtoD(dst DevPtr, src []byte) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := uint64(len(src))
	if n == 0 {
		return StatusSuccess
	}
	region, st := r.region(dst, n)
	if !st.OK() {
		return r.fail(Event{Name: EventHtoD, Ptr: dst, Bytes: n}, st)
	}
	copy(region, src)
	r.stats.HtoDBytes += n
	r.publish(Event{Name: EventHtoD, Ptr: dst, Bytes: n, Status: StatusSuccess})
	return StatusSuccess
}

func (r *HostRuntime) MemcpyDtoH(dst []byte, src DevPtr) Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := uint64(len(dst))
	if n == 0 {
		return StatusSuccess
	}
	region, st := r.region(src, n)
	if !st.OK() {
		return r.fail(Event{Name: EventDtoH, Ptr: src, Bytes: n}, st)
	}
	copy(dst, region)
	r.stats.DtoHBytes += n
	r.publish(Event{Name: EventDtoH, Ptr: src, Bytes: n, Status: StatusSuccess})
	return StatusSuccess
}

// Stats returns a snapshot of the runtime accounting.
func (r *HostRuntime) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Close releases every live buffer. Pointers handed out earlier become
// invalid. Close is meant for process shutdown and tests.
func (r *HostRuntime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for p, buf := range r.buffers {
		if err := freeBacking(buf); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("free %#x: %w", uintptr(p), err)
		}
		delete(r.buffers, p)
	}
	r.stats.BytesInUse = 0
	r.stats.LiveBuffers = 0
	return firstErr
}

// fits reports whether size more bytes stay within the budget, keeping the
// margin free. Caller must hold r.mu.
func (r *HostRuntime) fits(size uint64) bool {
	if r.budget == 0 {
		return true
	}
	if r.margin >= r.budget || r.stats.BytesInUse > r.budget-r.margin {
		return false
	}
	return size <= r.budget-r.margin-r.stats.BytesInUse
}

// region returns the n-byte window starting at p inside a live buffer.
// Caller must hold r.mu.
func (r *HostRuntime) region(p DevPtr, n uint64) ([]byte, Status) {
	if p.IsNil() {
		return nil, StatusInvalidValue
	}
	if buf, ok := r.buffers[p]; ok {
		if n > uint64(len(buf)) {
			return nil, StatusInvalidValue
		}
		return buf[:n], StatusSuccess
	}
	// Interior pointer: find the buffer that contains p.
	for base, buf := range r.buffers {
		if p < base || p >= base+DevPtr(len(buf)) {
			continue
		}
		off := uint64(p - base)
		if off+n > uint64(len(buf)) {
			return nil, StatusInvalidValue
		}
		return buf[off : off+n], StatusSuccess
	}
	return nil, StatusInvalidDevicePointer
}

// fail records a failed call. Caller must hold r.mu.
func (r *HostRuntime) fail(e Event, st Status) Status {
	r.stats.Failures++
	e.Status = st
	r.publish(e)
	return st
}

// publish forwards e to the installed publisher. Caller must hold r.mu.
func (r *HostRuntime) publish(e Event) {
	r.publisher.Publish(e)
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}
