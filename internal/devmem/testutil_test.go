package devmem

import (
	"testing"

	"devmem/internal/devrt"
)

// fakeRuntime wraps a HostRuntime, records every call and can be told to
// fail specific operations.
type fakeRuntime struct {
	*devrt.HostRuntime

	mallocs  []uint64
	frees    []devrt.DevPtr
	htod     int
	dtoh     int
	failNext map[string]devrt.Status
}

func newFakeRuntime(t *testing.T) *fakeRuntime {
	t.Helper()
	host := devrt.NewHostRuntime(devrt.HostConfig{})
	t.Cleanup(func() { _ = host.Close() })
	return &fakeRuntime{HostRuntime: host, failNext: make(map[string]devrt.Status)}
}

func (f *fakeRuntime) takeFailure(op string) (devrt.Status, bool) {
	st, ok := f.failNext[op]
	if ok {
		delete(f.failNext, op)
	}
	return st, ok
}

func (f *fakeRuntime) Malloc(size uint64) (devrt.DevPtr, devrt.Status) {
	if st, ok := f.takeFailure(devrt.EventMalloc); ok {
		return 0, st
	}
	f.mallocs = append(f.mallocs, size)
	return f.HostRuntime.Malloc(size)
}

func (f *fakeRuntime) Free(p devrt.DevPtr) devrt.Status {
	if st, ok := f.takeFailure(devrt.EventFree); ok {
		return st
	}
	f.frees = append(f.frees, p)
	return f.HostRuntime.Free(p)
}

func (f *fakeRuntime) MemcpyHtoD(dst devrt.DevPtr, src []byte) devrt.Status {
	if st, ok := f.takeFailure(devrt.EventHtoD); ok {
		return st
	}
	f.htod++
	return f.HostRuntime.MemcpyHtoD(dst, src)
}

func (f *fakeRuntime) MemcpyDtoH(dst []byte, src devrt.DevPtr) devrt.Status {
	if st, ok := f.takeFailure(devrt.EventDtoH); ok {
		return st
	}
	f.dtoh++
	return f.HostRuntime.MemcpyDtoH(dst, src)
}

// recordFailures swaps in a failure handler that collects errors instead of
// exiting, restoring the previous handler on cleanup.
func recordFailures(t *testing.T) *[]error {
	t.Helper()
	var got []error
	prev := SetFailureHandler(func(err error) { got = append(got, err) })
	t.Cleanup(func() { SetFailureHandler(prev) })
	return &got
}
