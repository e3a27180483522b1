package devmem

import (
	"testing"

	"devmem/internal/devrt"
)

func TestMustPrimitives_RouteFailures(t *testing.T) {
	failures := recordFailures(t)
	rt := newFakeRuntime(t)

	rt.failNext[devrt.EventMalloc] = devrt.StatusMemoryAllocation
	p := MustAllocate[float32](rt, 4)
	if !p.IsNil() {
		t.Fatalf("expected null pointer from failed allocation")
	}
	MustFree(rt, PtrOf[float32](0xbad000))

	d := MustAllocate[float32](rt, 2)
	rt.failNext[devrt.EventHtoD] = devrt.StatusLaunchFailure
	MustCopyHostToDevice(rt, d, []float32{1, 2}, 2)
	rt.failNext[devrt.EventDtoH] = devrt.StatusLaunchFailure
	MustCopyDeviceToHost(rt, make([]float32, 2), d, 2)

	want := []string{OpAllocate, OpFree, OpHtoD, OpDtoH}
	if len(*failures) != len(want) {
		t.Fatalf("expected %d failures, got %v", len(want), *failures)
	}
	for i, op := range want {
		re, ok := (*failures)[i].(*RuntimeError)
		if !ok || re.Op != op {
			t.Fatalf("failure %d: got %v, want op %s", i, (*failures)[i], op)
		}
	}
}

func TestMustPrimitives_SuccessDoesNotReport(t *testing.T) {
	failures := recordFailures(t)
	rt := newFakeRuntime(t)
	d := MustAllocate[int32](rt, 3)
	MustCopyHostToDevice(rt, d, []int32{4, 5, 6}, 3)
	out := make([]int32, 3)
	MustCopyDeviceToHost(rt, out, d, 3)
	MustFree(rt, d)
	MustCopyHostToDevice(rt, Ptr[int32]{}, out, 3)
	if len(*failures) != 0 {
		t.Fatalf("unexpected failures: %v", *failures)
	}
	if out[2] != 6 {
		t.Fatalf("round trip through Must* lost data: %v", out)
	}
}

func TestSetFailureHandler_NilRestoresDefault(t *testing.T) {
	prev := SetFailureHandler(func(error) {})
	defer SetFailureHandler(prev)
	SetFailureHandler(nil)
	failureMu.RLock()
	h := failureHandler
	failureMu.RUnlock()
	if h == nil {
		t.Fatalf("expected default handler installed")
	}
}

func TestRuntimeErrorMessage(t *testing.T) {
	err := &RuntimeError{Op: OpHtoD, Status: devrt.StatusInvalidValue, Bytes: 12, Detail: "element count 3 exceeds host buffer length 2"}
	want := "devmem: copy_host_to_device failed: invalid value (status 1), 12 bytes: element count 3 exceeds host buffer length 2"
	if got := err.Error(); got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}
